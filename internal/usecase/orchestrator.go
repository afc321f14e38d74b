package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"adsync/internal/domain"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"
)

// Orchestrator submits one report job per catalog spec and recovers from
// upstream column-set drift. A single spec's failure never blocks the rest.
type Orchestrator struct {
	api         domain.ReportingAPI
	logger      *logger.Logger
	metrics     *metrics.Metrics
	submitDelay time.Duration
}

func NewOrchestrator(api domain.ReportingAPI, logger *logger.Logger, metrics *metrics.Metrics, submitDelay time.Duration) *Orchestrator {
	return &Orchestrator{
		api:         api,
		logger:      logger,
		metrics:     metrics,
		submitDelay: submitDelay,
	}
}

// Submit creates a report job for every spec not already terminal in
// existing. Specs the account simply lacks are skipped without a job;
// all other submission failures become ERROR jobs.
func (o *Orchestrator) Submit(ctx context.Context, auth domain.RequestAuth, specs []domain.ReportSpec, startDate, endDate string, existing []domain.ReportJob) []domain.ReportJob {
	log := o.logger.WithContext(ctx)

	byKey := make(map[string]domain.ReportJob, len(existing))
	for _, job := range existing {
		byKey[job.Key] = job
	}

	jobs := make([]domain.ReportJob, 0, len(specs))
	for i, spec := range specs {
		if prior, ok := byKey[spec.Key]; ok {
			jobs = append(jobs, prior)
			continue
		}

		if i > 0 {
			// fixed spacing between submissions to respect upstream rate limits
			if err := sleepCtx(ctx, o.submitDelay); err != nil {
				log.Warn("Submission window cancelled, remaining specs skipped")
				break
			}
		}

		job, ok := o.submitSpec(ctx, auth, spec, startDate, endDate)
		if !ok {
			continue // account lacks this ad product
		}
		jobs = append(jobs, job)
	}

	return jobs
}

// submitSpec drives one spec through submission and drift recovery. The
// second return is false when the spec is silently inapplicable.
func (o *Orchestrator) submitSpec(ctx context.Context, auth domain.RequestAuth, spec domain.ReportSpec, startDate, endDate string) (domain.ReportJob, bool) {
	log := o.logger.WithContext(ctx).WithField("report", spec.Key)

	status, err := o.createReport(ctx, auth, spec, startDate, endDate, spec.Columns)
	if err == nil {
		log.WithField("report_id", status.ReportID).Info("Submitted report")
		return processingJob(spec, status.ReportID), true
	}

	class, signature := classifySubmission(err)
	o.metrics.RecordSubmissionClass(signature)

	switch class {
	case classAbsent:
		log.Info("Report type not available for this account, skipping")
		return domain.ReportJob{}, false

	case classSchemaDrift:
		job, ok := o.recoverSchemaDrift(ctx, auth, spec, startDate, endDate, err)
		return job, ok

	default:
		log.WithError(err).Error("Report submission failed")
		o.metrics.RecordReportJob(spec.Key, string(domain.JobError))
		return errorJob(spec, err.Error()), true
	}
}

// recoverSchemaDrift re-submits with the columns the upstream says it still
// accepts. A second rejection is fatal for this spec only.
func (o *Orchestrator) recoverSchemaDrift(ctx context.Context, auth domain.RequestAuth, spec domain.ReportSpec, startDate, endDate string, submitErr error) (domain.ReportJob, bool) {
	log := o.logger.WithContext(ctx).WithField("report", spec.Key)

	allowed := parseAllowedColumns(submitErr.Error())
	reduced := reduceColumns(spec.Columns, allowed)
	if len(reduced) == 0 {
		log.WithError(submitErr).Error("No usable columns survived drift recovery")
		o.metrics.RecordReportJob(spec.Key, string(domain.JobError))
		return errorJob(spec, submitErr.Error()), true
	}

	log.WithFields(map[string]any{
		"requested": len(spec.Columns),
		"allowed":   len(allowed),
		"retrying":  reduced,
	}).Warn("Upstream rejected column set, retrying with reduced columns")

	status, err := o.createReport(ctx, auth, spec, startDate, endDate, reduced)
	if err != nil {
		log.WithError(err).Error("Drift recovery resubmission failed")
		o.metrics.RecordReportJob(spec.Key, string(domain.JobError))
		return errorJob(spec, err.Error()), true
	}

	log.WithField("report_id", status.ReportID).Info("Submitted report with reduced columns")
	return processingJob(spec, status.ReportID), true
}

func (o *Orchestrator) createReport(ctx context.Context, auth domain.RequestAuth, spec domain.ReportSpec, startDate, endDate string, columns []string) (*domain.ReportStatus, error) {
	req := domain.CreateReportRequest{
		Name:      fmt.Sprintf("%s %s to %s", spec.Label, startDate, endDate),
		StartDate: startDate,
		EndDate:   endDate,
		Configuration: domain.ReportConfiguration{
			AdProduct:    spec.AdProduct,
			ReportTypeID: spec.ReportTypeID,
			TimeUnit:     "DAILY",
			Format:       "GZIP_JSON",
			GroupBy:      spec.GroupBy,
			Columns:      columns,
		},
	}
	status, err := o.api.CreateReport(ctx, auth, req)
	if err != nil {
		return nil, err
	}
	if status.ReportID == "" {
		return nil, fmt.Errorf("report submission returned no reportId")
	}
	return status, nil
}

func processingJob(spec domain.ReportSpec, reportID string) domain.ReportJob {
	return domain.ReportJob{
		ReportID: reportID,
		Key:      spec.Key,
		Label:    spec.Label,
		Status:   domain.JobProcessing,
	}
}

func errorJob(spec domain.ReportSpec, message string) domain.ReportJob {
	return domain.ReportJob{
		Key:    spec.Key,
		Label:  spec.Label,
		Status: domain.JobError,
		Error:  message,
	}
}

type submissionClass int

const (
	classAbsent submissionClass = iota
	classSchemaDrift
	classFatal
)

// submissionSignatures maps known upstream error shapes to a failure
// category. The upstream signals these out-of-band as free text, so new
// signatures belong here, not in orchestration logic. Anything unmatched is
// fatal for the spec and counted under "unrecognized" so format drift in the
// messages themselves is visible in monitoring.
var submissionSignatures = []struct {
	name  string
	class submissionClass
	match func(status int, body string) bool
}{
	{
		name:  "status_not_found",
		class: classAbsent,
		match: func(status int, _ string) bool { return status == 404 || status == 401 },
	},
	{
		name:  "account_not_found",
		class: classAbsent,
		match: func(_ int, body string) bool {
			return strings.Contains(body, "AccountNotFound") || strings.Contains(body, "UNAUTHORIZED")
		},
	},
	{
		name:  "invalid_columns",
		class: classSchemaDrift,
		match: func(_ int, body string) bool {
			return strings.Contains(body, "invalid values") && strings.Contains(body, "Allowed values")
		},
	},
}

func classifySubmission(err error) (submissionClass, string) {
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		return classFatal, "unrecognized"
	}
	for _, sig := range submissionSignatures {
		if sig.match(apiErr.Status, apiErr.Body) {
			return sig.class, sig.name
		}
	}
	return classFatal, "unrecognized"
}

var allowedColumnsRe = regexp.MustCompile(`Allowed values\s*:?\s*\(([^)]*)\)`)

// parseAllowedColumns pulls the accepted column list out of the upstream's
// free-text rejection message.
func parseAllowedColumns(message string) []string {
	m := allowedColumnsRe.FindStringSubmatch(message)
	if m == nil {
		return nil
	}
	parts := strings.Split(m[1], ",")
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.Trim(strings.TrimSpace(p), `"'`); c != "" {
			columns = append(columns, c)
		}
	}
	return columns
}

// coreColumns is the minimal request we fall back to when the intersection
// of requested and allowed columns is too thin to be worth aggregating.
var coreColumns = []string{"date", "impressions", "clicks", "cost", "campaignName", "campaignId"}

var metricColumnRe = regexp.MustCompile(`(?i)(sales|purchase|unit|detailPageView)`)

// reduceColumns intersects the requested columns with the allowed set. If
// fewer than 3 survive (date plus two metrics), it builds the core set plus
// any allowed sales/purchase/unit/detail-page-view metric instead.
func reduceColumns(requested, allowed []string) []string {
	if len(allowed) == 0 {
		return nil
	}

	allowedSet := make(map[string]bool, len(allowed))
	for _, c := range allowed {
		allowedSet[c] = true
	}

	var intersection []string
	for _, c := range requested {
		if allowedSet[c] {
			intersection = append(intersection, c)
		}
	}
	if len(intersection) >= 3 {
		return intersection
	}

	var fallback []string
	seen := make(map[string]bool)
	for _, c := range coreColumns {
		if allowedSet[c] && !seen[c] {
			fallback = append(fallback, c)
			seen[c] = true
		}
	}
	for _, c := range allowed {
		if metricColumnRe.MatchString(c) && !seen[c] {
			fallback = append(fallback, c)
			seen[c] = true
		}
	}
	return fallback
}
