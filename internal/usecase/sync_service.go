package usecase

import (
	"context"
	"fmt"
	"time"

	"adsync/internal/domain"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"
)

// SyncService drives the advertising report pipeline end to end: token
// exchange, submission, polling, download, normalization, aggregation. It
// holds no state between invocations; a run that exhausts its poll budget
// hands the caller a job snapshot to replay.
type SyncService struct {
	tokens          domain.TokenProvider
	api             domain.ReportingAPI
	results         domain.ResultRepository
	orchestrator    *Orchestrator
	poller          *Poller
	logger          *logger.Logger
	metrics         *metrics.Metrics
	deadline        time.Duration
	defaultDaysBack int
}

func NewSyncService(
	tokens domain.TokenProvider,
	api domain.ReportingAPI,
	results domain.ResultRepository,
	orchestrator *Orchestrator,
	poller *Poller,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	deadline time.Duration,
	defaultDaysBack int,
) *SyncService {
	return &SyncService{
		tokens:          tokens,
		api:             api,
		results:         results,
		orchestrator:    orchestrator,
		poller:          poller,
		logger:          logger,
		metrics:         metrics,
		deadline:        deadline,
		defaultDaysBack: defaultDaysBack,
	}
}

// Run executes one pipeline invocation.
func (s *SyncService) Run(ctx context.Context, req domain.SyncRequest) (*domain.SyncResult, error) {
	start := time.Now()
	s.metrics.IncSyncRunsActive()
	defer s.metrics.DecSyncRunsActive()

	if s.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.deadline)
		defer cancel()
	}

	log := s.logger.WithContext(ctx)
	startDate, endDate := s.resolveRange(req)
	resuming := len(req.PendingReports) > 0

	log.WithFields(map[string]any{
		"start_date": startDate,
		"end_date":   endDate,
		"resuming":   resuming,
	}).Info("Starting report sync")

	token, err := s.tokens.Exchange(ctx, req.Credentials)
	if err != nil {
		s.metrics.RecordSyncRun("auth_failed", time.Since(start))
		return nil, fmt.Errorf("failed to acquire bearer token: %w", err)
	}
	auth := domain.RequestAuth{Token: token, ClientID: req.ClientID, ProfileID: req.ProfileID}

	jobs := req.PendingReports
	if !resuming {
		jobs = s.orchestrator.Submit(ctx, auth, domain.ReportCatalog(), startDate, endDate, nil)
	}

	submitted := 0
	for _, job := range jobs {
		if job.ReportID != "" {
			submitted++
		}
	}
	if submitted == 0 {
		if len(jobs) == 0 {
			// every report type was legitimately absent for this account
			log.Info("No report types applicable for this account")
			result := s.emptyResult()
			s.metrics.RecordSyncRun("complete", time.Since(start))
			return result, nil
		}
		s.metrics.RecordSyncRun("failed", time.Since(start))
		return nil, fmt.Errorf("no report types could be submitted: %s", jobs[0].Error)
	}

	part := s.poller.Wait(ctx, auth, jobs)

	if len(part.Pending) > 0 {
		log.WithFields(map[string]any{
			"pending":   len(part.Pending),
			"completed": len(part.Completed),
			"failed":    len(part.Failed),
		}).Info("Sync not finished, returning resumable job snapshot")
		s.metrics.RecordSyncRun("pending", time.Since(start))
		return &domain.SyncResult{
			Status:         domain.SyncPending,
			PendingReports: part.All(),
		}, nil
	}

	reports, agg := s.fetchAndAggregate(ctx, &part)
	result := s.buildResult(&part, reports, agg)

	if err := s.results.Store(ctx, result); err != nil {
		log.WithError(err).Warn("Failed to cache sync result")
	}

	duration := time.Since(start)
	s.metrics.RecordSyncRun("complete", duration)
	log.WithFields(map[string]any{
		"duration":          duration,
		"rows":              result.Summary.RowsTransformed,
		"reports_completed": result.Summary.ReportsCompleted,
		"reports_failed":    result.Summary.ReportsFailed,
	}).Info("Report sync completed")

	return result, nil
}

// fetchAndAggregate downloads, decodes, normalizes, and folds every
// completed job. A download failure moves that job to the error set without
// touching its siblings; an undecodable payload counts as zero rows.
func (s *SyncService) fetchAndAggregate(ctx context.Context, part *Partition) (map[string][]domain.Row, *Aggregator) {
	log := s.logger.WithContext(ctx)
	reports := make(map[string][]domain.Row)
	agg := NewAggregator()

	var fetched []domain.ReportJob
	for _, job := range part.Completed {
		spec, ok := domain.SpecByKey(job.Key)
		if !ok {
			// still accounted for: the job must show up in the errors array,
			// not silently vanish from both counts
			log.WithField("report", job.Key).Warn("Completed job references unknown report type")
			job.Status = domain.JobError
			job.Error = "unknown report type: " + job.Key
			part.Failed = append(part.Failed, job)
			continue
		}

		payload, err := s.api.Download(ctx, job.DownloadURL)
		if err != nil {
			log.WithError(err).WithField("report", job.Key).Error("Report download failed")
			job.Status = domain.JobError
			job.Error = fmt.Sprintf("download failed: %v", err)
			part.Failed = append(part.Failed, job)
			continue
		}

		rows, err := decodeRows(payload)
		if err != nil {
			log.WithError(err).WithField("report", job.Key).Warn("Report payload discarded")
			rows = nil
		}

		normalized := normalizeRows(spec, rows)
		reports[spec.Key] = normalized
		agg.Consume(spec, normalized)
		s.metrics.RecordRowsNormalized(spec.Key, len(normalized))
		fetched = append(fetched, job)
	}
	part.Completed = fetched

	return reports, agg
}

func (s *SyncService) buildResult(part *Partition, reports map[string][]domain.Row, agg *Aggregator) *domain.SyncResult {
	daily := agg.DailyTotals()
	skus := agg.SkuSummary()
	campaigns := agg.CampaignSummary()

	var errs []domain.SyncError
	for _, job := range part.Failed {
		errs = append(errs, domain.SyncError{Key: job.Key, Message: job.Error})
	}

	summary := &domain.SyncSummary{
		RowsByReport:     agg.RowsByReport(),
		CampaignCount:    len(campaigns),
		SkuCount:         len(skus),
		ReportsCompleted: len(part.Completed),
		ReportsFailed:    len(part.Failed),
	}
	for _, rows := range reports {
		summary.RowsTransformed += len(rows)
	}
	if len(daily) > 0 {
		summary.DateStart = daily[0].Date
		summary.DateEnd = daily[len(daily)-1].Date
	}
	for _, d := range daily {
		summary.Spend += d.Spend
		summary.Revenue += d.Revenue
	}
	summary.ACOS = safeDiv(summary.Spend, summary.Revenue) * 100
	summary.ROAS = safeDiv(summary.Revenue, summary.Spend)

	return &domain.SyncResult{
		Status:       domain.SyncComplete,
		Summary:      summary,
		DailyData:    daily,
		SkuDailyData: agg.SkuDaily(),
		SkuSummary:   skus,
		Campaigns:    campaigns,
		Reports:      reports,
		Errors:       errs,
	}
}

func (s *SyncService) emptyResult() *domain.SyncResult {
	return &domain.SyncResult{
		Status: domain.SyncComplete,
		Summary: &domain.SyncSummary{
			RowsByReport: map[string]int{},
		},
		Reports: map[string][]domain.Row{},
	}
}

// resolveRange picks the explicit date range when given, otherwise the
// trailing daysBack window ending today (UTC).
func (s *SyncService) resolveRange(req domain.SyncRequest) (string, string) {
	if req.StartDate != "" && req.EndDate != "" {
		return req.StartDate, req.EndDate
	}
	daysBack := req.DaysBack
	if daysBack <= 0 {
		daysBack = s.defaultDaysBack
	}
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -daysBack)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}
