package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"adsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(api *fakeAPI) *Orchestrator {
	return NewOrchestrator(api, testLogger(), testMetrics, 0)
}

func TestSubmitCreatesOneJobPerSpec(t *testing.T) {
	api := newFakeAPI()
	n := 0
	api.createFn = func(domain.CreateReportRequest) (*domain.ReportStatus, error) {
		n++
		return &domain.ReportStatus{ReportID: fmt.Sprintf("r-%d", n), Status: "PENDING"}, nil
	}

	jobs := newTestOrchestrator(api).Submit(context.Background(), domain.RequestAuth{}, domain.ReportCatalog(), "2024-01-01", "2024-01-31", nil)

	require.Len(t, jobs, 8)
	for _, job := range jobs {
		assert.NotEmpty(t, job.ReportID)
		assert.Equal(t, domain.JobProcessing, job.Status)
	}
}

func TestSubmitSkipsAbsentAdProducts(t *testing.T) {
	// the account has no Sponsored Brands or Display campaigns
	api := newFakeAPI()
	api.createFn = func(req domain.CreateReportRequest) (*domain.ReportStatus, error) {
		if req.Configuration.AdProduct != domain.SponsoredProducts {
			return nil, &domain.APIError{Status: 404, Body: `{"message":"AccountNotFound"}`}
		}
		return &domain.ReportStatus{ReportID: "r-" + req.Configuration.ReportTypeID}, nil
	}

	jobs := newTestOrchestrator(api).Submit(context.Background(), domain.RequestAuth{}, domain.ReportCatalog(), "2024-01-01", "2024-01-31", nil)

	require.Len(t, jobs, 5)
	for _, job := range jobs {
		assert.True(t, strings.HasPrefix(job.Key, "sp_"), "only SP jobs expected, got %s", job.Key)
		assert.NotEqual(t, domain.JobError, job.Status, "absent types must not surface as errors")
	}
}

func TestSubmitRecordsErrorJobAndContinues(t *testing.T) {
	api := newFakeAPI()
	api.createFn = func(req domain.CreateReportRequest) (*domain.ReportStatus, error) {
		if req.Configuration.ReportTypeID == "spTargeting" {
			return nil, &domain.APIError{Status: 500, Body: "internal error"}
		}
		return &domain.ReportStatus{ReportID: "r-" + req.Configuration.ReportTypeID}, nil
	}

	jobs := newTestOrchestrator(api).Submit(context.Background(), domain.RequestAuth{}, domain.ReportCatalog(), "2024-01-01", "2024-01-31", nil)

	require.Len(t, jobs, 8)
	byKey := make(map[string]domain.ReportJob)
	for _, job := range jobs {
		byKey[job.Key] = job
	}
	assert.Equal(t, domain.JobError, byKey["sp_targeting"].Status)
	assert.Contains(t, byKey["sp_targeting"].Error, "internal error")
	assert.Equal(t, domain.JobProcessing, byKey["sp_campaigns"].Status)
}

func TestSubmitKeepsExistingTerminalJobs(t *testing.T) {
	api := newFakeAPI()
	api.createFn = func(req domain.CreateReportRequest) (*domain.ReportStatus, error) {
		return &domain.ReportStatus{ReportID: "r-" + req.Configuration.ReportTypeID}, nil
	}

	existing := []domain.ReportJob{
		{Key: "sp_campaigns", Label: "SP Campaigns", ReportID: "old-1", Status: domain.JobCompleted, DownloadURL: "http://dl/1"},
	}
	jobs := newTestOrchestrator(api).Submit(context.Background(), domain.RequestAuth{}, domain.ReportCatalog(), "2024-01-01", "2024-01-31", existing)

	require.Len(t, jobs, 8)
	assert.Empty(t, api.callsFor("spCampaigns"), "terminal jobs must not be resubmitted")
}

func TestSchemaDriftRecoveryResubmitsIntersection(t *testing.T) {
	driftBody := `{"message":"Report request contains invalid values for columns. Allowed values: (date, impressions, clicks, cost, sales7d)"}`

	api := newFakeAPI()
	api.createFn = func(req domain.CreateReportRequest) (*domain.ReportStatus, error) {
		if req.Configuration.ReportTypeID == "spCampaigns" && len(req.Configuration.Columns) > 5 {
			return nil, &domain.APIError{Status: 400, Body: driftBody}
		}
		return &domain.ReportStatus{ReportID: "r-" + req.Configuration.ReportTypeID}, nil
	}

	jobs := newTestOrchestrator(api).Submit(context.Background(), domain.RequestAuth{}, domain.ReportCatalog(), "2024-01-01", "2024-01-31", nil)

	byKey := make(map[string]domain.ReportJob)
	for _, job := range jobs {
		byKey[job.Key] = job
	}
	require.Equal(t, domain.JobProcessing, byKey["sp_campaigns"].Status)

	calls := api.callsFor("spCampaigns")
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"date", "impressions", "clicks", "cost", "sales7d"}, calls[1].Configuration.Columns,
		"retry must carry exactly the intersection, in original request order")
}

func TestSchemaDriftSecondFailureIsFatalForSpecOnly(t *testing.T) {
	driftBody := `invalid values ... Allowed values: (date, impressions, clicks, cost)`

	api := newFakeAPI()
	api.createFn = func(req domain.CreateReportRequest) (*domain.ReportStatus, error) {
		if req.Configuration.ReportTypeID == "sbCampaigns" {
			return nil, &domain.APIError{Status: 400, Body: driftBody}
		}
		return &domain.ReportStatus{ReportID: "r-" + req.Configuration.ReportTypeID}, nil
	}

	jobs := newTestOrchestrator(api).Submit(context.Background(), domain.RequestAuth{}, domain.ReportCatalog(), "2024-01-01", "2024-01-31", nil)

	byKey := make(map[string]domain.ReportJob)
	for _, job := range jobs {
		byKey[job.Key] = job
	}
	assert.Equal(t, domain.JobError, byKey["sb_campaigns"].Status)
	assert.Equal(t, domain.JobProcessing, byKey["sd_campaigns"].Status, "sibling specs keep going")
	assert.Len(t, api.callsFor("sbCampaigns"), 2, "drift recovery gets exactly one retry")
}

func TestClassifySubmission(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want submissionClass
	}{
		{"http 404", &domain.APIError{Status: 404, Body: "not found"}, classAbsent},
		{"http 401", &domain.APIError{Status: 401, Body: "nope"}, classAbsent},
		{"account not found", &domain.APIError{Status: 400, Body: `{"code":"AccountNotFound"}`}, classAbsent},
		{"unauthorized text", &domain.APIError{Status: 403, Body: "UNAUTHORIZED"}, classAbsent},
		{"schema drift", &domain.APIError{Status: 400, Body: "invalid values for field. Allowed values: (date)"}, classSchemaDrift},
		{"server error", &domain.APIError{Status: 500, Body: "boom"}, classFatal},
		{"plain error", errors.New("connection refused"), classFatal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := classifySubmission(tc.err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseAllowedColumns(t *testing.T) {
	msg := `Report contains invalid values. Allowed values: (date, impressions, clicks, cost)`
	assert.Equal(t, []string{"date", "impressions", "clicks", "cost"}, parseAllowedColumns(msg))

	assert.Nil(t, parseAllowedColumns("no parenthesized list here"))
}

func TestReduceColumnsIntersection(t *testing.T) {
	requested := []string{
		"date", "campaignName", "campaignId", "campaignStatus", "campaignBudgetAmount",
		"impressions", "clicks", "cost", "purchases7d", "sales7d",
	}
	allowed := []string{"date", "impressions", "clicks", "cost"}

	// four survivors: use the intersection as-is
	assert.Equal(t, []string{"date", "impressions", "clicks", "cost"}, reduceColumns(requested, allowed))
}

func TestReduceColumnsFallback(t *testing.T) {
	// only the date survives the intersection, so fall back to the core set
	// plus any allowed sales/purchase/unit metric
	requested := []string{"date", "customColA", "customColB"}
	allowed := []string{"date", "impressions", "clicks", "cost", "attributedSales14d", "unitsOrdered"}

	got := reduceColumns(requested, allowed)
	assert.Equal(t, []string{"date", "impressions", "clicks", "cost", "attributedSales14d", "unitsOrdered"}, got)
}

func TestReduceColumnsNoAllowedList(t *testing.T) {
	assert.Nil(t, reduceColumns([]string{"date"}, nil))
}
