package usecase

import (
	"context"
	"sync"

	"adsync/internal/domain"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"
)

// promauto registers against the default registry, so the package shares one
// Metrics instance across tests.
var testMetrics = metrics.New()

func testLogger() *logger.Logger {
	return logger.New("error")
}

// fakeAPI is a hand-written domain.ReportingAPI double. Behavior is
// injected per test; every call is recorded.
type fakeAPI struct {
	mu         sync.Mutex
	createFn   func(req domain.CreateReportRequest) (*domain.ReportStatus, error)
	getFn      func(reportID string) (*domain.ReportStatus, error)
	downloadFn func(url string) (*domain.Payload, error)

	createCalls []domain.CreateReportRequest
	getCalls    map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{getCalls: make(map[string]int)}
}

func (f *fakeAPI) CreateReport(_ context.Context, _ domain.RequestAuth, req domain.CreateReportRequest) (*domain.ReportStatus, error) {
	f.mu.Lock()
	f.createCalls = append(f.createCalls, req)
	f.mu.Unlock()
	return f.createFn(req)
}

func (f *fakeAPI) GetReport(_ context.Context, _ domain.RequestAuth, reportID string) (*domain.ReportStatus, error) {
	f.mu.Lock()
	f.getCalls[reportID]++
	f.mu.Unlock()
	return f.getFn(reportID)
}

func (f *fakeAPI) Download(_ context.Context, url string) (*domain.Payload, error) {
	return f.downloadFn(url)
}

func (f *fakeAPI) callsFor(reportTypeID string) []domain.CreateReportRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.CreateReportRequest
	for _, req := range f.createCalls {
		if req.Configuration.ReportTypeID == reportTypeID {
			out = append(out, req)
		}
	}
	return out
}

type fakeTokens struct {
	token string
	err   error
}

func (f *fakeTokens) Exchange(context.Context, domain.Credentials) (string, error) {
	return f.token, f.err
}

type fakeResults struct {
	mu   sync.Mutex
	last *domain.SyncResult
}

func (f *fakeResults) Store(_ context.Context, result *domain.SyncResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = result
	return nil
}

func (f *fakeResults) Last(context.Context) (*domain.SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last, nil
}
