package domain

import "context"

// TokenProvider exchanges a long-lived refresh credential for a short-lived
// bearer token. No internal retry; the caller decides what a failure means.
type TokenProvider interface {
	Exchange(ctx context.Context, creds Credentials) (string, error)
}

// ReportingAPI is the upstream async reporting surface: submit a report,
// poll its status, download the finished payload. Download URLs are
// pre-signed and need no credential.
type ReportingAPI interface {
	CreateReport(ctx context.Context, auth RequestAuth, req CreateReportRequest) (*ReportStatus, error)
	GetReport(ctx context.Context, auth RequestAuth, reportID string) (*ReportStatus, error)
	Download(ctx context.Context, url string) (*Payload, error)
}

// ResultRepository caches completed sync results so the dashboard can
// re-read the latest run without re-driving the pipeline. It is a cache,
// not a session: resumption still works by the caller replaying jobs.
type ResultRepository interface {
	Store(ctx context.Context, result *SyncResult) error
	Last(ctx context.Context) (*SyncResult, error)
}
