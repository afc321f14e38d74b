package infrastructure

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"adsync/internal/domain"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// promauto registers against the default registry, so the package shares one
// Metrics instance across tests.
var testMetrics = metrics.New()

func testLogger() *logger.Logger {
	return logger.New("error")
}

func newTestClient(serverURL string) *AdsClient {
	return NewAdsClient(serverURL, 5*time.Second, 100, testLogger(), testMetrics)
}

func testAuth() domain.RequestAuth {
	return domain.RequestAuth{Token: "tok-123", ClientID: "client-abc", ProfileID: "profile-9"}
}

func TestCreateReportSendsAuthHeadersAndBody(t *testing.T) {
	var gotMethod, gotPath string
	var gotHeader http.Header
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotHeader = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"reportId":"rep-1","status":"PENDING"}`))
	}))
	defer server.Close()

	req := domain.CreateReportRequest{
		Name:      "SP Campaigns 2024-01-01 to 2024-01-31",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Configuration: domain.ReportConfiguration{
			AdProduct:    domain.SponsoredProducts,
			ReportTypeID: "spCampaigns",
			TimeUnit:     "DAILY",
			Format:       "GZIP_JSON",
			GroupBy:      []string{"campaign"},
			Columns:      []string{"date", "cost"},
		},
	}

	status, err := newTestClient(server.URL).CreateReport(context.Background(), testAuth(), req)
	require.NoError(t, err)
	assert.Equal(t, "rep-1", status.ReportID)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/reporting/reports", gotPath)
	assert.Equal(t, "Bearer tok-123", gotHeader.Get("Authorization"))
	assert.Equal(t, "client-abc", gotHeader.Get("Amazon-Advertising-API-ClientId"))
	assert.Equal(t, "profile-9", gotHeader.Get("Amazon-Advertising-API-Scope"))
	assert.Equal(t, "application/vnd.createasyncreportrequest.v3+json", gotHeader.Get("Content-Type"))

	var sent domain.CreateReportRequest
	require.NoError(t, json.Unmarshal(gotBody, &sent))
	assert.Equal(t, req, sent)
}

func TestScopeHeaderOmittedWithoutProfile(t *testing.T) {
	var scope string
	var scopePresent bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scope = r.Header.Get("Amazon-Advertising-API-Scope")
		_, scopePresent = r.Header["Amazon-Advertising-Api-Scope"]
		w.Write([]byte(`{"reportId":"rep-1","status":"PENDING"}`))
	}))
	defer server.Close()

	auth := domain.RequestAuth{Token: "tok", ClientID: "cid"}
	_, err := newTestClient(server.URL).GetReport(context.Background(), auth, "rep-1")
	require.NoError(t, err)
	assert.Empty(t, scope)
	assert.False(t, scopePresent)
}

func TestGetReportParsesJSONStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reporting/reports/rep-42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"FAILURE","failureReason":"too many rows"}`))
	}))
	defer server.Close()

	status, err := newTestClient(server.URL).GetReport(context.Background(), testAuth(), "rep-42")
	require.NoError(t, err)
	assert.Equal(t, domain.UpstreamFailure, status.Status)
	assert.Equal(t, "too many rows", status.FailureReason)
	assert.Equal(t, "rep-42", status.ReportID, "id is backfilled when the upstream omits it")
}

func TestGetReportPlainTextBodyIsCompletedURL(t *testing.T) {
	// some report endpoints respond with a bare pre-signed URL once ready
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("https://dl.example.com/rep-7.json.gz?sig=abc\n"))
	}))
	defer server.Close()

	status, err := newTestClient(server.URL).GetReport(context.Background(), testAuth(), "rep-7")
	require.NoError(t, err)
	assert.Equal(t, domain.UpstreamCompleted, status.Status)
	assert.Equal(t, "https://dl.example.com/rep-7.json.gz?sig=abc", status.URL)
}

func TestErrorBodyIsTruncated(t *testing.T) {
	huge := strings.Repeat("x", 10_000)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(huge))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetReport(context.Background(), testAuth(), "rep-1")
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Len(t, apiErr.Body, 2000)
}

func TestDownloadPassesGzipBodyThrough(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(`[{"date":"2024-01-01","cost":1.5}]`))
	zw.Close()
	compressed := buf.Bytes()

	var sawAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(compressed)
	}))
	defer server.Close()

	url := server.URL + "/rep-1.json.gz?sig=abc"
	payload, err := newTestClient(server.URL).Download(context.Background(), url)
	require.NoError(t, err)

	assert.Empty(t, sawAuth, "pre-signed URLs must not carry credential headers")
	assert.Equal(t, compressed, payload.Body, "compressed bytes reach the decoder untouched")
	assert.Equal(t, url, payload.URL)
	assert.Equal(t, "application/octet-stream", payload.ContentType)
}

func TestDownloadErrorCarriesExcerpt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("Request has expired"))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Download(context.Background(), server.URL+"/rep-1")
	require.Error(t, err)

	var apiErr *domain.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
	assert.Contains(t, apiErr.Body, "Request has expired")
}

func TestParseReportStatus(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		wantStatus  string
		wantURL     string
		wantErr     bool
	}{
		{
			name:        "json status object",
			body:        `{"reportId":"r1","status":"PROCESSING"}`,
			contentType: "application/json",
			wantStatus:  "PROCESSING",
		},
		{
			name:        "plain text url",
			body:        "https://dl/r1.gz",
			contentType: "text/plain",
			wantStatus:  domain.UpstreamCompleted,
			wantURL:     "https://dl/r1.gz",
		},
		{
			name:        "url despite json content type",
			body:        "https://dl/r1.gz",
			contentType: "application/json",
			wantStatus:  domain.UpstreamCompleted,
			wantURL:     "https://dl/r1.gz",
		},
		{
			name:        "malformed json",
			body:        `{"status":`,
			contentType: "application/json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := parseReportStatus([]byte(tt.body), tt.contentType)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status.Status)
			assert.Equal(t, tt.wantURL, status.URL)
		})
	}
}
