package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"adsync/internal/domain"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"

	"golang.org/x/time/rate"
)

// error bodies are truncated before logging or wrapping
const bodyExcerptLimit = 2000

// implements domain.ReportingAPI
type AdsClient struct {
	client      *http.Client
	baseURL     string
	logger      *logger.Logger
	metrics     *metrics.Metrics
	rateLimiter *rate.Limiter
}

func NewAdsClient(baseURL string, timeout time.Duration, ratePerSecond int, logger *logger.Logger, metrics *metrics.Metrics) *AdsClient {
	return &AdsClient{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		logger:      logger,
		metrics:     metrics,
		rateLimiter: rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
	}
}

// CreateReport submits an async report request.
func (c *AdsClient) CreateReport(ctx context.Context, auth domain.RequestAuth, req domain.CreateReportRequest) (*domain.ReportStatus, error) {
	body, contentType, err := c.do(ctx, "create_report", http.MethodPost, c.baseURL+"/reporting/reports", &auth, req)
	if err != nil {
		return nil, err
	}
	return parseReportStatus(body, contentType)
}

// GetReport polls the status of a submitted report.
func (c *AdsClient) GetReport(ctx context.Context, auth domain.RequestAuth, reportID string) (*domain.ReportStatus, error) {
	body, contentType, err := c.do(ctx, "get_report", http.MethodGet, c.baseURL+"/reporting/reports/"+reportID, &auth, nil)
	if err != nil {
		return nil, err
	}
	status, err := parseReportStatus(body, contentType)
	if err != nil {
		return nil, err
	}
	if status.ReportID == "" {
		status.ReportID = reportID
	}
	return status, nil
}

// Download fetches a finished report payload. The URL is pre-signed by the
// upstream, so no credential headers are attached.
func (c *AdsClient) Download(ctx context.Context, url string) (*domain.Payload, error) {
	start := time.Now()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordUpstreamFailure("download", "rate_limit")
		return nil, fmt.Errorf("rate limit exceeded: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		c.metrics.RecordUpstreamFailure("download", "request_creation")
		return nil, fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamFailure("download", "network_error")
		return nil, fmt.Errorf("failed to download report: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerptLimit))
		c.metrics.RecordUpstreamCall("download", fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, &domain.APIError{Status: resp.StatusCode, Body: string(excerpt)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordUpstreamFailure("download", "read_body")
		return nil, fmt.Errorf("failed to read report payload: %w", err)
	}

	c.metrics.RecordUpstreamCall("download", "success", duration)
	c.logger.WithContext(ctx).WithFields(map[string]any{
		"bytes":    len(body),
		"duration": duration,
	}).Debug("Downloaded report payload")

	return &domain.Payload{
		Body:            body,
		ContentType:     resp.Header.Get("Content-Type"),
		ContentEncoding: resp.Header.Get("Content-Encoding"),
		URL:             url,
	}, nil
}

// do executes an authenticated call and surfaces non-2xx responses as
// domain.APIError with the body excerpt bounded.
func (c *AdsClient) do(ctx context.Context, endpoint, method, url string, auth *domain.RequestAuth, payload any) ([]byte, string, error) {
	start := time.Now()

	if err := c.rateLimiter.Wait(ctx); err != nil {
		c.metrics.RecordUpstreamFailure(endpoint, "rate_limit")
		return nil, "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			c.metrics.RecordUpstreamFailure(endpoint, "json_marshal")
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		c.metrics.RecordUpstreamFailure(endpoint, "request_creation")
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+auth.Token)
	req.Header.Set("Amazon-Advertising-API-ClientId", auth.ClientID)
	if auth.ProfileID != "" {
		req.Header.Set("Amazon-Advertising-API-Scope", auth.ProfileID)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/vnd.createasyncreportrequest.v3+json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordUpstreamFailure(endpoint, "network_error")
		return nil, "", fmt.Errorf("failed to call reporting API: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, bodyExcerptLimit))
		c.metrics.RecordUpstreamCall(endpoint, fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return nil, "", &domain.APIError{Status: resp.StatusCode, Body: string(excerpt)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.metrics.RecordUpstreamFailure(endpoint, "read_body")
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	c.metrics.RecordUpstreamCall(endpoint, "success", duration)
	return body, resp.Header.Get("Content-Type"), nil
}

// parseReportStatus accepts either a JSON status object or, for endpoints
// that answer with a bare pre-signed URL, a plain-text body.
func parseReportStatus(body []byte, contentType string) (*domain.ReportStatus, error) {
	trimmed := bytes.TrimSpace(body)

	if strings.Contains(contentType, "text/plain") || (len(trimmed) > 0 && trimmed[0] != '{') {
		return &domain.ReportStatus{
			Status: domain.UpstreamCompleted,
			URL:    string(trimmed),
		}, nil
	}

	var status domain.ReportStatus
	if err := json.Unmarshal(trimmed, &status); err != nil {
		return nil, fmt.Errorf("failed to parse report status: %w", err)
	}
	return &status, nil
}
