package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"adsync/internal/domain"
	"adsync/pkg/logger"
	"adsync/pkg/metrics"
)

// implements domain.TokenProvider against the LWA token endpoint
type TokenProvider struct {
	client   *http.Client
	tokenURL string
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewTokenProvider(tokenURL string, timeout time.Duration, logger *logger.Logger, metrics *metrics.Metrics) *TokenProvider {
	return &TokenProvider{
		client:   &http.Client{Timeout: timeout},
		tokenURL: tokenURL,
		logger:   logger,
		metrics:  metrics,
	}
}

// Exchange trades the refresh token for a bearer token. It never retries:
// an auth failure is fatal for the whole pipeline and the caller knows it.
func (p *TokenProvider) Exchange(ctx context.Context, creds domain.Credentials) (string, error) {
	start := time.Now()

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", creds.RefreshToken)
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		p.metrics.RecordUpstreamFailure("token", "request_creation")
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		p.metrics.RecordUpstreamFailure("token", "network_error")
		return "", fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(start)
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.metrics.RecordUpstreamFailure("token", "read_body")
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// only error bodies are excerpted; a valid token response may well
		// exceed the excerpt limit
		excerpt := body
		if len(excerpt) > bodyExcerptLimit {
			excerpt = excerpt[:bodyExcerptLimit]
		}
		p.metrics.RecordUpstreamCall("token", fmt.Sprintf("error_%d", resp.StatusCode), duration)
		return "", &domain.AuthError{Status: resp.StatusCode, Message: string(excerpt)}
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		p.metrics.RecordUpstreamFailure("token", "json_parse")
		return "", &domain.AuthError{Message: fmt.Sprintf("unparseable token response: %v", err)}
	}
	if payload.AccessToken == "" {
		p.metrics.RecordUpstreamFailure("token", "missing_token")
		return "", &domain.AuthError{Message: "token response missing access_token"}
	}

	p.metrics.RecordUpstreamCall("token", "success", duration)
	p.logger.WithContext(ctx).WithField("duration", duration).Debug("Exchanged refresh token")

	return payload.AccessToken, nil
}
