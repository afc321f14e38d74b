package infrastructure

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"adsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenProvider(serverURL string) *TokenProvider {
	return NewTokenProvider(serverURL, 5*time.Second, testLogger(), testMetrics)
}

func testCredentials() domain.Credentials {
	return domain.Credentials{ClientID: "cid", ClientSecret: "sec", RefreshToken: "rt-1"}
}

func TestExchangeSendsRefreshTokenForm(t *testing.T) {
	var gotContentType string
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotForm, _ = url.ParseQuery(string(body))
		w.Write([]byte(`{"access_token":"atza|token-xyz","token_type":"bearer","expires_in":3600}`))
	}))
	defer server.Close()

	token, err := newTestTokenProvider(server.URL).Exchange(context.Background(), testCredentials())
	require.NoError(t, err)
	assert.Equal(t, "atza|token-xyz", token)

	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "refresh_token", gotForm.Get("grant_type"))
	assert.Equal(t, "rt-1", gotForm.Get("refresh_token"))
	assert.Equal(t, "cid", gotForm.Get("client_id"))
	assert.Equal(t, "sec", gotForm.Get("client_secret"))
}

func TestExchangeLongAccessToken(t *testing.T) {
	// LWA access tokens routinely run past a kilobyte; the whole success body
	// must be read, the excerpt cap applies to error bodies only
	longToken := "Atza|" + strings.Repeat("x", 2500)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, _ := json.Marshal(map[string]any{
			"access_token": longToken,
			"token_type":   "bearer",
			"expires_in":   3600,
		})
		w.Write(resp)
	}))
	defer server.Close()

	token, err := newTestTokenProvider(server.URL).Exchange(context.Background(), testCredentials())
	require.NoError(t, err)
	assert.Equal(t, longToken, token)
}

func TestExchangeNon2xxIsAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"The request has an invalid grant parameter"}`))
	}))
	defer server.Close()

	_, err := newTestTokenProvider(server.URL).Exchange(context.Background(), testCredentials())
	require.Error(t, err)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusBadRequest, authErr.Status)
	assert.Contains(t, authErr.Message, "invalid_grant")
}

func TestExchangeErrorBodyIsTruncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("e", 50_000)))
	}))
	defer server.Close()

	_, err := newTestTokenProvider(server.URL).Exchange(context.Background(), testCredentials())
	require.Error(t, err)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Len(t, authErr.Message, 2000)
}

func TestExchangeMissingAccessToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"bearer"}`))
	}))
	defer server.Close()

	_, err := newTestTokenProvider(server.URL).Exchange(context.Background(), testCredentials())
	require.Error(t, err)

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "missing access_token")
}

func TestExchangeUnparseableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer server.Close()

	_, err := newTestTokenProvider(server.URL).Exchange(context.Background(), testCredentials())

	var authErr *domain.AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Contains(t, authErr.Message, "unparseable token response")
}

func TestExchangeHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestTokenProvider(server.URL).Exchange(ctx, testCredentials())
	require.Error(t, err)
	assert.NotErrorAs(t, err, new(*domain.AuthError), "a timeout is transport failure, not an auth rejection")
}
