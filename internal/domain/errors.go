package domain

import "fmt"

// AuthError means the token exchange failed. Nothing downstream can proceed
// without a bearer token, so the sync service treats this as fatal.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("token exchange failed: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("token exchange failed: %s", e.Message)
}

// APIError is a non-2xx response from the reporting API. Body is truncated
// by the client to bound memory and log size.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reporting API returned status %d: %s", e.Status, e.Body)
}
