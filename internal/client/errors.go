package client

import (
	"fmt"
	"net/http"
)

// TimeoutError is returned when a request exceeds the client timeout.
type TimeoutError struct {
	Method string
	Path   string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s %s: request timed out", e.Method, e.Path)
}

// NetworkError wraps transport failures where no response was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    interface{}
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unauthorized() bool { return e.StatusCode == http.StatusUnauthorized }
func (e *APIError) Forbidden() bool    { return e.StatusCode == http.StatusForbidden }
func (e *APIError) NotFound() bool     { return e.StatusCode == http.StatusNotFound }

func retryable(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

// idempotent reports whether a failed call may be repeated. A POST that
// failed after the server committed would be applied twice.
func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
