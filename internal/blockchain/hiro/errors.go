package hiro

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrInvalidResponse is returned when a 2xx body is not the expected JSON
var ErrInvalidResponse = errors.New("invalid API response")

// StatusCode returns the upstream HTTP status carried by err, or 0
func StatusCode(err error) int {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is an upstream 401
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

// IsForbidden reports whether err is an upstream 403
func IsForbidden(err error) bool {
	return StatusCode(err) == http.StatusForbidden
}

// IsNotFound reports whether err is an upstream 404
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// IsRateLimited reports whether err is an upstream 429
func IsRateLimited(err error) bool {
	return StatusCode(err) == http.StatusTooManyRequests
}

// AuthFailure maps an error from ProbeAuth to the HTTP status and message
// reported to users checking their credential
func AuthFailure(err error) (int, string) {
	switch {
	case IsUnauthorized(err):
		return http.StatusUnauthorized, "Invalid API key - Authentication failed"
	case IsForbidden(err):
		return http.StatusForbidden, "API key access denied - Check permissions"
	case IsRateLimited(err):
		return http.StatusTooManyRequests, "Rate limit exceeded - API key may be invalid"
	case errors.Is(err, ErrInvalidResponse):
		return http.StatusInternalServerError, "Invalid API response structure"
	}

	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.StatusCode, fmt.Sprintf("API error: %d %s", upstreamErr.StatusCode, upstreamErr.Status)
	}
	return http.StatusInternalServerError, err.Error()
}
