package client

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned before any network call when the credential
// is missing
var ErrNotConfigured = errors.New("Hiro API key not configured or invalid")

// Kind classifies an API error
type Kind int

const (
	KindHTTP Kind = iota
	KindAuthentication
	KindForbidden
	KindRateLimited
	KindBadRequest
	KindNotFound
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindTransport:
		return "transport"
	default:
		return "http"
	}
}

// APIError is a failed proxy call with a user-facing message
type APIError struct {
	Kind       Kind
	StatusCode int // 0 for transport failures
	Message    string
	Err        error // underlying transport or decode error, if any
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is an *APIError of kind k
func IsKind(err error, k Kind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// errorFromStatus maps a non-2xx proxy response to an *APIError.
// bodyError is the "error" field of the response body, if any.
func errorFromStatus(status int, statusText, bodyError string) *APIError {
	e := &APIError{StatusCode: status}
	switch status {
	case 401:
		e.Kind, e.Message = KindAuthentication, "Invalid API key - Authentication failed"
	case 403:
		e.Kind, e.Message = KindForbidden, "API key access denied - Check your API key permissions"
	case 429:
		e.Kind, e.Message = KindRateLimited, "Rate limit exceeded - Your API key may be invalid"
	case 400:
		e.Kind, e.Message = KindBadRequest, orDefault(bodyError, "Bad request - Check your configuration")
	case 404:
		e.Kind, e.Message = KindNotFound, orDefault(bodyError, fmt.Sprintf("API error: %d %s", status, statusText))
	default:
		e.Kind, e.Message = KindHTTP, orDefault(bodyError, fmt.Sprintf("API error: %d %s", status, statusText))
	}
	return e
}

func transportError(err error) *APIError {
	return &APIError{Kind: KindTransport, Message: err.Error(), Err: err}
}

func orDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}
