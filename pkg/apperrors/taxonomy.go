package apperrors

import (
	"errors"
	"net/http"
)

// Sentinel kinds. Errors returned by the SDK match exactly one of these with errors.Is.
var (
	ErrNotFound       = New("object not found").SetStatusCode(http.StatusNotFound)
	ErrForbidden      = New("forbidden").SetStatusCode(http.StatusForbidden)
	ErrUnauthorized   = New("unauthorized").SetStatusCode(http.StatusUnauthorized)
	ErrServerOrClient = New("request failed")
	ErrParse          = New("unable to parse response")
	ErrValidation     = New("validation failed")
	ErrTransport      = New("transport failure")
)

// FromStatus maps a response status to the matching kind. It returns nil for statuses
// below 400. The returned error carries the status code and the raw body.
func FromStatus(status int, body string) Error {
	if status < http.StatusBadRequest {
		return nil
	}
	var kind Error
	switch status {
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusForbidden:
		kind = ErrForbidden
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	default:
		kind = ErrServerOrClient
	}
	return kind.New(kind.Error()).SetStatusCode(status).WithBody(body)
}

// StatusCode extracts the HTTP status from an SDK error. It returns 0 when err carries
// no status.
func StatusCode(err error) int {
	var ae Error
	if errors.As(err, &ae) {
		return ae.StatusCode()
	}
	return 0
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
