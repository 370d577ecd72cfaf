package service

import (
	"errors"
	"net/http"

	"github.com/Ayaan2907/powerBiChat/internal/core"
)

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	StatusCode int
	Wrapped    error
}

func (e HTTPError) Error() string {
	return e.Wrapped.Error()
}

func (e HTTPError) Unwrap() error {
	return e.Wrapped
}

func httpError(statusCode int, err error) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Wrapped:    err,
	}
}

// StatusFor maps an error of an export operation to the status the gateway answers with.
// Upstream failures keep the reporting API's status.
func StatusFor(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}

	var upstream *core.UpstreamError
	if errors.As(err, &upstream) && upstream.StatusCode >= 400 {
		return upstream.StatusCode
	}

	switch core.KindOf(err) {
	case core.KindMissingParameter, core.KindInvalidParameter:
		return http.StatusBadRequest
	case core.KindAuthentication:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
