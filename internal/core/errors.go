package core

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds, rendered as the machine-readable part of every error payload.
const (
	KindConfiguration    = "configuration_error"
	KindAuthentication   = "authentication_error"
	KindUpstream         = "upstream_error"
	KindExportFailed     = "export_failed"
	KindExportTimeout    = "export_timeout"
	KindMissingParameter = "missing_parameter"
	KindInvalidParameter = "invalid_parameter"
	KindIncompleteConfig = "incomplete_config"
	KindInternal         = "internal_error"
)

// Kinded is implemented by every error of the taxonomy.
type Kinded interface {
	error
	Kind() string
}

// KindOf returns the kind of the first kinded error in err's chain.
func KindOf(err error) string {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	if errors.Is(err, ErrIncompleteConfig) {
		return KindIncompleteConfig
	}
	return KindInternal
}

// ConfigurationError reports required settings that are absent.
// It is never retried.
type ConfigurationError struct {
	Missing []string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Message != "" {
		return "configuration error: " + e.Message
	}
	return "configuration error: missing " + strings.Join(e.Missing, ", ")
}

func (e *ConfigurationError) Kind() string { return KindConfiguration }

// AuthenticationError means the identity provider rejected the credential exchange.
type AuthenticationError struct {
	Strategy   string
	StatusCode int
	Body       string
	Cause      error
}

func (e *AuthenticationError) Error() string {
	msg := fmt.Sprintf("authentication via %s failed", e.Strategy)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	} else if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *AuthenticationError) Unwrap() error { return e.Cause }

func (e *AuthenticationError) Kind() string { return KindAuthentication }

// UpstreamError is a non-2xx answer of the reporting API, preserved verbatim.
type UpstreamError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: reporting API returned %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (e *UpstreamError) Kind() string { return KindUpstream }

// ExportFailedError is a terminal Failed status of a remote export job.
type ExportFailedError struct {
	ExportID string
	Status   ExportStatus
}

func (e *ExportFailedError) Error() string {
	return fmt.Sprintf("export %s failed with status: %s", e.ExportID, e.Status)
}

func (e *ExportFailedError) Kind() string { return KindExportFailed }

// ExportTimeoutError is returned once the polling cap is exhausted.
type ExportTimeoutError struct {
	ExportID string
	Attempts int
}

func (e *ExportTimeoutError) Error() string {
	return fmt.Sprintf("export %s timed out after %d status checks", e.ExportID, e.Attempts)
}

func (e *ExportTimeoutError) Kind() string { return KindExportTimeout }

// MissingParameterError rejects a request before any network call.
type MissingParameterError struct {
	Params []string
}

func (e *MissingParameterError) Error() string {
	return "missing required parameters: " + strings.Join(e.Params, ", ")
}

func (e *MissingParameterError) Kind() string { return KindMissingParameter }

// InvalidParameterError rejects a parameter with an unsupported value.
type InvalidParameterError struct {
	Param   string
	Value   string
	Allowed []string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %q (allowed: %s)", e.Param, e.Value, strings.Join(e.Allowed, ", "))
}

func (e *InvalidParameterError) Kind() string { return KindInvalidParameter }

// Redact replaces every occurrence of the given secrets in s.
// Empty secrets are ignored.
func Redact(s string, secrets ...string) string {
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}
