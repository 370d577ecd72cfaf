package core

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
)

// ErrIncompleteConfig is returned when an embed configuration misses a required field.
var ErrIncompleteConfig = errors.New("incomplete configuration received")

// EmbedConfig is everything a client needs to render one report.
// A refresh produces a new value; existing values are never mutated.
type EmbedConfig struct {
	ReportID        string    `json:"reportId"`
	EmbedURL        string    `json:"embedUrl"`
	AccessToken     string    `json:"accessToken"`
	TokenExpiration time.Time `json:"tokenExpiration"`
	WorkspaceID     string    `json:"workspaceId,omitempty"`
	DatasetID       string    `json:"datasetId,omitempty"`
}

// Validate checks that the four required fields are present.
func (c *EmbedConfig) Validate() error {
	if c == nil {
		return ErrIncompleteConfig
	}
	var missing []string
	if c.ReportID == "" {
		missing = append(missing, "reportId")
	}
	if c.EmbedURL == "" {
		missing = append(missing, "embedUrl")
	}
	if c.AccessToken == "" {
		missing = append(missing, "accessToken")
	}
	if c.TokenExpiration.IsZero() {
		missing = append(missing, "tokenExpiration")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}
	return nil
}

// EmbedRequest selects the report an embed token is minted for.
// Empty fields fall back to the configured defaults.
type EmbedRequest struct {
	ReportID    string
	DatasetID   string
	WorkspaceID string
}

// ExportFormat is the file format of an export job.
type ExportFormat string

const (
	FormatPDF  ExportFormat = "PDF"
	FormatPPTX ExportFormat = "PPTX"
	FormatPNG  ExportFormat = "PNG"
)

// ParseExportFormat normalizes a user-supplied format. Empty input means PDF.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToUpper(strings.TrimSpace(s))); f {
	case "":
		return FormatPDF, nil
	case FormatPDF, FormatPPTX, FormatPNG:
		return f, nil
	default:
		return "", &InvalidParameterError{Param: "format", Value: s, Allowed: []string{"PDF", "PPTX", "PNG"}}
	}
}

// ExportStatus is the remote state of an export job.
type ExportStatus string

const (
	StatusNotStarted ExportStatus = "NotStarted"
	StatusRunning    ExportStatus = "Running"
	StatusSucceeded  ExportStatus = "Succeeded"
	StatusFailed     ExportStatus = "Failed"
)

// ExportRequest asks for a new export job.
type ExportRequest struct {
	Format      ExportFormat
	ReportID    string
	WorkspaceID string
}

// ExportSubmission is the result of a submitted export job.
type ExportSubmission struct {
	ExportID    string       `json:"exportId"`
	ReportID    string       `json:"reportId"`
	WorkspaceID string       `json:"workspaceId"`
	Format      ExportFormat `json:"format"`
}

// ExportRef addresses an existing export job.
type ExportRef struct {
	ExportID    string
	ReportID    string
	WorkspaceID string
}

// Validate rejects a reference that misses any identifier.
func (r ExportRef) Validate() error {
	var missing []string
	if r.ExportID == "" {
		missing = append(missing, "exportId")
	}
	if r.ReportID == "" {
		missing = append(missing, "reportId")
	}
	if r.WorkspaceID == "" {
		missing = append(missing, "workspaceId")
	}
	if len(missing) > 0 {
		return &MissingParameterError{Params: missing}
	}
	return nil
}

// ExportJob is the observed state of an export job.
// Transitions are driven by the remote service.
type ExportJob struct {
	ExportID              string       `json:"exportId"`
	ReportID              string       `json:"reportId,omitempty"`
	WorkspaceID           string       `json:"workspaceId,omitempty"`
	Format                ExportFormat `json:"format,omitempty"`
	Status                ExportStatus `json:"status"`
	PercentComplete       int          `json:"percentComplete"`
	ResourceLocation      string       `json:"resourceLocation,omitempty"`
	ResourceFileExtension string       `json:"resourceFileExtension,omitempty"`
	CreatedAt             *time.Time   `json:"createdDateTime,omitempty"`
	LastActionAt          *time.Time   `json:"lastActionDateTime,omitempty"`
	ExpiresAt             *time.Time   `json:"expirationTime,omitempty"`
}

func (j *ExportJob) IsCompleted() bool {
	return j.Status == StatusSucceeded
}

func (j *ExportJob) IsFailed() bool {
	return j.Status == StatusFailed
}

func (j *ExportJob) IsInProgress() bool {
	return j.Status == StatusRunning || j.Status == StatusNotStarted
}

// ExportFile is a downloaded export artifact. The caller must close Body.
// Header values are passed through from the reporting API.
type ExportFile struct {
	Body               io.ReadCloser
	ContentType        string
	ContentDisposition string
	ContentLength      int64
}
