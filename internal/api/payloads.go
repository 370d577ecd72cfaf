package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/Ayaan2907/powerBiChat/internal/core"
)

type ExportPayload struct {
	// Format is one of PDF, PPTX or PNG. Defaults to PDF.
	Format string `json:"format"`

	// ReportID and WorkspaceID default to the configured report.
	ReportID    string `json:"reportId"`
	WorkspaceID string `json:"workspaceId"`
}

type ExportResponse struct {
	Success     bool              `json:"success"`
	ExportID    string            `json:"exportId"`
	ReportID    string            `json:"reportId"`
	WorkspaceID string            `json:"workspaceId"`
	Format      core.ExportFormat `json:"format"`
	Message     string            `json:"message"`
}

type ExportStatusResponse struct {
	Success               bool              `json:"success"`
	ExportID              string            `json:"exportId"`
	Status                core.ExportStatus `json:"status"`
	PercentComplete       int               `json:"percentComplete"`
	IsCompleted           bool              `json:"isCompleted"`
	IsFailed              bool              `json:"isFailed"`
	IsInProgress          bool              `json:"isInProgress"`
	ResourceLocation      string            `json:"resourceLocation,omitempty"`
	ResourceFileExtension string            `json:"resourceFileExtension,omitempty"`
	CreatedDateTime       *time.Time        `json:"createdDateTime,omitempty"`
	LastActionDateTime    *time.Time        `json:"lastActionDateTime,omitempty"`
	ExpirationTime        *time.Time        `json:"expirationTime,omitempty"`
}

// Job converts the response back into the domain view.
func (r ExportStatusResponse) Job() *core.ExportJob {
	return &core.ExportJob{
		ExportID:              r.ExportID,
		Status:                r.Status,
		PercentComplete:       r.PercentComplete,
		ResourceLocation:      r.ResourceLocation,
		ResourceFileExtension: r.ResourceFileExtension,
		CreatedAt:             r.CreatedDateTime,
		LastActionAt:          r.LastActionDateTime,
		ExpiresAt:             r.ExpirationTime,
	}
}

func newExportStatusResponse(job *core.ExportJob) ExportStatusResponse {
	return ExportStatusResponse{
		Success:               true,
		ExportID:              job.ExportID,
		Status:                job.Status,
		PercentComplete:       job.PercentComplete,
		IsCompleted:           job.IsCompleted(),
		IsFailed:              job.IsFailed(),
		IsInProgress:          job.IsInProgress(),
		ResourceLocation:      job.ResourceLocation,
		ResourceFileExtension: job.ResourceFileExtension,
		CreatedDateTime:       job.CreatedAt,
		LastActionDateTime:    job.LastActionAt,
		ExpirationTime:        job.ExpiresAt,
	}
}

type TriggerTaskResponse struct {
	Status string `json:"status"`
}

func DecodePayload(r *http.Request, dest any, allowEmpty bool) error {
	mediaType := r.Header.Get("Content-Type")
	if mediaType != "" {
		parsed, _, err := mime.ParseMediaType(mediaType)
		if err != nil {
			return err
		}
		mediaType = parsed
	}
	switch mediaType {
	case "application/json", "":
		// strict encoding for JSON
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dest); err != nil {
			if !errors.Is(err, io.EOF) || !allowEmpty {
				return err
			}
		}
		// ensure there's no extra data
		if dec.More() {
			return errors.New("extra data in request body")
		}
		return nil
	default:
		return errors.New("unsupported content type")
	}
}
