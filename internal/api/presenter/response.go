package presenter

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Ayaan2907/powerBiChat/internal/core"
	"github.com/Ayaan2907/powerBiChat/internal/correlation"
	"github.com/Ayaan2907/powerBiChat/internal/service"
)

type ErrorDetails struct {
	Status     int    `json:"status"`
	StatusText string `json:"statusText"`
	Body       string `json:"body,omitempty"`
}

type ErrorResponse struct {
	Error         string        `json:"error"`
	Message       string        `json:"message,omitempty"`
	Kind          string        `json:"kind,omitempty"`
	Details       *ErrorDetails `json:"details,omitempty"`
	CorrelationID string        `json:"correlation_id"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg string, status int) {
	JSON(w, r, ErrorResponse{
		Error:         msg,
		CorrelationID: correlation.FromContext(r.Context()),
	}, status)
}

// Err renders err with the status derived from its kind. short is the
// human-readable summary, the error text goes into message.
func Err(w http.ResponseWriter, r *http.Request, err error, short string) {
	status := service.StatusFor(err)
	resp := ErrorResponse{
		Error:         short,
		Message:       err.Error(),
		Kind:          core.KindOf(err),
		CorrelationID: correlation.FromContext(r.Context()),
	}

	var upstream *core.UpstreamError
	if errors.As(err, &upstream) {
		resp.Details = &ErrorDetails{
			Status:     upstream.StatusCode,
			StatusText: upstream.Status,
			Body:       upstream.Body,
		}
	}
	JSON(w, r, resp, status)
}
