package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/MikeSquared-Agency/BriefMPI/internal/config"
	"github.com/MikeSquared-Agency/BriefMPI/internal/events"
	"github.com/MikeSquared-Agency/BriefMPI/internal/metrics"
	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
	"github.com/MikeSquared-Agency/BriefMPI/internal/tabular"
)

type errorResponse struct {
	Error   string          `json:"error"`
	Details []scoring.Issue `json:"details,omitempty"`
}

// requestError is a client error that is neither a validation failure nor an
// oversized body, e.g. malformed JSON.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &requestError{status: http.StatusBadRequest, msg: msg}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// base carries what every handler shares.
type base struct {
	events events.Client
	cfg    *config.Config
	logger *slog.Logger
}

func (b base) fail(w http.ResponseWriter, op string, err error) {
	var (
		reqErr *requestError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooBig):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
	case errors.Is(err, scoring.ErrValidation):
		metrics.ValidationFailures.WithLabelValues(op).Inc()
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Details: scoring.IssuesOf(err)})
	case errors.Is(err, tabular.ErrEmptyTable):
		metrics.ValidationFailures.WithLabelValues(op).Inc()
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, tabular.ErrUnsupportedFormat):
		writeJSON(w, http.StatusUnsupportedMediaType, errorResponse{Error: err.Error()})
	case errors.As(err, &reqErr):
		writeJSON(w, reqErr.status, errorResponse{Error: reqErr.msg})
	default:
		b.logger.Error("request failed", "operation", op, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decode reads a JSON body bounded by the configured upload limit.
func (b base) decode(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, b.cfg.Server.MaxUploadBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return err
		}
		return badRequest("invalid JSON body: " + err.Error())
	}
	return nil
}

func (b base) publish(subject string, payload interface{}) {
	if b.events == nil {
		return
	}
	if err := b.events.Publish(subject, payload); err != nil {
		b.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func attachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
