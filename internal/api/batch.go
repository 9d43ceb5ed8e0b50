package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/BriefMPI/internal/events"
	"github.com/MikeSquared-Agency/BriefMPI/internal/metrics"
	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
	"github.com/MikeSquared-Agency/BriefMPI/internal/tabular"
)

const batchResultsName = "mpi_results"

type BatchHandler struct {
	base
	now func() time.Time
}

func NewBatchHandler(b base) *BatchHandler {
	return &BatchHandler{base: b, now: time.Now}
}

type batchResponse struct {
	ID     uuid.UUID           `json:"id"`
	Rows   []scoring.RowResult `json:"rows"`
	Scored int                 `json:"scored"`
	Failed int                 `json:"failed"`
}

// readTable accepts a multipart upload in field "file", a raw XLSX body, or
// a raw CSV body.
func (h *BatchHandler) readTable(w http.ResponseWriter, r *http.Request) (scoring.Table, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxUploadBytes)

	var (
		table scoring.Table
		err   error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		file, hdr, ferr := r.FormFile("file")
		if ferr != nil {
			var tooBig *http.MaxBytesError
			if errors.As(ferr, &tooBig) {
				return table, ferr
			}
			return table, badRequest(`multipart field "file" is required`)
		}
		defer file.Close()
		format, ferr := tabular.FormatFromName(hdr.Filename)
		if ferr != nil {
			return table, ferr
		}
		table, err = tabular.Read(format, file)
	case tabular.FormatXLSX.ContentType():
		table, err = tabular.ReadXLSX(r.Body)
	default:
		table, err = tabular.ReadCSV(r.Body)
	}
	if err != nil {
		return table, h.tableError(err)
	}
	if err := tabular.CheckRows(table, h.cfg.Batch.MaxRows); err != nil {
		return table, err
	}
	return table, nil
}

// tableError keeps typed errors and turns parse failures into 400s.
func (h *BatchHandler) tableError(err error) error {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig),
		errors.Is(err, tabular.ErrEmptyTable),
		errors.Is(err, tabular.ErrUnsupportedFormat):
		return err
	}
	return badRequest(fmt.Sprintf("unreadable table: %v", err))
}

func (h *BatchHandler) scoreTable(w http.ResponseWriter, r *http.Request) (scoring.Table, *scoring.TableResult, uuid.UUID, error) {
	table, err := h.readTable(w, r)
	if err != nil {
		return table, nil, uuid.Nil, err
	}
	res, err := scoring.ScoreTable(table)
	if err != nil {
		return table, nil, uuid.Nil, err
	}

	id := uuid.New()
	metrics.ObserveTable(res)
	tiers := make(map[string]int)
	for tier, n := range res.TierCounts() {
		tiers[tier.String()] = n
	}
	h.publish(events.SubjectBatchScored(id.String()), events.BatchScoredEvent{
		ID:        id.String(),
		Rows:      len(res.Rows),
		Scored:    res.Scored,
		Failed:    res.Failed,
		Tiers:     tiers,
		Timestamp: h.now().UTC(),
	})
	h.logger.Info("batch scored", "batch_id", id, "rows", len(res.Rows), "failed", res.Failed)
	return table, res, id, nil
}

func (h *BatchHandler) Score(w http.ResponseWriter, r *http.Request) {
	_, res, id, err := h.scoreTable(w, r)
	if err != nil {
		h.fail(w, "batch", err)
		return
	}
	writeJSON(w, http.StatusOK, batchResponse{ID: id, Rows: res.Rows, Scored: res.Scored, Failed: res.Failed})
}

func (h *BatchHandler) Export(w http.ResponseWriter, r *http.Request) {
	params := batchExportParams{Format: r.URL.Query().Get("format")}
	if params.Format == "" {
		params.Format = string(tabular.FormatCSV)
	}
	if err := validateStruct(params); err != nil {
		h.fail(w, "batch_export", err)
		return
	}
	format := tabular.Format(params.Format)

	table, res, _, err := h.scoreTable(w, r)
	if err != nil {
		h.fail(w, "batch_export", err)
		return
	}

	var buf bytes.Buffer
	if err := tabular.Write(format, &buf, table, res); err != nil {
		h.fail(w, "batch_export", err)
		return
	}
	metrics.Exports.WithLabelValues(params.Format).Inc()
	attachment(w, format.ContentType(), batchResultsName+"."+params.Format, buf.Bytes())
}
