package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/BriefMPI/internal/events"
	"github.com/MikeSquared-Agency/BriefMPI/internal/metrics"
	"github.com/MikeSquared-Agency/BriefMPI/internal/report"
	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

const (
	sourceAssessment = "assessment"
	sourceAggregate  = "aggregate"

	reportPDFName = "mpi_report.pdf"
	reportCSVName = "mpi_report.csv"
)

type AssessmentsHandler struct {
	base
	now func() time.Time
}

func NewAssessmentsHandler(b base) *AssessmentsHandler {
	return &AssessmentsHandler{base: b, now: time.Now}
}

type scoreResponse struct {
	ID      uuid.UUID        `json:"id"`
	Domains scoring.ScoreMap `json:"domains"`
	Result  scoring.Result   `json:"result"`
}

// score decodes an assessment, encodes every domain and aggregates.
func (h *AssessmentsHandler) score(w http.ResponseWriter, r *http.Request) (scoring.Assessment, scoring.ScoreMap, scoring.Result, error) {
	var a scoring.Assessment
	if err := h.decode(w, r, &a); err != nil {
		return a, nil, scoring.Result{}, err
	}
	if err := validateStruct(a); err != nil {
		return a, nil, scoring.Result{}, err
	}
	scores, err := scoring.EncodeAssessment(a)
	if err != nil {
		return a, nil, scoring.Result{}, err
	}
	res, err := scoring.Aggregate(scores)
	if err != nil {
		return a, nil, scoring.Result{}, err
	}
	return a, scores, res, nil
}

func (h *AssessmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	_, scores, res, err := h.score(w, r)
	if err != nil {
		h.fail(w, sourceAssessment, err)
		return
	}
	writeJSON(w, http.StatusOK, h.record(sourceAssessment, scores, res))
}

// Aggregate scores an already coded map of domain values.
func (h *AssessmentsHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	var raw map[string]float64
	if err := h.decode(w, r, &raw); err != nil {
		h.fail(w, sourceAggregate, err)
		return
	}
	scores, err := scoring.ParseScoreMap(raw)
	if err != nil {
		h.fail(w, sourceAggregate, err)
		return
	}
	res, err := scoring.Aggregate(scores)
	if err != nil {
		h.fail(w, sourceAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, h.record(sourceAggregate, scores, res))
}

func (h *AssessmentsHandler) Export(w http.ResponseWriter, r *http.Request) {
	params := assessmentExportParams{Format: r.URL.Query().Get("format")}
	if params.Format == "" {
		params.Format = "pdf"
	}
	if err := validateStruct(params); err != nil {
		h.fail(w, "export", err)
		return
	}

	a, scores, res, err := h.score(w, r)
	if err != nil {
		h.fail(w, "export", err)
		return
	}
	h.record(sourceAssessment, scores, res)

	var buf bytes.Buffer
	switch params.Format {
	case "csv":
		if err := report.WriteCSV(&buf, scores, res); err != nil {
			h.fail(w, "export", err)
			return
		}
		attachment(w, "text/csv; charset=utf-8", reportCSVName, buf.Bytes())
	default:
		doc := report.Document{
			Title:       h.cfg.Report.Title,
			Patient:     a.Patient,
			Institution: a.Institution,
			Scores:      scores,
			Result:      res,
			GeneratedAt: h.now(),
			FontFile:    h.cfg.Report.FontFile,
		}
		if err := report.WritePDF(&buf, doc); err != nil {
			h.fail(w, "export", err)
			return
		}
		attachment(w, "application/pdf", reportPDFName, buf.Bytes())
	}
	metrics.Exports.WithLabelValues(params.Format).Inc()
}

// record observes a scored result and publishes it.
func (h *AssessmentsHandler) record(source string, scores scoring.ScoreMap, res scoring.Result) scoreResponse {
	id := uuid.New()
	metrics.ObserveResult(source, res)

	domains := make(map[string]float64, len(scores))
	for d, v := range scores {
		domains[string(d)] = v
	}
	subject := events.SubjectAssessmentScored(id.String())
	if source == sourceAggregate {
		subject = events.SubjectAggregateScored(id.String())
	}
	h.publish(subject, events.AssessmentScoredEvent{
		ID:        id.String(),
		Source:    source,
		Domains:   domains,
		MPI:       res.MPI,
		Tier:      int(res.Tier),
		Risk:      res.Risk,
		Timestamp: h.now().UTC(),
	})

	return scoreResponse{ID: id, Domains: scores, Result: res}
}
