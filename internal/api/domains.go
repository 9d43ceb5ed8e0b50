package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

type DomainsHandler struct {
	base
}

func NewDomainsHandler(b base) *DomainsHandler {
	return &DomainsHandler{base: b}
}

func (h *DomainsHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scoring.Catalog())
}

type encodeResponse struct {
	Domain scoring.Domain `json:"domain"`
	Value  float64        `json:"value"`
}

func (h *DomainsHandler) Encode(w http.ResponseWriter, r *http.Request) {
	d, err := scoring.ParseDomain(chi.URLParam(r, "domain"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}

	var answers scoring.Answers
	if err := h.decode(w, r, &answers); err != nil {
		h.fail(w, "encode", err)
		return
	}

	v, err := scoring.EncodeDomain(d, answers)
	if err != nil {
		h.fail(w, "encode", err)
		return
	}
	writeJSON(w, http.StatusOK, encodeResponse{Domain: d, Value: v})
}
