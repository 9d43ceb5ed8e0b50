// Package metrics holds the Prometheus collectors exposed on the metrics port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

const namespace = "briefmpi"

var (
	Scored = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scored_total",
		Help:      "Score maps aggregated, by source and risk tier.",
	}, []string{"source", "tier"})

	IndexValues = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "index",
		Help:      "Distribution of computed MPI values.",
		Buckets:   []float64{scoring.MildUpperBound, scoring.ModerateUpperBound, 1},
	})

	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Requests or rows rejected by validation, by operation.",
	}, []string{"operation"})

	BatchRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "batch_rows_total",
		Help:      "Batch rows processed, by outcome.",
	}, []string{"outcome"})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "exports_total",
		Help:      "Generated report and table downloads, by format.",
	}, []string{"format"})
)

// ObserveResult records one aggregated score map.
func ObserveResult(source string, res scoring.Result) {
	Scored.WithLabelValues(source, res.Tier.String()).Inc()
	IndexValues.Observe(res.MPI)
}

// ObserveTable records the outcome of a scored batch table.
func ObserveTable(res *scoring.TableResult) {
	for _, row := range res.Rows {
		if row.OK() {
			ObserveResult("batch", *row.Result)
		}
	}
	BatchRows.WithLabelValues("scored").Add(float64(res.Scored))
	BatchRows.WithLabelValues("failed").Add(float64(res.Failed))
	if res.Failed > 0 {
		ValidationFailures.WithLabelValues("batch_row").Add(float64(res.Failed))
	}
}
