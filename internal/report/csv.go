// Package report formats computed Brief-MPI results for download. Nothing
// here recomputes a score; callers pass the values the engine produced.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

// Result column names appended after the domain columns.
const (
	ColumnMPI   = "MPI"
	ColumnRisk  = "risk"
	ColumnError = "error"
)

// Columns is the header of a single-assessment tabular export.
func Columns() []string {
	cols := make([]string, 0, scoring.DomainCount+2)
	for _, d := range scoring.Domains {
		cols = append(cols, string(d))
	}
	return append(cols, ColumnMPI, ColumnRisk)
}

// FormatValue renders a coded domain value as 0, 0.5 or 1.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatIndex renders an MPI with its two decimals.
func FormatIndex(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Row renders one assessment in Columns order.
func Row(scores scoring.ScoreMap, res scoring.Result) []string {
	row := make([]string, 0, scoring.DomainCount+2)
	for _, d := range scoring.Domains {
		row = append(row, FormatValue(scores[d]))
	}
	return append(row, FormatIndex(res.MPI), res.Risk)
}

// WriteCSV writes a header and a single assessment row.
func WriteCSV(w io.Writer, scores scoring.ScoreMap, res scoring.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.Write(Row(scores, res)); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	cw.Flush()
	return cw.Error()
}
