// Package tabular reads batch tables from CSV or XLSX spreadsheets and
// writes scored tables back in either format.
package tabular

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MikeSquared-Agency/BriefMPI/internal/report"
	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyTable        = errors.New("table has no header row")
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromName derives the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return ParseFormat(ext)
}

// ContentType is the MIME type of a format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// CheckRows rejects tables with more than max data rows.
func CheckRows(t scoring.Table, max int) error {
	if len(t.Rows) > max {
		return &scoring.ValidationError{Issues: []scoring.Issue{{
			Reason: fmt.Sprintf("table has %d rows, limit is %d", len(t.Rows), max),
		}}}
	}
	return nil
}

// Scored lays out a scored table: the input columns followed by MPI, risk
// and error. Short input rows are padded to the header width.
func Scored(t scoring.Table, res *scoring.TableResult) ([]string, [][]string) {
	header := make([]string, 0, len(t.Header)+3)
	header = append(header, t.Header...)
	header = append(header, report.ColumnMPI, report.ColumnRisk, report.ColumnError)

	rows := make([][]string, len(t.Rows))
	for i, in := range t.Rows {
		row := make([]string, len(t.Header), len(header))
		copy(row, in)
		rr := res.Rows[i]
		if rr.OK() {
			row = append(row, report.FormatIndex(rr.Result.MPI), rr.Result.Risk, "")
		} else {
			row = append(row, "", "", describe(rr.Issues))
		}
		rows[i] = row
	}
	return header, rows
}

func describe(issues []scoring.Issue) string {
	msgs := make([]string, len(issues))
	for i, iss := range issues {
		iss.Row = 0
		msgs[i] = iss.String()
	}
	return strings.Join(msgs, "; ")
}
