package tabular

import (
	"io"

	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

// Read parses a table in the given format.
func Read(format Format, r io.Reader) (scoring.Table, error) {
	if format == FormatXLSX {
		return ReadXLSX(r)
	}
	return ReadCSV(r)
}

// Write serializes a scored table in the given format.
func Write(format Format, w io.Writer, t scoring.Table, res *scoring.TableResult) error {
	if format == FormatXLSX {
		return WriteXLSX(w, t, res)
	}
	return WriteCSV(w, t, res)
}
