package tabular

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

const utf8BOM = "\ufeff"

// ReadCSV reads a comma or semicolon separated table. The delimiter is
// taken from whichever is more frequent in the header line. Empty lines
// between records come back as empty rows so row numbers match the file.
func ReadCSV(r io.Reader) (scoring.Table, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(4096)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}

	cr := csv.NewReader(br)
	if bytes.Count(head, []byte(";")) > bytes.Count(head, []byte(",")) {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		records [][]string
		prevEnd int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return scoring.Table{}, fmt.Errorf("read csv: %w", err)
		}
		start, _ := cr.FieldPos(0)
		if prevEnd > 0 {
			// encoding/csv skips empty lines; put them back.
			for line := prevEnd + 1; line < start; line++ {
				records = append(records, nil)
			}
		}
		last := len(rec) - 1
		lastStart, _ := cr.FieldPos(last)
		prevEnd = lastStart + strings.Count(rec[last], "\n")
		records = append(records, rec)
	}
	return toTable(records)
}

// WriteCSV writes a scored table as comma separated values.
func WriteCSV(w io.Writer, t scoring.Table, res *scoring.TableResult) error {
	header, rows := Scored(t, res)
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	return nil
}

func toTable(records [][]string) (scoring.Table, error) {
	if len(records) == 0 {
		return scoring.Table{}, ErrEmptyTable
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	rows := records[1:]
	// Trailing blank rows carry no data and shift no row numbers.
	for len(rows) > 0 && scoring.IsBlankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	if len(rows) == 0 {
		rows = nil
	}
	return scoring.Table{Header: header, Rows: rows}, nil
}
