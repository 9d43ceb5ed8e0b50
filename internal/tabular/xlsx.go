package tabular

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

// ReadXLSX reads the stored cell values of the first worksheet of a
// workbook. Blank rows between data rows are kept as empty rows.
func ReadXLSX(r io.Reader) (scoring.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return scoring.Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return scoring.Table{}, ErrEmptyTable
	}
	// Raw values: a display format such as "0" would show a stored 0.5 as 1.
	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return scoring.Table{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toTable(records)
}

// WriteXLSX writes a scored table to a single-sheet workbook. The MPI column
// is stored as a number.
func WriteXLSX(w io.Writer, t scoring.Table, res *scoring.TableResult) error {
	header, rows := Scored(t, res)
	mpiCol := len(t.Header)

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := setRow(f, sheet, 1, toCells(header, -1)); err != nil {
		return err
	}
	for i, row := range rows {
		if err := setRow(f, sheet, i+2, toCells(row, mpiCol)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, n int, cells []interface{}) error {
	axis, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, axis, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}

func toCells(row []string, numericCol int) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
		if i == numericCol && v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				cells[i] = f
			}
		}
	}
	return cells
}
