package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

// Document is the content of a PDF report.
type Document struct {
	Title       string
	Patient     string
	Institution string
	Scores      scoring.ScoreMap
	Result      scoring.Result
	GeneratedAt time.Time
	// FontFile is an optional UTF-8 TrueType font. Without it the report
	// uses the PDF core fonts, which only cover cp1252: names in other
	// scripts are not representable and come out garbled.
	FontFile string
}

const (
	lineHeight = 8.0
	keyWidth   = 55.0
)

// WritePDF renders doc as an A4 report.
func WritePDF(w io.Writer, doc Document) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	family := "Helvetica"
	// Core fonts are cp1252; the translator keeps Portuguese accents intact.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if doc.FontFile != "" {
		family = "report"
		for _, style := range []string{"", "B", "I"} {
			pdf.AddUTF8Font(family, style, doc.FontFile)
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("load font %s: %w", doc.FontFile, err)
		}
		tr = func(s string) string { return s }
	}

	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("briefmpi", true)
	if !doc.GeneratedAt.IsZero() {
		pdf.SetCreationDate(doc.GeneratedAt)
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 18)
	pdf.CellFormat(0, 12, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(6)

	keyValue := func(key, value string) {
		pdf.SetFont(family, "B", 12)
		pdf.CellFormat(keyWidth, lineHeight, tr(key+":"), "", 0, "L", false, 0, "")
		pdf.SetFont(family, "", 12)
		pdf.CellFormat(0, lineHeight, tr(value), "", 1, "L", false, 0, "")
	}

	if doc.Patient != "" {
		keyValue("Paciente", doc.Patient)
	}
	if doc.Institution != "" {
		keyValue("Instituição", doc.Institution)
	}
	if doc.Patient != "" || doc.Institution != "" {
		pdf.Ln(4)
	}

	for _, d := range scoring.Domains {
		keyValue(string(d), FormatValue(doc.Scores[d]))
	}
	pdf.Ln(4)
	keyValue(ColumnMPI, FormatIndex(doc.Result.MPI))
	keyValue(ColumnRisk, doc.Result.Risk)

	if !doc.GeneratedAt.IsZero() {
		pdf.Ln(8)
		pdf.SetFont(family, "I", 9)
		pdf.CellFormat(0, 6, tr("Gerado em "+doc.GeneratedAt.Format("02/01/2006 15:04")), "", 1, "R", false, 0, "")
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return nil
}
