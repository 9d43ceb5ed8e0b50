package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/BriefMPI/internal/config"
	"github.com/MikeSquared-Agency/BriefMPI/internal/report"
	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
)

type assessFlags struct {
	file string
	pdf  string
	csv  string
}

func newAssessCmd(configPath *string) *cobra.Command {
	f := &assessFlags{}

	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Score one assessment from a YAML or JSON answers file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return exitError(exitIO, "failed to load config: %v", err)
			}
			return runAssess(cmd.OutOrStdout(), cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.file, "file", "", "Answers file (.yaml, .yml or .json)")
	flags.StringVar(&f.pdf, "pdf", "", "Write a PDF report")
	flags.StringVar(&f.csv, "csv", "", "Write a CSV report")
	flags.Lookup("pdf").NoOptDefVal = "mpi_report.pdf"
	flags.Lookup("csv").NoOptDefVal = "mpi_report.csv"
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// loadAssessment reads an answers file. A read failure is an I/O error; a
// file that does not decode into an assessment is invalid input.
func loadAssessment(path string) (scoring.Assessment, error) {
	var a scoring.Assessment
	data, err := os.ReadFile(path)
	if err != nil {
		return a, exitError(exitIO, "failed to load answers: %v", err)
	}
	// YAML is a superset of JSON, so one decoder serves both.
	if err := yaml.Unmarshal(data, &a); err != nil {
		return a, exitError(exitInvalid, "invalid answers file %s: %v", filepath.Base(path), err)
	}
	return a, nil
}

func runAssess(out io.Writer, cfg *config.Config, f *assessFlags) error {
	a, err := loadAssessment(f.file)
	if err != nil {
		return err
	}

	scores, err := scoring.EncodeAssessment(a)
	if err != nil {
		return invalidInput(err)
	}
	res, err := scoring.Aggregate(scores)
	if err != nil {
		return invalidInput(err)
	}

	printResult(out, scores, res)

	if f.csv != "" {
		err := writeFile(f.csv, func(w io.Writer) error { return report.WriteCSV(w, scores, res) })
		if err != nil {
			return exitError(exitIO, "failed to write CSV: %v", err)
		}
		fmt.Fprintf(out, "CSV written to %s\n", f.csv)
	}
	if f.pdf != "" {
		doc := report.Document{
			Title:       cfg.Report.Title,
			Patient:     a.Patient,
			Institution: a.Institution,
			Scores:      scores,
			Result:      res,
			GeneratedAt: time.Now(),
			FontFile:    cfg.Report.FontFile,
		}
		if err := writeFile(f.pdf, func(w io.Writer) error { return report.WritePDF(w, doc) }); err != nil {
			return exitError(exitIO, "failed to write PDF: %v", err)
		}
		fmt.Fprintf(out, "PDF written to %s\n", f.pdf)
	}
	return nil
}

func printResult(out io.Writer, scores scoring.ScoreMap, res scoring.Result) {
	for _, d := range scoring.Domains {
		fmt.Fprintf(out, "%-13s %s\n", d, report.FormatValue(scores[d]))
	}
	fmt.Fprintf(out, "%-13s %s\n", "MPI", report.FormatIndex(res.MPI))
	fmt.Fprintf(out, "%-13s %s\n", "Risk", res.Risk)
}

// invalidInput lists every validation issue on its own line.
func invalidInput(err error) error {
	if !errors.Is(err, scoring.ErrValidation) {
		return err
	}
	issues := scoring.IssuesOf(err)
	lines := make([]string, 0, len(issues)+1)
	lines = append(lines, "invalid input:")
	for _, iss := range issues {
		lines = append(lines, "  "+iss.String())
	}
	return exitError(exitInvalid, "%s", strings.Join(lines, "\n"))
}

// writeFile writes to path through fn, removing the file if fn fails.
func writeFile(path string, fn func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}
