package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/BriefMPI/internal/config"
	"github.com/MikeSquared-Agency/BriefMPI/internal/scoring"
	"github.com/MikeSquared-Agency/BriefMPI/internal/tabular"
)

type batchFlags struct {
	file string
	out  string
}

func newBatchCmd(configPath *string) *cobra.Command {
	f := &batchFlags{}

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score a spreadsheet of pre-coded domain values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return exitError(exitIO, "failed to load config: %v", err)
			}
			return runBatch(cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.file, "file", "", "Input table (.csv or .xlsx)")
	flags.StringVar(&f.out, "out", "", "Write the scored table (.csv or .xlsx)")
	flags.Lookup("out").NoOptDefVal = "mpi_results.csv"
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runBatch(out, errOut io.Writer, cfg *config.Config, f *batchFlags) error {
	inFormat, err := tabular.FormatFromName(f.file)
	if err != nil {
		return exitError(exitInvalid, "%v", err)
	}
	var outFormat tabular.Format
	if f.out != "" {
		if outFormat, err = tabular.FormatFromName(f.out); err != nil {
			return exitError(exitInvalid, "%v", err)
		}
	}

	table, err := readTable(inFormat, f.file)
	if err != nil {
		return exitError(exitIO, "failed to read %s: %v", f.file, err)
	}
	if err := tabular.CheckRows(table, cfg.Batch.MaxRows); err != nil {
		return invalidInput(err)
	}

	res, err := scoring.ScoreTable(table)
	if err != nil {
		return invalidInput(err)
	}

	for _, row := range res.Rows {
		for _, iss := range row.Issues {
			fmt.Fprintln(errOut, iss.String())
		}
	}
	counts := res.TierCounts()
	fmt.Fprintf(out, "rows: %d scored: %d failed: %d\n", len(res.Rows), res.Scored, res.Failed)
	for _, tier := range []scoring.Tier{scoring.TierMild, scoring.TierModerate, scoring.TierHigh} {
		fmt.Fprintf(out, "%-18s %d\n", tier.Label(), counts[tier])
	}

	if f.out != "" {
		err := writeFile(f.out, func(w io.Writer) error { return tabular.Write(outFormat, w, table, res) })
		if err != nil {
			return exitError(exitIO, "failed to write %s: %v", f.out, err)
		}
		fmt.Fprintf(out, "results written to %s\n", f.out)
	}
	return nil
}

func readTable(format tabular.Format, path string) (scoring.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return scoring.Table{}, err
	}
	defer file.Close()
	return tabular.Read(format, file)
}
