package cmd

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/mzmerge/pkg/summary"
	"github.com/ChrisMcGann/mzmerge/pkg/writer/sqlite"
	"github.com/spf13/cobra"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file.db]",
	Short: "Summarize a run stored in a SQLite database",
	Long: `Print the parameters, peak and column counts, threshold, cell value
distribution and per-file status of a run written with merge --db. The latest run is used unless
--run is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("database does not exist: %s", path)
	}

	store, err := sqlite.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	var run *sqlite.Run
	if runID != "" {
		run, err = store.Run(ctx, runID)
	} else {
		run, err = store.LatestRun(ctx)
	}
	if err != nil {
		return err
	}

	m, significant, err := store.LoadMatrix(ctx, run.ID)
	if err != nil {
		return err
	}

	report, err := summary.NewReport(m, significant)
	if err != nil {
		return err
	}
	report.RunID = run.ID
	report.Created = run.CreationDate
	report.Tolerance = run.Tolerance
	report.TopPercent = run.TopPercent
	report.Files = run.FileCount
	report.Skipped = run.SkippedCount
	if run.Threshold.Valid {
		t := run.Threshold.Float64
		report.Threshold = &t
	}

	samples, err := store.Samples(ctx, run.ID)
	if err != nil {
		return err
	}
	for _, s := range samples {
		report.Inputs = append(report.Inputs, summary.Input{
			Name:    s.FileName,
			Group:   s.GroupLabel,
			Records: s.RecordCount,
			Status:  s.Status,
			Message: s.Message,
		})
	}

	report.Write(cmd.OutOrStdout())
	return nil
}
