package cmd

import (
	"fmt"

	"github.com/ChrisMcGann/mzmerge/pkg/config"
	"github.com/ChrisMcGann/mzmerge/pkg/filter"
	"github.com/ChrisMcGann/mzmerge/pkg/pipeline"
	"github.com/ChrisMcGann/mzmerge/pkg/plot"
	"github.com/ChrisMcGann/mzmerge/pkg/reader/table"
	"github.com/ChrisMcGann/mzmerge/pkg/sample"
	"github.com/ChrisMcGann/mzmerge/pkg/writer/matrix"
	"github.com/ChrisMcGann/mzmerge/pkg/writer/sqlite"
	"github.com/ChrisMcGann/mzmerge/pkg/writer/xlsx"
	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge [files...]",
	Short: "Merge sample tables into one peak intensity matrix",
	Long: `Merge per-sample peak tables (CSV or XLSX) into a matrix of canonical peaks
by (group, timepoint), flag the top peaks and draw the annotated figure.

File names carry the sample tags, e.g. Mel202A1.csv is group Mel202,
biological replicate A, technical replicate 1. Files whose name or content
cannot be parsed are skipped with a warning.

Examples:
  # Merge with default settings
  mzmerge merge Mel202A1.csv Mel202A2.csv MP41A1.csv

  # Wider m/z tolerance and top 5% of intensities
  mzmerge merge --tolerance 0.05 --top-percent 5 data/*.csv

  # Also write a workbook and append the run to a database
  mzmerge merge --xlsx merged.xlsx --db runs.db data/*.csv`,
	RunE: runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("please provide at least one CSV file")
	}

	params, err := loadParams(cmd)
	if err != nil {
		return err
	}

	vocab, err := params.Vocabulary()
	if err != nil {
		return err
	}

	rep := newReporter(cmd)
	p := pipeline.New(pipeline.Options{
		Extractor: sample.NewExtractor(vocab),
		Normalize: params.Normalize(),
		Tolerance: params.Tolerance,
		Threads:   params.Threads,
		Reporter:  rep,
	})

	run, err := p.Merge(cmd.Context(), sources(args))
	if err != nil {
		return err
	}

	if err := matrix.WriteFile(params.Output.Merged, run.Matrix, ','); err != nil {
		return fmt.Errorf("failed to write merged CSV: %w", err)
	}
	rep.Success("Saved merged CSV: %s", params.Output.Merged)

	sel, err := pipeline.Select(run.Matrix, params.TopPercent)
	if err != nil {
		return err
	}

	ann, err := pipeline.Annotate(run.Matrix, sel)
	if err != nil {
		return err
	}

	fig := plot.Figure{
		Matrix:     run.Matrix,
		Threshold:  sel.Threshold,
		TopPercent: params.TopPercent,
		Labels:     ann.Placements,
		YTop:       ann.YTop,
	}
	opt := plot.Options{
		Width:  params.Figure.Width,
		Height: params.Figure.Height,
		DPI:    params.Figure.DPI,
		Title:  params.Figure.Title,
	}
	if err := plot.RenderFile(params.Output.Figure, fig, opt); err != nil {
		return fmt.Errorf("failed to save peak figure: %w", err)
	}
	rep.Success("Saved peak figure: %s", params.Output.Figure)

	if err := matrix.WriteFile(params.Output.TopPeaks, sel.Matrix, '\t'); err != nil {
		return fmt.Errorf("failed to write top peaks: %w", err)
	}
	rep.Success("Saved top peaks: %s", params.Output.TopPeaks)

	if params.Output.Workbook != "" {
		if err := xlsx.WriteWorkbook(params.Output.Workbook, run.Matrix, sel.Matrix); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		rep.Success("Saved workbook: %s", params.Output.Workbook)
	}

	if params.Output.Database != "" {
		id, err := saveRun(params, run, sel)
		if err != nil {
			return err
		}
		rep.Success("Saved run %s to %s", id, params.Output.Database)
	}

	rep.Info("Merged %d of %d files into %d peaks (%d above threshold %.2f)",
		run.Merged(), len(run.Samples), len(run.Matrix.Rows), len(sel.Peaks), sel.Threshold)

	return nil
}

func sources(paths []string) []pipeline.Source {
	files := table.Files(paths)
	out := make([]pipeline.Source, len(files))
	for i, f := range files {
		out[i] = f
	}
	return out
}

// saveRun appends the run to the SQLite database and returns its id
func saveRun(params *config.Params, run *pipeline.Run, sel *filter.Selection) (string, error) {
	writer, err := sqlite.NewWriter(params.Output.Database, sqlite.RunInfo{
		Tolerance:  params.Tolerance,
		TopPercent: params.TopPercent,
		FileCount:  len(run.Samples),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create output database: %w", err)
	}
	defer writer.Close()

	for _, s := range run.Samples {
		records := 0
		if s.Result != nil {
			records = len(s.Result.Records)
		}
		info := sqlite.SampleInfo{
			FileName: s.Name,
			Metadata: s.Metadata,
			Records:  records,
			Err:      s.Err,
		}
		if err := writer.WriteSample(info); err != nil {
			return "", err
		}
	}

	if err := writer.WriteMatrix(run.Matrix, sel.Peaks); err != nil {
		return "", err
	}

	threshold := sel.Threshold
	if err := writer.Finalize(&threshold); err != nil {
		return "", fmt.Errorf("failed to finalize database: %w", err)
	}

	return writer.RunID(), nil
}
