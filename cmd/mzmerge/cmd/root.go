// Package cmd provides CLI command implementations
package cmd

import (
	"context"

	"github.com/ChrisMcGann/mzmerge/pkg/config"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	envFile    string
	quiet      bool

	// Parameter flags shared by merge and validate
	tolerance       float64
	topPercent      float64
	scanColumn      string
	metadataColumns int
	threads         int
	groups          []string
	vocabularyCSV   string

	// Output flags for merge
	mergedOutput   string
	figureOutput   string
	topPeaksOutput string
	xlsxOutput     string
	dbOutput       string
	figureWidth    int
	figureHeight   int
	figureDPI      float64

	// Flags for summarize
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "mzmerge",
	Short: "mzmerge - Merge and annotate peak intensity tables",
	Long: `mzmerge merges per-sample peak intensity tables exported by the mass
spectrometer into one matrix of canonical peaks by (group, timepoint).

Each run:
- Parses group and replicate tags from the sample file names
- Normalizes peak intensities by the scan count of each row
- Clusters near-identical m/z values into canonical peaks
- Averages intensities per canonical peak, group and timepoint
- Flags the peaks reaching the top percentage of all values
- Writes the merged matrix, the top peaks and an annotated figure

Parameters are read from defaults, a YAML file (--config), MZMERGE_*
environment variables (also from .env) and flags, in increasing priority.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(summarizeCmd)

	defaults := config.Default()

	// Global flags
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "YAML parameter file")
	pf.StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading MZMERGE_* variables")
	pf.BoolVarP(&quiet, "quiet", "q", false, "Only print warnings and errors")

	// Parameters shared by merge and validate
	for _, c := range []*cobra.Command{mergeCmd, validateCmd} {
		f := c.Flags()
		f.StringVar(&scanColumn, "scan-column", defaults.ScanColumn, "Name of the scan count column")
		f.IntVar(&metadataColumns, "metadata-columns", defaults.MetadataColumns, "Leading columns that are not peaks")
		f.StringSliceVar(&groups, "groups", nil, "Group tokens to recognize in file names (replaces the built-in list)")
		f.StringVar(&vocabularyCSV, "vocabulary", "", "Path to group vocabulary CSV (token,display)")
		f.IntVar(&threads, "threads", defaults.Threads, "Number of files parsed concurrently")
	}

	// Merge flags
	mf := mergeCmd.Flags()
	mf.Float64VarP(&tolerance, "tolerance", "t", defaults.Tolerance, "m/z tolerance for merging peaks")
	mf.Float64VarP(&topPercent, "top-percent", "p", defaults.TopPercent, "Percentage of top intensities flagged significant (0-100)")
	mf.StringVarP(&mergedOutput, "out", "o", defaults.Output.Merged, "Merged matrix CSV file")
	mf.StringVar(&figureOutput, "figure", defaults.Output.Figure, "Peak figure file (.png or .svg)")
	mf.StringVar(&topPeaksOutput, "top-peaks", defaults.Output.TopPeaks, "Tab-separated top peaks file")
	mf.StringVar(&xlsxOutput, "xlsx", "", "Optional workbook with merged and top peak sheets")
	mf.StringVar(&dbOutput, "db", "", "Optional SQLite database the run is appended to")
	mf.IntVar(&figureWidth, "width", defaults.Figure.Width, "Figure width in pixels")
	mf.IntVar(&figureHeight, "height", defaults.Figure.Height, "Figure height in pixels")
	mf.Float64Var(&figureDPI, "dpi", defaults.Figure.DPI, "Figure resolution")

	// Summarize flags
	summarizeCmd.Flags().StringVar(&runID, "run", "", "Run id to summarize (latest run if empty)")
}

// loadParams resolves the run parameters: defaults, then the config file,
// then the environment, then flags given on the command line.
func loadParams(cmd *cobra.Command) (*config.Params, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	params := config.Default()
	if configFile != "" {
		if err := params.LoadFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := params.ApplyEnv(nil); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("tolerance") {
		params.Tolerance = tolerance
	}
	if changed("top-percent") {
		params.TopPercent = topPercent
	}
	if changed("scan-column") {
		params.ScanColumn = scanColumn
	}
	if changed("metadata-columns") {
		params.MetadataColumns = metadataColumns
	}
	if changed("threads") {
		params.Threads = threads
	}
	if changed("groups") {
		params.Groups = groups
	}
	if changed("vocabulary") {
		params.VocabularyCSV = vocabularyCSV
	}
	if changed("out") {
		params.Output.Merged = mergedOutput
	}
	if changed("figure") {
		params.Output.Figure = figureOutput
	}
	if changed("top-peaks") {
		params.Output.TopPeaks = topPeaksOutput
	}
	if changed("xlsx") {
		params.Output.Workbook = xlsxOutput
	}
	if changed("db") {
		params.Output.Database = dbOutput
	}
	if changed("width") {
		params.Figure.Width = figureWidth
	}
	if changed("height") {
		params.Figure.Height = figureHeight
	}
	if changed("dpi") {
		params.Figure.DPI = figureDPI
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}
