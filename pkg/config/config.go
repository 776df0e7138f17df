// Package config holds the run parameters of a merge and loads them from
// YAML files, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mzmerge/pkg/cluster"
	"github.com/ChrisMcGann/mzmerge/pkg/filter"
	"github.com/ChrisMcGann/mzmerge/pkg/normalize"
	"github.com/ChrisMcGann/mzmerge/pkg/sample"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by ApplyEnv.
const EnvPrefix = "MZMERGE_"

// Default output file names.
const (
	DefaultMergedOutput   = "merged_output.csv"
	DefaultFigureOutput   = "peak_intensities.png"
	DefaultTopPeaksOutput = "top_peaks.txt"
)

// Params is the complete parameter set of a run
type Params struct {
	Tolerance       float64 `yaml:"tolerance"`
	TopPercent      float64 `yaml:"top_percent"`
	ScanColumn      string  `yaml:"scan_column"`
	MetadataColumns int     `yaml:"metadata_columns"`
	Threads         int     `yaml:"threads"`

	Output OutputConfig `yaml:"output"`
	Figure FigureConfig `yaml:"figure"`

	// Groups replaces the built-in group tokens when non-empty.
	Groups []string `yaml:"groups"`
	// Aliases maps a token to the group it is reported as.
	Aliases       map[string]string `yaml:"aliases"`
	VocabularyCSV string            `yaml:"vocabulary_csv"`
}

// OutputConfig names the files a run writes. Empty Workbook or Database
// disables that output.
type OutputConfig struct {
	Merged   string `yaml:"merged"`
	Figure   string `yaml:"figure"`
	TopPeaks string `yaml:"top_peaks"`
	Workbook string `yaml:"workbook"`
	Database string `yaml:"database"`
}

// FigureConfig sizes the rendered figure
type FigureConfig struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	DPI    float64 `yaml:"dpi"`
	Title  string  `yaml:"title"`
}

// ValidationError reports an invalid parameter
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Default returns the built-in parameters
func Default() *Params {
	return &Params{
		Tolerance:       cluster.DefaultTolerance,
		TopPercent:      filter.DefaultTopPercent,
		ScanColumn:      normalize.DefaultScanColumn,
		MetadataColumns: normalize.DefaultMetadataColumns,
		Threads:         1,
		Output: OutputConfig{
			Merged:   DefaultMergedOutput,
			Figure:   DefaultFigureOutput,
			TopPeaks: DefaultTopPeaksOutput,
		},
		Figure: FigureConfig{
			Width:  1600,
			Height: 700,
			DPI:    96,
			Title:  "Peak Intensities Across All Cell Lines and Days",
		},
	}
}

// LoadFile overlays the YAML file at path onto p. Keys absent from the file
// keep their current value.
func (p *Params) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, p); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overlays MZMERGE_* variables read through lookup onto p. A nil
// lookup reads the process environment.
func (p *Params) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(EnvPrefix + key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	floats := map[string]*float64{
		"TOLERANCE":   &p.Tolerance,
		"TOP_PERCENT": &p.TopPercent,
		"FIGURE_DPI":  &p.Figure.DPI,
	}
	for key, dst := range floats {
		if v, ok := get(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return &ValidationError{Field: EnvPrefix + key, Message: fmt.Sprintf("not a number: %q", v)}
			}
			*dst = f
		}
	}

	ints := map[string]*int{
		"METADATA_COLUMNS": &p.MetadataColumns,
		"THREADS":          &p.Threads,
		"FIGURE_WIDTH":     &p.Figure.Width,
		"FIGURE_HEIGHT":    &p.Figure.Height,
	}
	for key, dst := range ints {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return &ValidationError{Field: EnvPrefix + key, Message: fmt.Sprintf("not an integer: %q", v)}
			}
			*dst = n
		}
	}

	strs := map[string]*string{
		"SCAN_COLUMN":      &p.ScanColumn,
		"MERGED_OUTPUT":    &p.Output.Merged,
		"FIGURE_OUTPUT":    &p.Output.Figure,
		"TOP_PEAKS_OUTPUT": &p.Output.TopPeaks,
		"XLSX_OUTPUT":      &p.Output.Workbook,
		"DB_OUTPUT":        &p.Output.Database,
		"FIGURE_TITLE":     &p.Figure.Title,
		"VOCABULARY_CSV":   &p.VocabularyCSV,
	}
	for key, dst := range strs {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	if v, ok := get("GROUPS"); ok {
		p.Groups = splitList(v)
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the parameters
func (p *Params) Validate() error {
	if p.Tolerance < 0 || math.IsNaN(p.Tolerance) {
		return &ValidationError{Field: "tolerance", Message: fmt.Sprintf("must be non-negative, got %g", p.Tolerance)}
	}
	if err := (&filter.Config{TopPercent: p.TopPercent}).Validate(); err != nil {
		return &ValidationError{Field: "top_percent", Message: err.Error()}
	}
	if strings.TrimSpace(p.ScanColumn) == "" {
		return &ValidationError{Field: "scan_column", Message: "must not be empty"}
	}
	if p.MetadataColumns < 1 {
		return &ValidationError{Field: "metadata_columns", Message: fmt.Sprintf("must be at least 1, got %d", p.MetadataColumns)}
	}
	if p.Threads < 1 {
		return &ValidationError{Field: "threads", Message: fmt.Sprintf("must be at least 1, got %d", p.Threads)}
	}
	if p.Output.Merged == "" {
		return &ValidationError{Field: "output.merged", Message: "must not be empty"}
	}
	if p.Output.TopPeaks == "" {
		return &ValidationError{Field: "output.top_peaks", Message: "must not be empty"}
	}
	if p.Output.Figure == "" {
		return &ValidationError{Field: "output.figure", Message: "must not be empty"}
	}
	if p.Figure.Width <= 0 || p.Figure.Height <= 0 {
		return &ValidationError{Field: "figure", Message: fmt.Sprintf("size must be positive, got %dx%d", p.Figure.Width, p.Figure.Height)}
	}
	return nil
}

// Normalize returns the normalizer settings
func (p *Params) Normalize() normalize.Config {
	return normalize.Config{
		ScanColumn:      p.ScanColumn,
		MetadataColumns: p.MetadataColumns,
	}
}

// Vocabulary builds the group vocabulary: Groups (or the built-in tokens when
// empty), then Aliases in token order, then the tokens of VocabularyCSV.
func (p *Params) Vocabulary() (*sample.Vocabulary, error) {
	var v *sample.Vocabulary
	if len(p.Groups) == 0 {
		v = sample.DefaultVocabulary()
	} else {
		v = sample.NewVocabulary()
		for _, g := range p.Groups {
			v.Add(g, "")
		}
	}

	tokens := make([]string, 0, len(p.Aliases))
	for token := range p.Aliases {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	for _, token := range tokens {
		v.Add(token, p.Aliases[token])
	}

	if p.VocabularyCSV != "" {
		f, err := os.Open(p.VocabularyCSV)
		if err != nil {
			return nil, fmt.Errorf("failed to open vocabulary CSV: %w", err)
		}
		defer f.Close()
		if err := v.LoadFromCSV(f); err != nil {
			return nil, fmt.Errorf("failed to load vocabulary CSV %s: %w", p.VocabularyCSV, err)
		}
	}

	return v, nil
}
