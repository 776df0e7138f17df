// Package pipeline runs a merge: per-sample loading and normalization,
// pooling, peak clustering, aggregation, significance selection and label
// placement.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChrisMcGann/mzmerge/pkg/aggregate"
	"github.com/ChrisMcGann/mzmerge/pkg/cluster"
	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/ChrisMcGann/mzmerge/pkg/filter"
	"github.com/ChrisMcGann/mzmerge/pkg/label"
	"github.com/ChrisMcGann/mzmerge/pkg/normalize"
	"github.com/ChrisMcGann/mzmerge/pkg/sample"
	"golang.org/x/sync/errgroup"
)

// Reporter receives progress messages of a run.
type Reporter interface {
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Success(format string, args ...interface{})
}

// Discard is a Reporter that drops every message.
type Discard struct{}

func (Discard) Info(string, ...interface{})    {}
func (Discard) Warn(string, ...interface{})    {}
func (Discard) Success(string, ...interface{}) {}

// Source is one input sample table.
type Source interface {
	Name() string
	Load() (*core.RawSampleTable, error)
}

// Options configures a Pipeline
type Options struct {
	Extractor *sample.Extractor // nil selects the default vocabulary
	Normalize normalize.Config
	Tolerance float64
	Threads   int // Files parsed concurrently, at least 1
	Reporter  Reporter
}

// SampleResult is the outcome of loading one source. Err is set when the
// sample was skipped.
type SampleResult struct {
	Name     string
	Metadata core.SampleMetadata
	Result   *normalize.Result
	Err      error
}

// Skipped reports whether the sample was left out of the run.
func (r SampleResult) Skipped() bool {
	return r.Err != nil
}

// Run is the outcome of Merge.
type Run struct {
	Samples []SampleResult // In input order
	Mapping cluster.Mapping
	Matrix  *core.Matrix
}

// Skipped returns the samples that were left out.
func (r *Run) Skipped() []SampleResult {
	var out []SampleResult
	for _, s := range r.Samples {
		if s.Skipped() {
			out = append(out, s)
		}
	}
	return out
}

// Merged returns the number of samples that contributed records.
func (r *Run) Merged() int {
	return len(r.Samples) - len(r.Skipped())
}

// Pipeline runs merges with fixed options
type Pipeline struct {
	opts Options
}

// New creates a pipeline. Zero options fall back to the defaults.
func New(opts Options) *Pipeline {
	if opts.Extractor == nil {
		opts.Extractor = sample.NewExtractor(nil)
	}
	if opts.Normalize.ScanColumn == "" {
		opts.Normalize = normalize.DefaultConfig()
	}
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Reporter == nil {
		opts.Reporter = Discard{}
	}
	return &Pipeline{opts: opts}
}

// LoadSample extracts metadata from the source name, then loads and
// normalizes its table. Sources are independent; failures are returned in
// the result, never as a panic.
func (p *Pipeline) LoadSample(src Source) SampleResult {
	res := SampleResult{Name: src.Name()}

	meta, err := p.opts.Extractor.Parse(src.Name())
	if err != nil {
		res.Err = err
		return res
	}
	res.Metadata = meta

	table, err := src.Load()
	if err != nil {
		res.Err = err
		return res
	}

	normalized, err := p.opts.Normalize.Apply(table, meta)
	if err != nil {
		res.Err = err
		return res
	}
	res.Result = normalized
	return res
}

// Merge loads every source, pools the usable ones in input order, clusters
// the observed peaks and builds the aggregate matrix. A source that fails is
// reported and skipped. Merge fails only when nothing usable remains.
func (p *Pipeline) Merge(ctx context.Context, sources []Source) (*Run, error) {
	if len(sources) == 0 {
		return nil, &core.EmptyInputError{Stage: "merge", Message: "no input files"}
	}
	p.opts.Reporter.Info("Processing %d files...", len(sources))

	results, err := p.LoadAll(ctx, sources)
	if err != nil {
		return nil, err
	}

	acc := aggregate.NewAccumulator()
	for _, r := range results {
		if r.Skipped() {
			p.reportSkip(r)
			continue
		}
		acc.Add(r.Result.Records, r.Result.Peaks)
	}

	peaks := acc.Peaks()
	if len(peaks) == 0 {
		return nil, &core.EmptyInputError{Stage: "peak clustering", Message: "no peaks were read from any input file"}
	}

	mapping, err := cluster.Peaks(peaks, p.opts.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("failed to cluster peaks: %w", err)
	}
	if err := acc.Canonicalize(mapping); err != nil {
		return nil, err
	}
	p.opts.Reporter.Info("Clustered %d raw peaks from %d files into %d canonical peaks",
		len(peaks), acc.Samples(), len(mapping.Canonicals()))

	return &Run{
		Samples: results,
		Mapping: mapping,
		Matrix:  aggregate.Matrix(acc.Records()),
	}, nil
}

// LoadAll loads up to Threads sources at a time. Results keep the input
// order. Only cancellation of ctx is returned as an error.
func (p *Pipeline) LoadAll(ctx context.Context, sources []Source) ([]SampleResult, error) {
	results := make([]SampleResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Threads)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.LoadSample(src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Pipeline) reportSkip(r SampleResult) {
	var serr *core.SchemaError
	if errors.As(r.Err, &serr) && serr.Column == p.opts.Normalize.ScanColumn {
		p.opts.Reporter.Warn("Column '%s' not found in %s. Skipping.", serr.Column, r.Name)
		return
	}
	p.opts.Reporter.Warn("Skipping file %s due to error: %v", r.Name, r.Err)
}

// Select computes the global threshold of m and the peaks above it.
func Select(m *core.Matrix, topPercent float64) (*filter.Selection, error) {
	cfg := &filter.Config{TopPercent: topPercent}
	return cfg.Apply(m)
}

// Annotation holds the label layout of the significant peaks.
type Annotation struct {
	YTop       float64 // Top of the y axis
	Placements []label.Placement
}

// Annotate places one label per significant peak, in ascending peak order,
// above the peak's highest cell value. The placement range is the top of the
// y axis showing every value of m.
func Annotate(m *core.Matrix, sel *filter.Selection) (*Annotation, error) {
	yTop := label.AxisTop(m.Values())

	anchors := make([]label.Anchor, 0, len(sel.Matrix.Rows))
	for _, r := range sel.Matrix.Rows {
		y, ok := r.Max()
		if !ok {
			continue
		}
		anchors = append(anchors, label.Anchor{Peak: r.Peak, Y: y})
	}

	placements, err := label.DefaultConfig(yTop).Place(anchors)
	if err != nil {
		return nil, fmt.Errorf("failed to place labels: %w", err)
	}
	return &Annotation{YTop: yTop, Placements: placements}, nil
}
