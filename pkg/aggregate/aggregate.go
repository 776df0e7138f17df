// Package aggregate pools normalized records across samples and pivots them
// into the canonical peak x (group, timepoint) intensity matrix.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/ChrisMcGann/mzmerge/pkg/cluster"
	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"gonum.org/v1/gonum/stat"
)

const (
	// PeakDecimals is the rounding applied to matrix row labels.
	PeakDecimals = 4
	// ValueSigFigs is the rounding applied to matrix cells.
	ValueSigFigs = 4
)

// Accumulator collects records and observed peaks for one run. It has a
// single owner and is not safe for concurrent use.
type Accumulator struct {
	records []core.IntensityRecord
	peaks   map[float64]struct{}
	samples int
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{
		peaks: make(map[float64]struct{}),
	}
}

// Add pools the records and peak columns of one sample. Peaks are registered
// even when the sample has no rows.
func (a *Accumulator) Add(records []core.IntensityRecord, peaks []float64) {
	a.records = append(a.records, records...)
	for _, p := range peaks {
		a.peaks[p] = struct{}{}
	}
	for _, r := range records {
		a.peaks[r.Peak] = struct{}{}
	}
	a.samples++
}

// Peaks returns the observed raw peaks in ascending order.
func (a *Accumulator) Peaks() []float64 {
	out := make([]float64, 0, len(a.peaks))
	for p := range a.peaks {
		out = append(out, p)
	}
	sort.Float64s(out)
	return out
}

// Records returns the pooled records.
func (a *Accumulator) Records() []core.IntensityRecord {
	return a.records
}

// Samples returns the number of samples added.
func (a *Accumulator) Samples() int {
	return a.samples
}

// Canonicalize replaces every record's raw peak with its canonical value.
func (a *Accumulator) Canonicalize(mapping cluster.Mapping) error {
	for i := range a.records {
		c, ok := mapping.Canonical(a.records[i].Peak)
		if !ok {
			return fmt.Errorf("peak %v has no canonical value", a.records[i].Peak)
		}
		a.records[i].Peak = c
	}
	return nil
}

type cellKey struct {
	peak float64
	col  core.Column
}

// Matrix groups canonicalized records by (peak, group, timepoint) and takes
// the mean of the defined intensities. Cells without any defined intensity
// are undefined; peaks and columns without any defined cell are dropped.
// Row labels are rounded to PeakDecimals and cells to ValueSigFigs.
func Matrix(records []core.IntensityRecord) *core.Matrix {
	values := make(map[cellKey][]float64)
	for _, r := range records {
		if !r.Intensity.Valid {
			continue
		}
		k := cellKey{peak: r.Peak, col: core.Column{Group: r.Group, Timepoint: r.Timepoint}}
		values[k] = append(values[k], r.Intensity.Value)
	}

	peakSet := make(map[float64]bool)
	colSet := make(map[core.Column]bool)
	for k := range values {
		peakSet[k.peak] = true
		colSet[k.col] = true
	}

	peaks := make([]float64, 0, len(peakSet))
	for p := range peakSet {
		peaks = append(peaks, p)
	}
	sort.Float64s(peaks)

	cols := make([]core.Column, 0, len(colSet))
	for c := range colSet {
		cols = append(cols, c)
	}
	core.SortColumns(cols)

	m := &core.Matrix{Columns: cols, Rows: make([]core.Row, 0, len(peaks))}
	for _, p := range peaks {
		row := core.Row{
			Peak:  core.RoundFloat(p, PeakDecimals),
			Cells: make([]core.Intensity, len(cols)),
		}
		for j, c := range cols {
			vals, ok := values[cellKey{peak: p, col: c}]
			if !ok {
				row.Cells[j] = core.None()
				continue
			}
			row.Cells[j] = core.Some(core.RoundSig(stat.Mean(vals, nil), ValueSigFigs))
		}
		m.Rows = append(m.Rows, row)
	}

	return m
}
