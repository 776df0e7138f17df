// Package filter selects the peaks whose intensity reaches the top of the
// pooled intensity distribution
package filter

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
)

// DefaultTopPercent is the share of the value pool considered significant.
const DefaultTopPercent = 1.0

// Config holds selection configuration
type Config struct {
	TopPercent float64 // Keep peaks reaching the top P% of all cell values (0-100)
}

// Selection is the outcome of Apply.
type Selection struct {
	Threshold float64      // Value at percentile (100 - TopPercent) of the pool
	Peaks     []float64    // Significant peaks, ascending
	Matrix    *core.Matrix // Input restricted to significant peaks, all columns kept
}

// Validate checks the configured percentage.
func (c *Config) Validate() error {
	if math.IsNaN(c.TopPercent) || c.TopPercent < 0 || c.TopPercent > 100 {
		return fmt.Errorf("top percent must be within [0, 100], got %v", c.TopPercent)
	}
	return nil
}

// Threshold computes the global threshold over every defined cell of m.
func (c *Config) Threshold(m *core.Matrix) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	pool := m.Values()
	if len(pool) == 0 {
		return 0, &core.EmptyInputError{Stage: "significance threshold", Message: "matrix has no defined values"}
	}

	return Percentile(pool, 100-c.TopPercent)
}

// Apply computes the threshold and keeps every peak that strictly exceeds it
// in at least one (group, timepoint) cell.
func (c *Config) Apply(m *core.Matrix) (*Selection, error) {
	threshold, err := c.Threshold(m)
	if err != nil {
		return nil, err
	}

	filtered := m.Filter(func(r core.Row) bool {
		for _, v := range r.Values() {
			if v > threshold {
				return true
			}
		}
		return false
	})

	return &Selection{
		Threshold: threshold,
		Peaks:     filtered.Peaks(),
		Matrix:    filtered,
	}, nil
}

// Percentile returns the p-th percentile (0-100) of values, interpolating
// linearly between the two closest ranks. The input is not modified.
func Percentile(values []float64, p float64) (float64, error) {
	if len(values) == 0 {
		return 0, &core.EmptyInputError{Stage: "percentile", Message: "empty value pool"}
	}
	if math.IsNaN(p) || p < 0 || p > 100 {
		return 0, fmt.Errorf("percentile must be within [0, 100], got %v", p)
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo], nil
	}

	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, nil
}
