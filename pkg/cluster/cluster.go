// Package cluster merges near-duplicate m/z values into canonical peaks.
package cluster

import (
	"fmt"
	"math"
	"sort"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"gonum.org/v1/gonum/stat"
)

// DefaultTolerance is the absolute m/z tolerance used when none is given.
const DefaultTolerance = 0.02

// Mapping maps every observed raw m/z value to its canonical peak.
type Mapping map[float64]float64

// Canonical returns the canonical value of a raw peak.
func (m Mapping) Canonical(peak float64) (float64, bool) {
	c, ok := m[peak]
	return c, ok
}

// Canonicals returns the distinct canonical values in ascending order.
func (m Mapping) Canonicals() []float64 {
	seen := make(map[float64]bool, len(m))
	var out []float64
	for _, c := range m {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	sort.Float64s(out)
	return out
}

// Peaks merges raw peak values with a single greedy pass in ascending order.
// A value joins the open cluster when it lies within tolerance of the
// cluster's running mean and otherwise opens a new cluster. Values are never
// reassigned once visited, so the partition depends on visiting order at
// tolerance boundaries.
//
// Duplicate inputs are collapsed. An empty input is reported as
// *core.EmptyInputError.
func Peaks(peaks []float64, tolerance float64) (Mapping, error) {
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, fmt.Errorf("tolerance must be non-negative, got %v", tolerance)
	}
	if len(peaks) == 0 {
		return nil, &core.EmptyInputError{Stage: "peak clustering", Message: "no peaks observed"}
	}

	sorted := make([]float64, 0, len(peaks))
	for _, p := range peaks {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("invalid peak value %v", p)
		}
		sorted = append(sorted, p)
	}
	sort.Float64s(sorted)
	sorted = unique(sorted)

	mapping := make(Mapping, len(sorted))
	current := []float64{sorted[0]}
	sum := sorted[0]

	closeCluster := func() {
		mean := stat.Mean(current, nil)
		for _, p := range current {
			mapping[p] = mean
		}
	}

	for _, p := range sorted[1:] {
		if math.Abs(p-sum/float64(len(current))) <= tolerance {
			current = append(current, p)
			sum += p
			continue
		}
		closeCluster()
		current = []float64{p}
		sum = p
	}
	closeCluster()

	return mapping, nil
}

// unique drops repeated values from a sorted slice in place.
func unique(sorted []float64) []float64 {
	out := sorted[:1]
	for _, p := range sorted[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
