package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		p      float64
		want   float64
	}{
		{"median odd", []float64{3, 1, 2}, 50, 2},
		{"median even", []float64{4, 1, 3, 2}, 50, 2.5},
		{"minimum", []float64{5, 9, 7}, 0, 5},
		{"maximum", []float64{5, 9, 7}, 100, 9},
		{"interpolated", []float64{1, 2, 3, 4, 5}, 99, 4.96},
		{"single value", []float64{42}, 37, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Percentile(tt.values, tt.p)
			if err != nil {
				t.Fatalf("Percentile() error: %v", err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Percentile() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPercentileDeterministic(t *testing.T) {
	pool := []float64{0.5, 12, 3.25, 7, 7, 100, 42.1}
	first, err := Percentile(pool, 99)
	if err != nil {
		t.Fatalf("Percentile() error: %v", err)
	}
	for i := 0; i < 10; i++ {
		got, _ := Percentile(pool, 99)
		if got != first {
			t.Fatalf("run %d: threshold %v differs from %v", i, got, first)
		}
	}
	if pool[0] != 0.5 || pool[1] != 12 {
		t.Error("Percentile() must not reorder its input")
	}
}

func TestPercentileEmpty(t *testing.T) {
	_, err := Percentile(nil, 50)

	var emptyErr *core.EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Errorf("Percentile(nil) error = %v, want *core.EmptyInputError", err)
	}
}

func testMatrix() *core.Matrix {
	return &core.Matrix{
		Columns: []core.Column{{Group: "MP41", Timepoint: 1}, {Group: "Mel202", Timepoint: 1}},
		Rows: []core.Row{
			{Peak: 100, Cells: []core.Intensity{core.Some(1), core.Some(2)}},
			{Peak: 200, Cells: []core.Intensity{core.Some(3), core.None()}},
			{Peak: 300, Cells: []core.Intensity{core.None(), core.Some(50)}},
			{Peak: 400, Cells: []core.Intensity{core.Some(4), core.Some(5)}},
		},
	}
}

func TestApply(t *testing.T) {
	cfg := &Config{TopPercent: 25}
	sel, err := cfg.Apply(testMatrix())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	// Pool 1,2,3,4,5,50 -> 75th percentile at rank 3.75 = 4.75.
	if math.Abs(sel.Threshold-4.75) > 1e-9 {
		t.Errorf("Threshold = %v, want 4.75", sel.Threshold)
	}
	if len(sel.Peaks) != 2 || sel.Peaks[0] != 300 || sel.Peaks[1] != 400 {
		t.Errorf("Peaks = %v, want [300 400]", sel.Peaks)
	}
	if len(sel.Matrix.Columns) != 2 {
		t.Errorf("sub-matrix dropped columns: %v", sel.Matrix.Columns)
	}
}

func TestApplyStrictlyExceeds(t *testing.T) {
	m := &core.Matrix{
		Columns: []core.Column{{Group: "Mel202", Timepoint: 1}},
		Rows: []core.Row{
			{Peak: 1, Cells: []core.Intensity{core.Some(7)}},
			{Peak: 2, Cells: []core.Intensity{core.Some(7)}},
		},
	}

	sel, err := (&Config{TopPercent: 1}).Apply(m)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if len(sel.Peaks) != 0 {
		t.Errorf("values equal to the threshold must not be selected, got %v", sel.Peaks)
	}
}

func TestApplyFailures(t *testing.T) {
	empty := &core.Matrix{
		Columns: []core.Column{{Group: "Mel202", Timepoint: 1}},
		Rows:    []core.Row{{Peak: 1, Cells: []core.Intensity{core.None()}}},
	}
	_, err := (&Config{TopPercent: 1}).Apply(empty)
	var emptyErr *core.EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Errorf("Apply(empty) error = %v, want *core.EmptyInputError", err)
	}

	for _, p := range []float64{-1, 101, math.NaN()} {
		if _, err := (&Config{TopPercent: p}).Apply(testMatrix()); err == nil {
			t.Errorf("TopPercent %v should be rejected", p)
		}
	}
}
