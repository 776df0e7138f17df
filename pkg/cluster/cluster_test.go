package cluster

import (
	"errors"
	"math"
	"testing"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
)

func TestPeaks(t *testing.T) {
	tests := []struct {
		name      string
		peaks     []float64
		tolerance float64
		want      map[float64]float64
	}{
		{
			name:      "two close columns merge",
			peaks:     []float64{500.1250, 500.1234},
			tolerance: 0.02,
			want:      map[float64]float64{500.1234: 500.1242, 500.1250: 500.1242},
		},
		{
			name:      "distant values stay apart",
			peaks:     []float64{100, 200, 300},
			tolerance: 0.02,
			want:      map[float64]float64{100: 100, 200: 200, 300: 300},
		},
		{
			name:      "running mean decides membership",
			peaks:     []float64{1.00, 1.02, 1.04, 1.07},
			tolerance: 0.025,
			// 1.02 joins 1.00 (mean 1.01); 1.04 is 0.03 from 1.01 and opens a new cluster.
			want: map[float64]float64{1.00: 1.01, 1.02: 1.01, 1.04: 1.04, 1.07: 1.07},
		},
		{
			name:      "duplicates collapse",
			peaks:     []float64{10, 10, 10},
			tolerance: 0,
			want:      map[float64]float64{10: 10},
		},
		{
			name:      "zero tolerance",
			peaks:     []float64{10, 10.0001},
			tolerance: 0,
			want:      map[float64]float64{10: 10, 10.0001: 10.0001},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Peaks(tt.peaks, tt.tolerance)
			if err != nil {
				t.Fatalf("Peaks() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Peaks() returned %d entries, want %d: %v", len(got), len(tt.want), got)
			}
			for raw, want := range tt.want {
				c, ok := got.Canonical(raw)
				if !ok {
					t.Errorf("peak %v missing from mapping", raw)
					continue
				}
				if math.Abs(c-want) > 1e-9 {
					t.Errorf("peak %v -> %v, want %v", raw, c, want)
				}
			}
		})
	}
}

func TestPeaksEmpty(t *testing.T) {
	_, err := Peaks(nil, DefaultTolerance)

	var emptyErr *core.EmptyInputError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("Peaks(nil) error = %v, want *core.EmptyInputError", err)
	}
}

func TestPeaksInvalidInput(t *testing.T) {
	if _, err := Peaks([]float64{1}, -0.1); err == nil {
		t.Error("negative tolerance should fail")
	}
	if _, err := Peaks([]float64{1, math.NaN()}, 0.1); err == nil {
		t.Error("NaN peak should fail")
	}
}

var propertyInputs = [][]float64{
	{500.1234, 500.1250, 500.2, 500.21, 501, 650.33, 650.34, 650.36},
	{1, 1.01, 1.02, 1.03, 1.04, 1.05, 1.06},
	{300.5},
	{10, 10.5, 11, 11.5, 12},
}

func TestPeaksCoverage(t *testing.T) {
	for _, in := range propertyInputs {
		m, err := Peaks(in, 0.02)
		if err != nil {
			t.Fatalf("Peaks(%v) error: %v", in, err)
		}
		for _, p := range in {
			if _, ok := m.Canonical(p); !ok {
				t.Errorf("Peaks(%v): %v not mapped", in, p)
			}
		}
		seen := make(map[float64]bool)
		for _, p := range in {
			seen[p] = true
		}
		if len(m) != len(seen) {
			t.Errorf("Peaks(%v): %d keys for %d distinct inputs", in, len(m), len(seen))
		}
	}
}

func TestPeaksIdempotent(t *testing.T) {
	for _, in := range propertyInputs {
		for _, tol := range []float64{0, 0.02, 0.5} {
			first, err := Peaks(in, tol)
			if err != nil {
				t.Fatalf("Peaks() error: %v", err)
			}
			canon := first.Canonicals()
			second, err := Peaks(canon, tol)
			if err != nil {
				t.Fatalf("Peaks() error: %v", err)
			}
			for _, c := range canon {
				if got := second[c]; got != c {
					t.Errorf("tol %v: re-clustering %v gave %v", tol, c, got)
				}
			}
		}
	}
}

func TestPeaksMonotonic(t *testing.T) {
	tolerances := []float64{0, 0.005, 0.01, 0.02, 0.05, 0.1, 0.5, 1, 2}
	for _, in := range propertyInputs {
		prev := math.MaxInt
		for _, tol := range tolerances {
			m, err := Peaks(in, tol)
			if err != nil {
				t.Fatalf("Peaks() error: %v", err)
			}
			n := len(m.Canonicals())
			if n > prev {
				t.Errorf("input %v: tolerance %v produced %d clusters, more than %d", in, tol, n, prev)
			}
			prev = n
		}
	}
}
