package aggregate

import (
	"testing"

	"github.com/ChrisMcGann/mzmerge/pkg/cluster"
	"github.com/ChrisMcGann/mzmerge/pkg/core"
)

func rec(peak float64, group string, tp int, v core.Intensity) core.IntensityRecord {
	return core.IntensityRecord{Peak: peak, Group: group, Timepoint: tp, Intensity: v}
}

func TestMatrixSkipsUndefined(t *testing.T) {
	records := []core.IntensityRecord{
		rec(100, "Mel202", 1, core.None()),
		rec(100, "Mel202", 1, core.Some(10)),
		rec(100, "Mel202", 1, core.Some(20)),
	}

	m := Matrix(records)
	if len(m.Rows) != 1 || len(m.Columns) != 1 {
		t.Fatalf("expected 1x1 matrix, got %dx%d", len(m.Rows), len(m.Columns))
	}
	cell := m.Rows[0].Cells[0]
	if !cell.Valid || cell.Value != 15.0 {
		t.Errorf("cell = %+v, want 15.0", cell)
	}
}

func TestMatrixLayout(t *testing.T) {
	records := []core.IntensityRecord{
		rec(200.123456, "MP41", 2, core.Some(1.234567)),
		rec(100, "Mel202", 1, core.Some(3)),
		rec(100, "MP41", 1, core.Some(2)),
		rec(300, "Mel202", 5, core.None()),
		rec(100, "92.1", 9, core.None()),
	}

	m := Matrix(records)

	wantCols := []core.Column{{Group: "MP41", Timepoint: 1}, {Group: "MP41", Timepoint: 2}, {Group: "Mel202", Timepoint: 1}}
	if len(m.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", m.Columns, wantCols)
	}
	for i, c := range wantCols {
		if m.Columns[i] != c {
			t.Errorf("column %d = %v, want %v", i, m.Columns[i], c)
		}
	}

	if len(m.Rows) != 2 {
		t.Fatalf("expected peaks without defined cells to be dropped, got %d rows", len(m.Rows))
	}
	if m.Rows[0].Peak != 100 || m.Rows[1].Peak != 200.1235 {
		t.Errorf("row peaks = %v", m.Peaks())
	}
	if c := m.Rows[1].Cells[1]; !c.Valid || c.Value != 1.235 {
		t.Errorf("rounded cell = %+v, want 1.235", c)
	}
	if m.Rows[1].Cells[0].Valid {
		t.Error("missing combination should be undefined, not zero")
	}
}

func TestAccumulator(t *testing.T) {
	acc := NewAccumulator()
	acc.Add([]core.IntensityRecord{
		rec(500.1234, "Mel202", 1, core.Some(5)),
	}, []float64{500.1234})
	acc.Add([]core.IntensityRecord{
		rec(500.1250, "MP41", 1, core.Some(7)),
	}, []float64{500.1250})
	acc.Add(nil, []float64{800.5})

	peaks := acc.Peaks()
	if len(peaks) != 3 || peaks[0] != 500.1234 || peaks[2] != 800.5 {
		t.Fatalf("Peaks() = %v", peaks)
	}
	if acc.Samples() != 3 {
		t.Errorf("Samples() = %d, want 3", acc.Samples())
	}

	mapping, err := cluster.Peaks(peaks, 0.02)
	if err != nil {
		t.Fatalf("cluster.Peaks() error: %v", err)
	}
	if err := acc.Canonicalize(mapping); err != nil {
		t.Fatalf("Canonicalize() error: %v", err)
	}

	m := Matrix(acc.Records())
	if len(m.Rows) != 1 {
		t.Fatalf("expected one merged peak, got %v", m.Peaks())
	}
	if m.Rows[0].Peak != 500.1242 {
		t.Errorf("merged peak = %v, want 500.1242", m.Rows[0].Peak)
	}
	if len(m.Columns) != 2 {
		t.Errorf("expected a column per group, got %v", m.Columns)
	}
}

func TestCanonicalizeUnknownPeak(t *testing.T) {
	acc := NewAccumulator()
	acc.Add([]core.IntensityRecord{rec(1, "Mel202", 1, core.Some(1))}, nil)

	if err := acc.Canonicalize(cluster.Mapping{2: 2}); err == nil {
		t.Error("Canonicalize() should fail for an unmapped peak")
	}
}
