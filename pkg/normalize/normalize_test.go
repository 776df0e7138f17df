package normalize

import (
	"errors"
	"math"
	"testing"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
)

func newTable(rows ...[]string) *core.RawSampleTable {
	return &core.RawSampleTable{
		SampleID: "Mel202A1.csv",
		Header:   []string{"Sample", "Date", "Time", "Mode", "500.1234_x", "Number of Scans", "600.5_x"},
		Rows:     rows,
	}
}

var meta = core.SampleMetadata{Group: "Mel202", BioReplicate: "A", TechReplicate: "1"}

func TestApply(t *testing.T) {
	tbl := newTable(
		[]string{"Mel202A1_D1", "", "", "", "50", "10", "abc"},
		[]string{"Mel202A1_D2", "", "", "", "8", "0", "4"},
		[]string{"Mel202A1_D3", "", "", "", "6", "n/a", "2"},
	)

	res, err := DefaultConfig().Apply(tbl, meta)
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}

	if len(res.Peaks) != 2 || res.Peaks[0] != 500.1234 || res.Peaks[1] != 600.5 {
		t.Fatalf("Peaks = %v", res.Peaks)
	}
	if len(res.Records) != 6 {
		t.Fatalf("expected 6 records, got %d", len(res.Records))
	}

	tests := []struct {
		name      string
		record    core.IntensityRecord
		wantPeak  float64
		wantTP    int
		wantValid bool
		wantValue float64
	}{
		{"50 over 10 scans", res.Records[0], 500.1234, 1, true, 5.0},
		{"zero scans", res.Records[1], 500.1234, 2, false, 0},
		{"non-numeric scans", res.Records[2], 500.1234, 3, false, 0},
		{"non-numeric intensity", res.Records[3], 600.5, 1, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.record
			if r.Peak != tt.wantPeak || r.Timepoint != tt.wantTP {
				t.Errorf("record = %+v, want peak %v timepoint %d", r, tt.wantPeak, tt.wantTP)
			}
			if r.Intensity.Valid != tt.wantValid {
				t.Fatalf("Intensity.Valid = %v, want %v", r.Intensity.Valid, tt.wantValid)
			}
			if tt.wantValid && math.Abs(r.Intensity.Value-tt.wantValue) > 1e-12 {
				t.Errorf("Intensity = %v, want %v", r.Intensity.Value, tt.wantValue)
			}
			if r.Group != "Mel202" || r.BioReplicate != "A" || r.TechReplicate != "1" {
				t.Errorf("metadata not propagated: %+v", r)
			}
		})
	}
}

func TestApplyFailures(t *testing.T) {
	tests := []struct {
		name   string
		table  *core.RawSampleTable
		target interface{}
	}{
		{
			name: "missing scan column",
			table: &core.RawSampleTable{
				Header: []string{"Sample", "a", "b", "c", "500.1_x"},
				Rows:   [][]string{{"D1", "", "", "", "1"}},
			},
			target: new(*core.SchemaError),
		},
		{
			name:   "timepoint without digits",
			table:  newTable([]string{"Mel202A1_Dx", "", "", "", "1", "1", "1"}),
			target: new(*core.ParseError),
		},
		{
			name: "non-numeric peak header",
			table: &core.RawSampleTable{
				Header: []string{"Sample", "a", "b", "c", "Number of Scans", "blank_x"},
				Rows:   [][]string{{"D1", "", "", "", "1", "1"}},
			},
			target: new(*core.ParseError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DefaultConfig().Apply(tt.table, meta)
			if err == nil {
				t.Fatal("Apply() expected error")
			}
			if !errors.As(err, tt.target) {
				t.Errorf("Apply() error = %T %v", err, err)
			}
		})
	}
}

func TestTimepointErrorCarriesRow(t *testing.T) {
	tbl := newTable(
		[]string{"D1", "", "", "", "1", "1", "1"},
		[]string{"Dx", "", "", "", "1", "1", "1"},
	)
	_, err := DefaultConfig().Apply(tbl, meta)

	var perr *core.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *core.ParseError, got %v", err)
	}
	if perr.Row != 2 {
		t.Errorf("Row = %d, want 2", perr.Row)
	}
}

func TestParseTimepoint(t *testing.T) {
	tests := []struct {
		label   string
		want    int
		wantErr bool
	}{
		{"Mel202A1_D14", 14, false},
		{"3", 3, false},
		{" Day 7 ", 7, false},
		{"Day", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTimepoint(tt.label)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTimepoint(%q) error = %v, wantErr %v", tt.label, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimepoint(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

func TestDivide(t *testing.T) {
	if got := Divide(core.Some(50), core.Some(10)); !got.Valid || got.Value != 5.0 {
		t.Errorf("Divide(50, 10) = %+v, want 5.0", got)
	}
	if got := Divide(core.Some(50), core.Some(0)); got.Valid {
		t.Errorf("Divide(50, 0) = %+v, want undefined", got)
	}
	if got := Divide(core.Some(0), core.Some(0)); got.Valid {
		t.Errorf("Divide(0, 0) = %+v, want undefined", got)
	}
	if got := Divide(core.None(), core.Some(3)); got.Valid {
		t.Errorf("Divide(NaN, 3) = %+v, want undefined", got)
	}
}
