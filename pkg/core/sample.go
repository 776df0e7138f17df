// Package core provides the intermediate representation shared by the peak
// merging stages: raw sample tables, per-peak intensity records and the
// aggregate intensity matrix.
package core

import (
	"fmt"
	"math"
	"strconv"
)

// Intensity is a normalized intensity that may be undefined. Undefined values
// come from non-numeric cells, missing scan counts and zero scan counts.
type Intensity struct {
	Value float64
	Valid bool
}

// Some returns a defined intensity. NaN and infinite inputs yield None.
func Some(v float64) Intensity {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Intensity{}
	}
	return Intensity{Value: v, Valid: true}
}

// None returns an undefined intensity.
func None() Intensity {
	return Intensity{}
}

// Float returns the value, or NaN when the intensity is undefined.
func (i Intensity) Float() float64 {
	if !i.Valid {
		return math.NaN()
	}
	return i.Value
}

func (i Intensity) String() string {
	if !i.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(i.Value, 'f', -1, 64)
}

// RawSampleTable is one uploaded sample table, kept as strings until the
// normalizer coerces the cells it needs.
type RawSampleTable struct {
	SampleID string     // Source name, usually the file name
	Header   []string   // Column headers in file order
	Rows     [][]string // Data rows, each at least len(Header) cells long
}

// ColumnIndex returns the index of the named column or -1.
func (t *RawSampleTable) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Validate checks that the table carries the scan-count column and at least
// one label column, and that no row is shorter than the header.
func (t *RawSampleTable) Validate(scanColumn string) error {
	if len(t.Header) == 0 {
		return &SchemaError{Field: "header", Message: "table has no columns"}
	}
	if t.ColumnIndex(scanColumn) < 0 {
		return &SchemaError{Field: scanColumn, Message: "required column not found", Column: scanColumn}
	}
	for i, row := range t.Rows {
		if len(row) < len(t.Header) {
			return &SchemaError{
				Field:   fmt.Sprintf("row %d", i+1),
				Message: fmt.Sprintf("has %d cells, header has %d", len(row), len(t.Header)),
			}
		}
	}
	return nil
}

// SampleMetadata identifies the condition and replicates a sample belongs to.
type SampleMetadata struct {
	Group         string // Condition / cell line, e.g. "Mel202" or "92.1"
	BioReplicate  string // Letters, e.g. "A"
	TechReplicate string // Digits, e.g. "1"
}

func (m SampleMetadata) String() string {
	return fmt.Sprintf("%s/%s%s", m.Group, m.BioReplicate, m.TechReplicate)
}

// IntensityRecord is one normalized cell of a sample table.
type IntensityRecord struct {
	Peak          float64 // Raw m/z from the column header, canonical after clustering
	Timepoint     int
	Group         string
	BioReplicate  string
	TechReplicate string
	Intensity     Intensity
}
