// Package normalize turns raw sample tables into scan-normalized intensity
// records.
package normalize

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
)

const (
	// DefaultScanColumn is the scan-count column written by the acquisition
	// software.
	DefaultScanColumn = "Number of Scans"
	// DefaultMetadataColumns is the number of leading label columns.
	DefaultMetadataColumns = 4
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Config holds normalization settings
type Config struct {
	ScanColumn      string // Per-row scan count divisor
	MetadataColumns int    // Leading columns that are never peaks
}

// DefaultConfig returns the settings of the standard export layout.
func DefaultConfig() Config {
	return Config{
		ScanColumn:      DefaultScanColumn,
		MetadataColumns: DefaultMetadataColumns,
	}
}

// Result is the normalized content of one table.
type Result struct {
	Records []core.IntensityRecord // One per (peak column, row), column major
	Peaks   []float64              // Raw m/z of every peak column in header order
}

// Apply normalizes a table. Non-numeric cells and zero or missing scan counts
// produce undefined intensities. A header without a numeric m/z or a row
// without a trailing timepoint fails the whole table with *core.ParseError.
func (c Config) Apply(t *core.RawSampleTable, meta core.SampleMetadata) (*Result, error) {
	if err := t.Validate(c.ScanColumn); err != nil {
		return nil, err
	}
	scanIdx := t.ColumnIndex(c.ScanColumn)

	type peakColumn struct {
		index int
		mz    float64
	}
	var columns []peakColumn
	for j := c.MetadataColumns; j < len(t.Header); j++ {
		if j == scanIdx {
			continue
		}
		mz, err := ParsePeakHeader(t.Header[j])
		if err != nil {
			return nil, err
		}
		columns = append(columns, peakColumn{index: j, mz: mz})
	}

	timepoints := make([]int, len(t.Rows))
	scans := make([]core.Intensity, len(t.Rows))
	for i, row := range t.Rows {
		tp, err := ParseTimepoint(row[0])
		if err != nil {
			var perr *core.ParseError
			if errors.As(err, &perr) {
				perr.Row = i + 1
			}
			return nil, err
		}
		timepoints[i] = tp
		scans[i] = ParseNumeric(row[scanIdx])
	}

	res := &Result{
		Records: make([]core.IntensityRecord, 0, len(columns)*len(t.Rows)),
		Peaks:   make([]float64, 0, len(columns)),
	}
	for _, col := range columns {
		for i, row := range t.Rows {
			res.Records = append(res.Records, core.IntensityRecord{
				Peak:          col.mz,
				Timepoint:     timepoints[i],
				Group:         meta.Group,
				BioReplicate:  meta.BioReplicate,
				TechReplicate: meta.TechReplicate,
				Intensity:     Divide(ParseNumeric(row[col.index]), scans[i]),
			})
		}
		res.Peaks = append(res.Peaks, col.mz)
	}

	return res, nil
}

// ParsePeakHeader reads the m/z value from a "<mz>_<suffix>" header.
func ParsePeakHeader(header string) (float64, error) {
	prefix := strings.TrimSpace(strings.SplitN(header, "_", 2)[0])
	mz, err := strconv.ParseFloat(prefix, 64)
	if err != nil {
		return 0, &core.ParseError{Field: "peak column", Value: header, Err: err}
	}
	if math.IsNaN(mz) || math.IsInf(mz, 0) {
		return 0, &core.ParseError{Field: "peak column", Value: header}
	}
	return mz, nil
}

// ParseTimepoint reads the trailing digit run of a row label, e.g. "D14" -> 14.
func ParseTimepoint(label string) (int, error) {
	m := trailingDigits.FindString(strings.TrimSpace(label))
	if m == "" {
		return 0, &core.ParseError{Field: "timepoint", Value: label}
	}
	tp, err := strconv.Atoi(m)
	if err != nil {
		return 0, &core.ParseError{Field: "timepoint", Value: label, Err: err}
	}
	return tp, nil
}

// ParseNumeric coerces a cell to a number; anything unparseable is undefined.
func ParseNumeric(cell string) core.Intensity {
	s := strings.TrimSpace(cell)
	if s == "" {
		return core.None()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.None()
	}
	return core.Some(v)
}

// Divide normalizes a raw value by its scan count. Undefined operands and a
// zero scan count give an undefined result.
func Divide(raw, scans core.Intensity) core.Intensity {
	if !raw.Valid || !scans.Valid || scans.Value == 0 {
		return core.None()
	}
	return core.Some(raw.Value / scans.Value)
}
