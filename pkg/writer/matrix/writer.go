// Package matrix writes the aggregate intensity matrix as delimited text
package matrix

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
)

// Header labels of the three header rows.
const (
	GroupHeader     = "group"
	TimepointHeader = "timepoint"
	PeakHeader      = "peak"
)

// Write writes m with a two-level column header (group row, timepoint row)
// followed by a peak label row, then one line per canonical peak. Undefined
// cells are left empty.
func Write(w io.Writer, m *core.Matrix, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	groups := []string{GroupHeader}
	timepoints := []string{TimepointHeader}
	peakRow := []string{PeakHeader}
	for _, c := range m.Columns {
		groups = append(groups, c.Group)
		timepoints = append(timepoints, strconv.Itoa(c.Timepoint))
		peakRow = append(peakRow, "")
	}

	for _, header := range [][]string{groups, timepoints, peakRow} {
		if err := cw.Write(header); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	record := make([]string, len(m.Columns)+1)
	for _, r := range m.Rows {
		record[0] = FormatPeak(r.Peak)
		for j := range m.Columns {
			record[j+1] = FormatCell(r.Cells[j])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write peak %s: %w", record[0], err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes m to path.
func WriteFile(path string, m *core.Matrix, comma rune) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := Write(f, m, comma); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatPeak formats a canonical peak label.
func FormatPeak(peak float64) string {
	return strconv.FormatFloat(peak, 'f', -1, 64)
}

// FormatCell formats a cell; undefined cells are empty.
func FormatCell(v core.Intensity) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Value, 'f', -1, 64)
}
