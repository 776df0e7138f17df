package core

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Column keys one series of the aggregate matrix.
type Column struct {
	Group     string
	Timepoint int
}

// Label returns the series name used in the figure legend.
func (c Column) Label() string {
	return fmt.Sprintf("%s Day %d", c.Group, c.Timepoint)
}

// Less orders columns by group, then timepoint.
func (c Column) Less(o Column) bool {
	if c.Group != o.Group {
		return c.Group < o.Group
	}
	return c.Timepoint < o.Timepoint
}

// SortColumns sorts columns in place by group, then timepoint.
func SortColumns(cols []Column) {
	sort.Slice(cols, func(i, j int) bool {
		return cols[i].Less(cols[j])
	})
}

// Row is one canonical peak of the matrix. Cells are aligned with
// Matrix.Columns.
type Row struct {
	Peak  float64
	Cells []Intensity
}

// Max returns the largest defined cell value of the row.
func (r Row) Max() (float64, bool) {
	vals := r.Values()
	if len(vals) == 0 {
		return 0, false
	}
	return floats.Max(vals), true
}

// Values returns the defined cell values of the row.
func (r Row) Values() []float64 {
	vals := make([]float64, 0, len(r.Cells))
	for _, c := range r.Cells {
		if c.Valid {
			vals = append(vals, c.Value)
		}
	}
	return vals
}

// Matrix holds mean intensity per canonical peak (rows, ascending) and
// (group, timepoint) series (columns, sorted).
type Matrix struct {
	Columns []Column
	Rows    []Row
}

// Values returns every defined cell value, row by row.
func (m *Matrix) Values() []float64 {
	var vals []float64
	for _, r := range m.Rows {
		vals = append(vals, r.Values()...)
	}
	return vals
}

// Groups returns the distinct groups in column order.
func (m *Matrix) Groups() []string {
	var groups []string
	seen := make(map[string]bool)
	for _, c := range m.Columns {
		if !seen[c.Group] {
			seen[c.Group] = true
			groups = append(groups, c.Group)
		}
	}
	return groups
}

// Series returns the peaks and values of one column, skipping undefined cells.
func (m *Matrix) Series(col int) (xs, ys []float64) {
	for _, r := range m.Rows {
		if col < len(r.Cells) && r.Cells[col].Valid {
			xs = append(xs, r.Peak)
			ys = append(ys, r.Cells[col].Value)
		}
	}
	return xs, ys
}

// Peaks returns the row peaks in order.
func (m *Matrix) Peaks() []float64 {
	peaks := make([]float64, len(m.Rows))
	for i, r := range m.Rows {
		peaks[i] = r.Peak
	}
	return peaks
}

// Filter returns a matrix with the rows for which keep reports true. All
// columns are preserved.
func (m *Matrix) Filter(keep func(Row) bool) *Matrix {
	out := &Matrix{Columns: append([]Column(nil), m.Columns...)}
	for _, r := range m.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}
