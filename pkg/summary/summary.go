// Package summary describes a stored merge run
package summary

import (
	"fmt"
	"io"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/montanaflynn/stats"
)

// Distribution holds summary statistics of the defined cell values.
type Distribution struct {
	Count  int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Describe computes the distribution of values
func Describe(values []float64) (Distribution, error) {
	d := Distribution{Count: len(values)}
	if len(values) == 0 {
		return d, &core.EmptyInputError{Stage: "summary", Message: "no cell values"}
	}
	data := stats.Float64Data(values)

	var err error
	if d.Min, err = stats.Min(data); err != nil {
		return d, err
	}
	if d.Max, err = stats.Max(data); err != nil {
		return d, err
	}
	if d.Median, err = stats.Median(data); err != nil {
		return d, err
	}
	if d.Mean, err = stats.Mean(data); err != nil {
		return d, err
	}
	if d.StdDev, err = stats.StandardDeviation(data); err != nil {
		return d, err
	}

	// Quartile needs at least two values
	if len(values) > 1 {
		q, err := stats.Quartile(data)
		if err != nil {
			return d, err
		}
		d.Q1, d.Q3 = q.Q1, q.Q3
	} else {
		d.Q1, d.Q3 = d.Min, d.Max
	}

	return d, nil
}

// Input is one file of a run as stored with it.
type Input struct {
	Name    string
	Group   string
	Records int
	Status  string
	Message string // Skip reason, empty for merged files
}

// Report is the summary of one run
type Report struct {
	RunID        string
	Created      string
	Tolerance    float64
	TopPercent   float64
	Threshold    *float64
	Files        int
	Skipped      int
	Peaks        int
	Columns      int
	Groups       []string
	Significant  []float64
	Distribution Distribution
	Inputs       []Input
}

// NewReport summarizes m. An empty matrix yields a report with a zero
// distribution.
func NewReport(m *core.Matrix, significant []float64) (*Report, error) {
	r := &Report{
		Peaks:       len(m.Rows),
		Columns:     len(m.Columns),
		Groups:      m.Groups(),
		Significant: significant,
	}

	values := m.Values()
	if len(values) == 0 {
		return r, nil
	}
	d, err := Describe(values)
	if err != nil {
		return nil, fmt.Errorf("failed to describe cell values: %w", err)
	}
	r.Distribution = d
	return r, nil
}

// Write prints the report
func (r *Report) Write(w io.Writer) {
	fmt.Fprintf(w, "Run: %s\n", r.RunID)
	if r.Created != "" {
		fmt.Fprintf(w, "Created: %s\n", r.Created)
	}
	fmt.Fprintf(w, "Tolerance: %g\n", r.Tolerance)
	fmt.Fprintf(w, "Files: %d (%d skipped)\n", r.Files, r.Skipped)
	fmt.Fprintf(w, "Peaks: %d\n", r.Peaks)
	fmt.Fprintf(w, "Columns: %d (%d groups)\n", r.Columns, len(r.Groups))
	if r.Threshold != nil {
		fmt.Fprintf(w, "Top %g%% threshold: %.2f\n", r.TopPercent, *r.Threshold)
	}
	fmt.Fprintf(w, "Significant peaks: %d\n", len(r.Significant))

	d := r.Distribution
	if d.Count == 0 {
		fmt.Fprintf(w, "Cell values: none\n")
	} else {
		fmt.Fprintf(w, "Cell values: %d\n", d.Count)
		fmt.Fprintf(w, "  min %.4g  q1 %.4g  median %.4g  q3 %.4g  max %.4g\n", d.Min, d.Q1, d.Median, d.Q3, d.Max)
		fmt.Fprintf(w, "  mean %.4g  sd %.4g\n", d.Mean, d.StdDev)
	}

	if len(r.Inputs) == 0 {
		return
	}
	fmt.Fprintf(w, "Inputs:\n")
	for _, in := range r.Inputs {
		if in.Message != "" {
			fmt.Fprintf(w, "  %s  %s  %s\n", in.Name, in.Status, in.Message)
			continue
		}
		fmt.Fprintf(w, "  %s  %s  %s  %d records\n", in.Name, in.Status, in.Group, in.Records)
	}
}
