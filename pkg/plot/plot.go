// Package plot renders the merged intensity matrix as an annotated scatter
// figure.
package plot

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/mzmerge/pkg/core"
	"github.com/ChrisMcGann/mzmerge/pkg/label"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Format is an output image format.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// FormatFromPath picks the image format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return PNG, nil
	case ".svg":
		return SVG, nil
	default:
		return "", fmt.Errorf("unsupported figure format '%s', use .png or .svg", ext)
	}
}

// Options controls the figure canvas.
type Options struct {
	Width  int
	Height int
	DPI    float64
	Title  string
}

// DefaultOptions returns a wide landscape canvas.
func DefaultOptions() Options {
	return Options{
		Width:  1600,
		Height: 700,
		DPI:    96,
		Title:  "Peak Intensities Across All Cell Lines and Days",
	}
}

// Figure is everything drawn on the canvas.
type Figure struct {
	Matrix     *core.Matrix
	Threshold  float64
	TopPercent float64
	Labels     []label.Placement
	YTop       float64 // y-axis top the labels were placed against
}

// pointStyle returns a style that renders points only (no connecting line)
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    5,
		DotColor:    col,
	}
}

// Build assembles the chart without rendering it.
func Build(fig Figure, opt Options) (*chart.Chart, error) {
	m := fig.Matrix
	if m == nil || len(m.Rows) == 0 {
		return nil, fmt.Errorf("nothing to plot: matrix is empty")
	}

	groupColor := make(map[string]drawing.Color)
	for i, g := range m.Groups() {
		groupColor[g] = chart.GetDefaultColor(i)
	}

	var series []chart.Series
	for j, col := range m.Columns {
		xs, ys := m.Series(j)
		if len(xs) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    col.Label(),
			XValues: xs,
			YValues: ys,
			Style:   pointStyle(groupColor[col.Group]),
		})
	}

	peaks := m.Peaks()
	xMin, xMax := bounds(peaks)
	xPad := 0.02 * (xMax - xMin)
	if xPad == 0 {
		xPad = 1
	}
	xMin, xMax = xMin-xPad, xMax+xPad

	series = append(series, chart.ContinuousSeries{
		Name:    fmt.Sprintf("Top %g%% threshold (%.2f)", fig.TopPercent, fig.Threshold),
		XValues: []float64{xMin, xMax},
		YValues: []float64{fig.Threshold, fig.Threshold},
		Style: chart.Style{
			StrokeColor:     drawing.ColorRed,
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{2, 3},
		},
	})

	yValues := append(m.Values(), fig.Threshold)
	var annotations []chart.Value2
	for _, p := range fig.Labels {
		// Arrow shaft from the point to its label.
		series = append(series, chart.ContinuousSeries{
			XValues: []float64{p.Peak, p.Peak},
			YValues: []float64{p.AnchorY, p.LabelY},
			Style: chart.Style{
				StrokeColor: drawing.ColorBlue,
				StrokeWidth: 1,
			},
		})
		annotations = append(annotations, chart.Value2{
			XValue: p.Peak,
			YValue: p.LabelY,
			Label:  fmt.Sprintf("%.4f", p.Peak),
		})
		yValues = append(yValues, p.LabelY)
	}
	if len(annotations) > 0 {
		series = append(series, chart.AnnotationSeries{
			Annotations: annotations,
			Style: chart.Style{
				FontColor:   drawing.ColorBlue,
				FontSize:    9,
				StrokeColor: drawing.ColorBlue,
			},
		})
	}

	yMin, yMax := bounds(yValues)
	yMax = math.Max(yMax, fig.YTop)
	if yMax == yMin {
		yMax = yMin + 1
	}
	yPad := 0.05 * (yMax - yMin)

	ch := &chart.Chart{
		Title:      opt.Title,
		Width:      opt.Width,
		Height:     opt.Height,
		DPI:        opt.DPI,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:           "m/z (peak)",
			Range:          &chart.ContinuousRange{Min: xMin, Max: xMax},
			ValueFormatter: decimals(2),
		},
		YAxis: chart.YAxis{
			Name:           "Normalized Intensity",
			Range:          &chart.ContinuousRange{Min: yMin - yPad, Max: yMax + yPad},
			ValueFormatter: decimals(2),
		},
		Series: series,
	}

	// Only named series belong in the legend.
	legend := *ch
	legend.Series = nil
	for _, s := range series {
		if s.GetName() != "" {
			legend.Series = append(legend.Series, s)
		}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&legend)}

	return ch, nil
}

// Render draws the figure to w.
func Render(w io.Writer, format Format, fig Figure, opt Options) error {
	ch, err := Build(fig, opt)
	if err != nil {
		return err
	}

	provider := chart.PNG
	if format == SVG {
		provider = chart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render figure: %w", err)
	}
	return nil
}

// RenderFile draws the figure to path, picking the format from its extension.
func RenderFile(path string, fig Figure, opt Options) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create figure file: %w", err)
	}

	if err := Render(f, format, fig, opt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func decimals(n int) chart.ValueFormatter {
	return func(v interface{}) string {
		if f, ok := v.(float64); ok {
			return fmt.Sprintf("%.*f", n, f)
		}
		return fmt.Sprintf("%v", v)
	}
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}
