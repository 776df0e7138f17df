// Package label places peak annotations above their data points without
// letting two labels share a vertical slot.
package label

import (
	"errors"
	"fmt"
	"math"
)

// Default placement factors, as fractions of the y-axis range.
const (
	DefaultUnitFactor      = 0.05
	DefaultCollisionFactor = 0.02
	DefaultStepFactor      = 0.03
	DefaultMaxAttempts     = 1000
)

// ErrPlacementExhausted is returned when no free slot was found within
// MaxAttempts.
var ErrPlacementExhausted = errors.New("label placement exhausted")

// Anchor is a significant peak and the highest value plotted at it.
type Anchor struct {
	Peak float64
	Y    float64
}

// Placement is the chosen annotation position for an anchor.
type Placement struct {
	Peak     float64
	AnchorY  float64
	LabelY   float64
	Attempts int // Candidates tried, 1 when the first slot was free
}

// Config holds placement settings
type Config struct {
	Range           float64 // y-axis range the factors apply to
	UnitFactor      float64 // First offset above the anchor
	CollisionFactor float64 // Minimum distance between two labels
	StepFactor      float64 // Offset growth after each collision
	MaxAttempts     int
}

// DefaultConfig returns the standard factors for a y-axis range.
func DefaultConfig(yRange float64) Config {
	return Config{
		Range:           yRange,
		UnitFactor:      DefaultUnitFactor,
		CollisionFactor: DefaultCollisionFactor,
		StepFactor:      DefaultStepFactor,
		MaxAttempts:     DefaultMaxAttempts,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !(c.Range > 0) || math.IsInf(c.Range, 0) {
		return fmt.Errorf("y range must be positive, got %v", c.Range)
	}
	if c.StepFactor <= 0 {
		return fmt.Errorf("step factor must be positive, got %v", c.StepFactor)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	return nil
}

// Place assigns label positions in anchor order. Each anchor starts one unit
// above its value; on collision with an already placed label the offset grows
// by one step and flips side, until a free slot is found.
func (c Config) Place(anchors []Anchor) ([]Placement, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	unit := c.UnitFactor * c.Range
	window := c.CollisionFactor * c.Range
	step := c.StepFactor * c.Range

	placements := make([]Placement, 0, len(anchors))
	used := make([]float64, 0, len(anchors))

	for _, a := range anchors {
		offset := unit
		direction := 1.0
		placed := false

		for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
			candidate := a.Y + direction*offset
			if !collides(candidate, used, window) {
				used = append(used, candidate)
				placements = append(placements, Placement{
					Peak:     a.Peak,
					AnchorY:  a.Y,
					LabelY:   candidate,
					Attempts: attempt,
				})
				placed = true
				break
			}
			offset += step
			direction = -direction
		}

		if !placed {
			return placements, fmt.Errorf("peak %.4f: %w after %d attempts", a.Peak, ErrPlacementExhausted, c.MaxAttempts)
		}
	}

	return placements, nil
}

func collides(y float64, used []float64, window float64) bool {
	for _, u := range used {
		if math.Abs(y-u) < window {
			return true
		}
	}
	return false
}

// AxisTop returns the autoscaled top of a y axis showing values: the maximum
// plus a 5% margin of the data span. It falls back to 1 when nothing positive
// is plotted.
func AxisTop(values []float64) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(hi, -1) {
		return 1
	}

	span := hi - lo
	if span == 0 {
		span = math.Abs(hi)
	}
	top := hi + 0.05*span
	if !(top > 0) {
		return 1
	}
	return top
}
