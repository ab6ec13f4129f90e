// Package figure defines the drawing surface the plotting helpers draw on,
// together with a raster implementation built on fogleman/gg and a
// recording implementation for tests.
//
// A Surface is owned by its caller. Helpers mutate it during a single call
// and never keep a reference afterwards; callers sharing one surface across
// goroutines must serialize access themselves.
package figure

import (
	"fmt"
	"image"
	"image/color"
)

// Axis identifies the horizontal or vertical axis.
type Axis int

const (
	XAxis Axis = iota
	YAxis
)

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "x"
	case YAxis:
		return "y"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Other returns the perpendicular axis.
func (a Axis) Other() Axis {
	if a == XAxis {
		return YAxis
	}
	return XAxis
}

// Spine identifies one border of the plot area.
type Spine int

const (
	SpineLeft Spine = iota
	SpineRight
	SpineTop
	SpineBottom
)

// AllSpines lists every spine.
var AllSpines = []Spine{SpineLeft, SpineRight, SpineTop, SpineBottom}

var spineNames = [...]string{
	SpineLeft:   "left",
	SpineRight:  "right",
	SpineTop:    "top",
	SpineBottom: "bottom",
}

func (s Spine) String() string {
	if int(s) >= 0 && int(s) < len(spineNames) {
		return spineNames[s]
	}
	return fmt.Sprintf("Spine(%d)", int(s))
}

// ParseSpine converts a spine name ("left", "top", ...) into a Spine.
func ParseSpine(name string) (Spine, error) {
	for i, n := range spineNames {
		if n == name {
			return Spine(i), nil
		}
	}
	return 0, fmt.Errorf("figure: unknown spine %q", name)
}

// Origin selects which visual corner holds raster index (0, 0).
type Origin int

const (
	// OriginUpper places row 0 at the top.
	OriginUpper Origin = iota
	// OriginLower places row 0 at the bottom.
	OriginLower
)

// ParseOrigin accepts "upper" or "lower"; the empty string means upper.
func ParseOrigin(s string) (Origin, error) {
	switch s {
	case "", "upper":
		return OriginUpper, nil
	case "lower":
		return OriginLower, nil
	}
	return 0, fmt.Errorf("figure: unknown origin %q", s)
}

// Extent is the data-space rectangle covered by a raster. Raster row r spans
// y in [YMin + r*h, YMin + (r+1)*h] where h is the row height, so row 0 sits
// at YMin.
type Extent struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Segment is one straight stroke with its own color and width, in data
// coordinates.
type Segment struct {
	X0, Y0 float64
	X1, Y1 float64
	Color  color.NRGBA
	Width  float64
}

// Anchor positions an overlay inside the plot area.
type Anchor int

const (
	AnchorLowerRight Anchor = iota
	AnchorLowerLeft
	AnchorUpperRight
	AnchorUpperLeft
)

// SizeBar is an anchored bar with a text label, sized in data units.
type SizeBar struct {
	Length    float64
	Thickness float64
	Label     string
	Anchor    Anchor
	LabelTop  bool
	// Pad is the gap to the plot border, in multiples of the font size.
	Pad      float64
	Color    color.Color
	FontSize float64
}

// TickFormatter renders a tick position as a label.
type TickFormatter func(v float64) string

// Surface is the set of drawing operations the plotting helpers rely on.
type Surface interface {
	// DrawRaster paints img over extent, on top of what is already drawn.
	DrawRaster(img image.Image, extent Extent)
	// DrawSegments strokes each segment with its own color and width.
	DrawSegments(segs []Segment)

	// SetTicks fixes tick positions. A nil labels slice lets the formatter
	// label them; an empty positions slice hides the ticks.
	SetTicks(axis Axis, positions []float64, labels []string)
	// Ticks returns the fixed tick positions, or automatic ones derived
	// from the limits when none were set.
	Ticks(axis Axis) []float64
	SetTickFormatter(axis Axis, f TickFormatter)

	// SetLimits sets the visible data range. lo may exceed hi to invert
	// the axis.
	SetLimits(axis Axis, lo, hi float64)
	Limits(axis Axis) (lo, hi float64)

	// SetLabel sets an axis label; pad shifts it toward (negative) or away
	// from (positive) the axis, in points.
	SetLabel(axis Axis, text string, pad float64)
	SetTitle(text string)
	SetSpineVisible(s Spine, visible bool)
	AddSizeBar(bar SizeBar)
}
