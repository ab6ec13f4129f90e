package plots

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cleanplots/cleanplots/pkg/figure"
)

// AxisMode selects which axes a formatting helper touches.
type AxisMode int

const (
	BothAxes AxisMode = iota
	XOnly
	YOnly
)

// ParseAxisMode accepts "both", "x" and "y". The empty string is "both".
func ParseAxisMode(s string) (AxisMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "both":
		return BothAxes, nil
	case "x":
		return XOnly, nil
	case "y":
		return YOnly, nil
	}
	return 0, fmt.Errorf("plots: unknown axis mode %q", s)
}

func (m AxisMode) axes() []figure.Axis {
	switch m {
	case XOnly:
		return []figure.Axis{figure.XAxis}
	case YOnly:
		return []figure.Axis{figure.YAxis}
	}
	return []figure.Axis{figure.XAxis, figure.YAxis}
}

// DefaultFormat applies the house style to a line plot: decimal tick labels,
// ticks only at zero and the last automatic tick, no top or right spine and
// both ranges starting at zero.
func DefaultFormat(s figure.Surface) {
	DecimalFormatTicks(s)
	SparseTicks(s, BothAxes)
	ClearSpines(s)
	ZeroLims(s, BothAxes)
}

// ClearSpines hides the top and right spines.
func ClearSpines(s figure.Surface) {
	s.SetSpineVisible(figure.SpineTop, false)
	s.SetSpineVisible(figure.SpineRight, false)
}

// DecimalFormatTicks labels integral ticks without a fractional part and
// everything else with one decimal.
func DecimalFormatTicks(s figure.Surface) {
	s.SetTickFormatter(figure.XAxis, DecimalTick)
	s.SetTickFormatter(figure.YAxis, DecimalTick)
}

// DecimalTick is the tick formatter installed by DecimalFormatTicks.
func DecimalTick(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// SparseTicks keeps two ticks per axis: zero and the last current tick.
func SparseTicks(s figure.Surface, mode AxisMode) {
	for _, axis := range mode.axes() {
		ticks := s.Ticks(axis)
		last := 0.0
		if len(ticks) > 0 {
			last = ticks[len(ticks)-1]
		}
		s.SetTicks(axis, []float64{0, last}, nil)
	}
}

// ZeroLims moves the lower limit of each selected axis to zero. An axis whose
// upper limit is already zero is left alone.
func ZeroLims(s figure.Surface, mode AxisMode) {
	for _, axis := range mode.axes() {
		_, hi := s.Limits(axis)
		if hi == 0 {
			continue
		}
		s.SetLimits(axis, 0, hi)
	}
}
