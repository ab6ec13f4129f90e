package figure

import "image"

// CommandType identifies a recorded Surface call.
type CommandType uint8

const (
	CmdDrawRaster CommandType = iota
	CmdDrawSegments
	CmdSetTicks
	CmdSetTickFormatter
	CmdSetLimits
	CmdSetLabel
	CmdSetTitle
	CmdSetSpineVisible
	CmdAddSizeBar
)

var commandTypeNames = [...]string{
	CmdDrawRaster:       "DrawRaster",
	CmdDrawSegments:     "DrawSegments",
	CmdSetTicks:         "SetTicks",
	CmdSetTickFormatter: "SetTickFormatter",
	CmdSetLimits:        "SetLimits",
	CmdSetLabel:         "SetLabel",
	CmdSetTitle:         "SetTitle",
	CmdSetSpineVisible:  "SetSpineVisible",
	CmdAddSizeBar:       "AddSizeBar",
}

func (t CommandType) String() string {
	if int(t) < len(commandTypeNames) {
		return commandTypeNames[t]
	}
	return "Unknown"
}

// Command is one recorded call. Only the fields relevant to Type are set.
type Command struct {
	Type CommandType

	Image    image.Image
	Extent   Extent
	Segments []Segment

	Axis      Axis
	Positions []float64
	Labels    []string
	Lo, Hi    float64
	Text      string
	Pad       float64

	Spine   Spine
	Visible bool
	Bar     SizeBar
}

// Recorder is a Surface that records calls instead of drawing. It tracks
// ticks, limits and spine visibility so reads reflect earlier writes.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	Commands []Command

	ticks      [2][]float64
	hasTicks   [2]bool
	formatters [2]TickFormatter
	limits     [2][2]float64
	hasLimits  [2]bool
	spines     [4]bool
}

// NewRecorder returns an empty recorder with every spine visible.
func NewRecorder() *Recorder {
	return &Recorder{spines: [4]bool{true, true, true, true}}
}

// DrawRaster implements Surface.
func (r *Recorder) DrawRaster(img image.Image, extent Extent) {
	r.Commands = append(r.Commands, Command{Type: CmdDrawRaster, Image: img, Extent: extent})
}

// DrawSegments implements Surface.
func (r *Recorder) DrawSegments(segs []Segment) {
	cp := append([]Segment(nil), segs...)
	r.Commands = append(r.Commands, Command{Type: CmdDrawSegments, Segments: cp})
}

// SetTicks implements Surface.
func (r *Recorder) SetTicks(axis Axis, positions []float64, labels []string) {
	r.ticks[axis] = append([]float64(nil), positions...)
	r.hasTicks[axis] = true
	r.Commands = append(r.Commands, Command{
		Type:      CmdSetTicks,
		Axis:      axis,
		Positions: append([]float64(nil), positions...),
		Labels:    append([]string(nil), labels...),
	})
}

// Ticks implements Surface.
func (r *Recorder) Ticks(axis Axis) []float64 {
	if r.hasTicks[axis] {
		return append([]float64(nil), r.ticks[axis]...)
	}
	lo, hi := r.Limits(axis)
	return AutoTicks(lo, hi, 5)
}

// SetTickFormatter implements Surface.
func (r *Recorder) SetTickFormatter(axis Axis, f TickFormatter) {
	r.formatters[axis] = f
	r.Commands = append(r.Commands, Command{Type: CmdSetTickFormatter, Axis: axis})
}

// Formatter returns the formatter last set for axis.
func (r *Recorder) Formatter(axis Axis) TickFormatter {
	return r.formatters[axis]
}

// SetLimits implements Surface.
func (r *Recorder) SetLimits(axis Axis, lo, hi float64) {
	r.limits[axis] = [2]float64{lo, hi}
	r.hasLimits[axis] = true
	r.Commands = append(r.Commands, Command{Type: CmdSetLimits, Axis: axis, Lo: lo, Hi: hi})
}

// Limits implements Surface. Unset limits read as [0, 1].
func (r *Recorder) Limits(axis Axis) (lo, hi float64) {
	if r.hasLimits[axis] {
		return r.limits[axis][0], r.limits[axis][1]
	}
	return 0, 1
}

// SetLabel implements Surface.
func (r *Recorder) SetLabel(axis Axis, text string, pad float64) {
	r.Commands = append(r.Commands, Command{Type: CmdSetLabel, Axis: axis, Text: text, Pad: pad})
}

// SetTitle implements Surface.
func (r *Recorder) SetTitle(text string) {
	r.Commands = append(r.Commands, Command{Type: CmdSetTitle, Text: text})
}

// SetSpineVisible implements Surface.
func (r *Recorder) SetSpineVisible(s Spine, visible bool) {
	if int(s) >= 0 && int(s) < len(r.spines) {
		r.spines[s] = visible
	}
	r.Commands = append(r.Commands, Command{Type: CmdSetSpineVisible, Spine: s, Visible: visible})
}

// SpineVisible reports the current visibility of s.
func (r *Recorder) SpineVisible(s Spine) bool {
	return r.spines[s]
}

// AddSizeBar implements Surface.
func (r *Recorder) AddSizeBar(bar SizeBar) {
	r.Commands = append(r.Commands, Command{Type: CmdAddSizeBar, Bar: bar})
}

// Filter returns the recorded commands of type t, in call order.
func (r *Recorder) Filter(t CommandType) []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// Last returns the most recent command of type t touching axis, if any.
// Axis is ignored for commands that do not carry one.
func (r *Recorder) Last(t CommandType, axis Axis) (Command, bool) {
	for i := len(r.Commands) - 1; i >= 0; i-- {
		c := r.Commands[i]
		if c.Type != t {
			continue
		}
		switch t {
		case CmdSetTicks, CmdSetTickFormatter, CmdSetLimits, CmdSetLabel:
			if c.Axis != axis {
				continue
			}
		}
		return c, true
	}
	return Command{}, false
}

var (
	_ Surface = (*Recorder)(nil)
	_ Surface = (*Canvas)(nil)
)
