// Package colormap provides color schemes for visualization.
package colormap

import (
	"image/color"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Colormap maps normalized values [0, 1] to colors.
type Colormap interface {
	At(t float64) color.Color
	AtIndex(i int) color.Color
	// Eval returns the unquantized color at position t.
	Eval(t float64) colorful.Color
}

// LinearColormap is a linear interpolation colormap.
type LinearColormap struct {
	colors []color.RGBA
}

// At returns the color at position t (0-1).
func (c LinearColormap) At(t float64) color.Color {
	return quantize(c.Eval(t))
}

// AtIndex returns color at index i (wraps around).
func (c LinearColormap) AtIndex(i int) color.Color {
	return c.colors[wrapIndex(i, len(c.colors))]
}

// Eval returns the interpolated color at position t, clamped to the end colors.
func (c LinearColormap) Eval(t float64) colorful.Color {
	if t <= 0 || math.IsNaN(t) {
		return anchor(c.colors[0])
	}
	if t >= 1 {
		return anchor(c.colors[len(c.colors)-1])
	}

	idx := t * float64(len(c.colors)-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= len(c.colors) {
		upper = len(c.colors) - 1
	}

	frac := idx - float64(lower)
	return anchor(c.colors[lower]).BlendRgb(anchor(c.colors[upper]), frac)
}

// CyclicColormap is a colormap whose ends meet: positions t and t+1 map to the
// same color. Anchor i sits at i/len(colors) and the last anchor blends back
// into the first.
type CyclicColormap struct {
	colors []color.RGBA
}

// At returns the color at position t, taken modulo 1.
func (c CyclicColormap) At(t float64) color.Color {
	return quantize(c.Eval(t))
}

// AtIndex returns color at index i (wraps around).
func (c CyclicColormap) AtIndex(i int) color.Color {
	return c.colors[wrapIndex(i, len(c.colors))]
}

// Eval returns the interpolated color at position t, taken modulo 1.
func (c CyclicColormap) Eval(t float64) colorful.Color {
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return anchor(c.colors[0])
	}
	t -= math.Floor(t)

	n := len(c.colors)
	idx := t * float64(n)
	lower := int(idx)
	if lower >= n {
		lower = n - 1
	}
	upper := (lower + 1) % n

	frac := idx - float64(lower)
	return anchor(c.colors[lower]).BlendRgb(anchor(c.colors[upper]), frac)
}

// Len returns the number of anchor colors. The zero CyclicColormap has none
// and cannot be evaluated.
func (c CyclicColormap) Len() int {
	return len(c.colors)
}

// Reversed returns the map traversed in the opposite direction, so that
// Reversed().Eval(t) == Eval(1-t).
func (c CyclicColormap) Reversed() CyclicColormap {
	n := len(c.colors)
	out := make([]color.RGBA, n)
	out[0] = c.colors[0]
	for i := 1; i < n; i++ {
		out[i] = c.colors[n-i]
	}
	return CyclicColormap{colors: out}
}

// invertSamples is the lookup resolution used by Invert.
const invertSamples = 4096

// Invert returns the position t in [0, 1) whose color is closest to col.
// The result is exact up to the 1/invertSamples lookup step.
func (c CyclicColormap) Invert(col colorful.Color) float64 {
	best, bestDist := 0, math.Inf(1)
	for i := 0; i < invertSamples; i++ {
		d := c.Eval(float64(i) / invertSamples).DistanceRgb(col)
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return float64(best) / invertSamples
}

func anchor(c color.RGBA) colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

func quantize(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func wrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Viridis colormap (matplotlib viridis)
var Viridis = LinearColormap{
	colors: []color.RGBA{
		{68, 1, 84, 255},
		{72, 35, 116, 255},
		{64, 67, 135, 255},
		{52, 94, 141, 255},
		{41, 120, 142, 255},
		{32, 144, 140, 255},
		{34, 167, 132, 255},
		{68, 190, 112, 255},
		{121, 209, 81, 255},
		{189, 222, 38, 255},
		{253, 231, 37, 255},
	},
}

// Plasma colormap
var Plasma = LinearColormap{
	colors: []color.RGBA{
		{13, 8, 135, 255},
		{75, 3, 161, 255},
		{125, 3, 168, 255},
		{168, 34, 150, 255},
		{203, 70, 121, 255},
		{229, 107, 93, 255},
		{248, 148, 65, 255},
		{253, 195, 40, 255},
		{240, 249, 33, 255},
	},
}

// Inferno colormap
var Inferno = LinearColormap{
	colors: []color.RGBA{
		{0, 0, 4, 255},
		{40, 11, 84, 255},
		{101, 21, 110, 255},
		{159, 42, 99, 255},
		{212, 72, 66, 255},
		{245, 125, 21, 255},
		{250, 193, 39, 255},
		{252, 255, 164, 255},
	},
}

// Magma colormap
var Magma = LinearColormap{
	colors: []color.RGBA{
		{0, 0, 4, 255},
		{28, 16, 68, 255},
		{79, 18, 123, 255},
		{129, 37, 129, 255},
		{181, 54, 122, 255},
		{229, 80, 100, 255},
		{251, 135, 97, 255},
		{254, 194, 135, 255},
		{252, 253, 191, 255},
	},
}

// Seurat colormap (light grey to red feature plot)
var Seurat = LinearColormap{
	colors: []color.RGBA{
		{211, 211, 211, 255},
		{233, 106, 106, 255},
		{255, 0, 0, 255},
	},
}

// Phase is a perceptually balanced cyclic map (cmocean "phase").
var Phase = CyclicColormap{
	colors: []color.RGBA{
		{168, 120, 13, 255},  // Gold
		{199, 97, 46, 255},   // Orange
		{218, 62, 92, 255},   // Red
		{208, 58, 153, 255},  // Magenta
		{172, 80, 206, 255},  // Purple
		{118, 109, 235, 255}, // Violet-blue
		{52, 136, 222, 255},  // Blue
		{13, 150, 168, 255},  // Teal
		{45, 155, 100, 255},  // Green
		{112, 143, 38, 255},  // Olive
	},
}

// PhaseR is Phase traversed in reverse (cmocean "phase_r").
var PhaseR = Phase.Reversed()

// CategoricalColormap provides distinct colors for categories.
type CategoricalColormap struct {
	colors []color.RGBA
}

// At returns color at position t.
func (c CategoricalColormap) At(t float64) color.Color {
	idx := int(t * float64(len(c.colors)))
	if idx >= len(c.colors) {
		idx = len(c.colors) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return c.colors[idx]
}

// AtIndex returns color at index.
func (c CategoricalColormap) AtIndex(i int) color.Color {
	return c.colors[wrapIndex(i, len(c.colors))]
}

// Eval returns the category color at position t.
func (c CategoricalColormap) Eval(t float64) colorful.Color {
	col, _ := colorful.MakeColor(c.At(t))
	return col
}

// Categorical colormap with 10 distinct colors, used for line plots.
var Categorical = CategoricalColormap{
	colors: []color.RGBA{
		{31, 119, 180, 255},  // Blue
		{255, 127, 14, 255},  // Orange
		{44, 160, 44, 255},   // Green
		{214, 39, 40, 255},   // Red
		{148, 103, 189, 255}, // Purple
		{140, 86, 75, 255},   // Brown
		{227, 119, 194, 255}, // Pink
		{127, 127, 127, 255}, // Gray
		{188, 189, 34, 255},  // Olive
		{23, 190, 207, 255},  // Cyan
	},
}

var registry = map[string]Colormap{
	"viridis":     Viridis,
	"plasma":      Plasma,
	"inferno":     Inferno,
	"magma":       Magma,
	"seurat":      Seurat,
	"phase":       Phase,
	"phase_r":     PhaseR,
	"categorical": Categorical,
}

// Lookup returns the named colormap.
func Lookup(name string) (Colormap, bool) {
	c, ok := registry[name]
	return c, ok
}

// LookupCyclic returns the named colormap if it is cyclic.
func LookupCyclic(name string) (CyclicColormap, bool) {
	c, ok := registry[name].(CyclicColormap)
	return c, ok
}

// Names returns the registered colormap names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
