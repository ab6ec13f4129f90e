// Package complexcolor encodes complex samples as colors: phase selects a hue
// on a cyclic colormap and amplitude sets brightness (opaque mode) or
// transparency (blended mode).
//
// Zero amplitude is treated as "no signal" and always encodes to true black
// (opaque) or full transparency (blended), whatever its phase.
package complexcolor

import (
	"image"
	"image/color"
	"math"
	"math/cmplx"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/cleanplots/cleanplots/pkg/colormap"
)

// Mode selects how amplitude is applied to the hue color.
type Mode int

const (
	// Opaque scales RGB by intensity against an implied black backdrop.
	Opaque Mode = iota
	// Blended keeps the hue RGB and carries intensity in alpha, for
	// compositing over an existing background.
	Blended
)

func (m Mode) String() string {
	switch m {
	case Opaque:
		return "opaque"
	case Blended:
		return "blended"
	}
	return "unknown"
}

// Color is an RGBA color with channels in [0, 1].
type Color struct {
	R, G, B, A float64
}

// NRGBA converts c to a non-premultiplied 8-bit color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: to8(c.R),
		G: to8(c.G),
		B: to8(c.B),
		A: to8(c.A),
	}
}

func to8(v float64) uint8 {
	v = math.Max(0, math.Min(1, v))
	return uint8(v*255 + 0.5)
}

// Encoder maps complex samples to colors through a cyclic phase colormap.
// The zero Encoder uses colormap.PhaseR.
type Encoder struct {
	Phase colormap.CyclicColormap
}

func (e Encoder) phase() colormap.CyclicColormap {
	if e.Phase.Len() == 0 {
		return colormap.PhaseR
	}
	return e.Phase
}

// NewEncoder returns an encoder using the reversed phase colormap.
func NewEncoder() Encoder {
	return Encoder{Phase: colormap.PhaseR}
}

// HueParam maps an angle in radians to the colormap position (θ+π)/2π.
func HueParam(theta float64) float64 {
	return (theta + math.Pi) / (2 * math.Pi)
}

// Hue encodes a colormap position t at the given intensity.
func (e Encoder) Hue(t, intensity float64, mode Mode) Color {
	if intensity <= 0 {
		return zeroColor(mode)
	}
	hue := e.phase().Eval(t).Clamped()
	if mode == Blended {
		return Color{R: hue.R, G: hue.G, B: hue.B, A: intensity}
	}
	return Color{R: hue.R * intensity, G: hue.G * intensity, B: hue.B * intensity, A: 1}
}

// Sample encodes a single value against a reference amplitude and floor.
func (e Encoder) Sample(z complex128, reference, floor float64, mode Mode) Color {
	return e.Polar(cmplx.Abs(z), cmplx.Phase(z), reference, floor, mode)
}

// Polar encodes a value given as magnitude and phase. The phase may lie
// outside [-π, π]; it is interpreted modulo 2π.
func (e Encoder) Polar(mag, phase, reference, floor float64, mode Mode) Color {
	return e.Hue(HueParam(phase), Intensity(mag, reference, floor), mode)
}

// Encode maps every sample of f to a color. The result is row-major with the
// shape of f.
func (e Encoder) Encode(f Field, w Window, mode Mode) ([]Color, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}

	ref := w.ReferenceMax
	if ref == 0 {
		ref = f.MaxAbs()
	}

	out := make([]Color, len(f.Data))
	for i, z := range f.Data {
		out[i] = e.Sample(z, ref, w.MinVisible, mode)
	}
	return out, nil
}

// EncodeImage is Encode rendered into an image with one pixel per sample.
// Row r of the field becomes row r of the image.
func (e Encoder) EncodeImage(f Field, w Window, mode Mode) (*image.NRGBA, error) {
	colors, err := e.Encode(f, w, mode)
	if err != nil {
		return nil, err
	}
	img := image.NewNRGBA(image.Rect(0, 0, f.Cols, f.Rows))
	for i, c := range colors {
		img.SetNRGBA(i%f.Cols, i/f.Cols, c.NRGBA())
	}
	return img, nil
}

// DecodePhase recovers the angle in [-π, π) of a full-intensity color
// produced by this encoder.
func (e Encoder) DecodePhase(c Color) float64 {
	t := e.phase().Invert(colorful.Color{R: c.R, G: c.G, B: c.B})
	return t*2*math.Pi - math.Pi
}

func zeroColor(mode Mode) Color {
	if mode == Blended {
		return Color{}
	}
	return Color{A: 1}
}
