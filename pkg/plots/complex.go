// Package plots draws complex-valued images, line profiles and their legends
// onto a figure.Surface, together with the small formatting helpers used to
// give every figure the same look.
package plots

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/cleanplots/cleanplots/pkg/complexcolor"
	"github.com/cleanplots/cleanplots/pkg/figure"
	"github.com/cleanplots/cleanplots/pkg/scalebar"
)

// DefaultProfilePoints is the number of resampling points used for profiles.
const DefaultProfilePoints = 800

// Orientation selects which axis a profile runs along.
type Orientation int

const (
	// Horizontal plots the profile along x with magnitude on y.
	Horizontal Orientation = iota
	// Vertical transposes the plot: profile along y, magnitude on x.
	Vertical
)

func (o Orientation) String() string {
	switch o {
	case Horizontal:
		return "horz"
	case Vertical:
		return "vert"
	}
	return fmt.Sprintf("Orientation(%d)", int(o))
}

// ParseOrientation accepts "horz", "horizontal", "vert" and "vertical". The
// empty string selects Horizontal.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "horz", "horizontal":
		return Horizontal, nil
	case "vert", "vertical":
		return Vertical, nil
	}
	return 0, fmt.Errorf("%w: unknown orientation %q", complexcolor.ErrShapeMismatch, s)
}

func (o Orientation) valid() bool {
	return o == Horizontal || o == Vertical
}

// ImageOptions configures ComplexImage.
type ImageOptions struct {
	Window complexcolor.Window
	Origin figure.Origin
	// Overlay blends the image over the surface's existing content instead
	// of drawing it over an opaque black backdrop.
	Overlay bool
	// PixelSizeUM adds a scalebar when positive.
	PixelSizeUM      float64
	ScalebarFraction float64
	Encoder          complexcolor.Encoder
}

// DefaultImageOptions returns the options used when none are given.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		Window:           complexcolor.DefaultWindow(),
		Origin:           figure.OriginUpper,
		ScalebarFraction: scalebar.DefaultFraction,
		Encoder:          complexcolor.NewEncoder(),
	}
}

// ComplexImage draws f with phase as hue and amplitude as brightness,
// normalized to the field's largest magnitude. Ticks and spines are removed
// and the image fills the plot area. It returns the encoded raster.
func ComplexImage(s figure.Surface, f complexcolor.Field, opts ImageOptions) (*image.NRGBA, error) {
	if opts.Origin != figure.OriginUpper && opts.Origin != figure.OriginLower {
		return nil, fmt.Errorf("%w: invalid origin %d", complexcolor.ErrShapeMismatch, opts.Origin)
	}

	mode := complexcolor.Opaque
	if opts.Overlay {
		mode = complexcolor.Blended
	}
	img, err := opts.Encoder.EncodeImage(f, opts.Window, mode)
	if err != nil {
		return nil, err
	}

	extent := figure.Extent{XMin: 0, XMax: float64(f.Cols), YMin: 0, YMax: float64(f.Rows)}
	if !opts.Overlay {
		s.DrawRaster(blackRaster(f.Cols, f.Rows), extent)
	}
	s.DrawRaster(img, extent)

	s.SetTicks(figure.XAxis, []float64{}, nil)
	s.SetTicks(figure.YAxis, []float64{}, nil)
	s.SetLimits(figure.XAxis, 0, float64(f.Cols))
	if opts.Origin == figure.OriginUpper {
		s.SetLimits(figure.YAxis, float64(f.Rows), 0)
	} else {
		s.SetLimits(figure.YAxis, 0, float64(f.Rows))
	}
	for _, sp := range figure.AllSpines {
		s.SetSpineVisible(sp, false)
	}

	if opts.PixelSizeUM > 0 {
		if _, err := AddScalebar(s, f.Rows, opts.PixelSizeUM, opts.ScalebarFraction); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func blackRaster(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	black := color.NRGBA{A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, black)
		}
	}
	return img
}

// ProfileOptions configures LineProfile.
type ProfileOptions struct {
	Width float64
	// Window.MinVisible is the amplitude floor. A non-zero
	// Window.ReferenceMax replaces the neighbor-pair normalization.
	Window      complexcolor.Window
	Orientation Orientation
	Points      int
	Overlay     bool
	Encoder     complexcolor.Encoder
}

// DefaultProfileOptions returns the options used when none are given.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{
		Width:   2,
		Window:  complexcolor.DefaultWindow(),
		Points:  DefaultProfilePoints,
		Encoder: complexcolor.NewEncoder(),
	}
}

// ProfilePoint is one resampled profile value.
type ProfilePoint struct {
	X     float64
	Mag   float64
	Phase float64 // unwrapped
}

// Value rebuilds the complex sample.
func (p ProfilePoint) Value() complex128 {
	return cmplx.Rect(p.Mag, p.Phase)
}

// LineProfile draws profile as a curve of magnitude whose segments are
// colored by phase and shaded by amplitude. The profile is resampled at
// opts.Points evenly spaced positions over [0, len(profile)].
func LineProfile(s figure.Surface, profile []complex128, opts ProfileOptions) ([]figure.Segment, error) {
	if len(profile) == 0 {
		return nil, fmt.Errorf("%w: empty profile", complexcolor.ErrShapeMismatch)
	}
	if opts.Points < 2 {
		return nil, fmt.Errorf("%w: %d resampling points", complexcolor.ErrShapeMismatch, opts.Points)
	}
	if !opts.Orientation.valid() {
		return nil, fmt.Errorf("%w: invalid orientation %d", complexcolor.ErrShapeMismatch, opts.Orientation)
	}
	if err := opts.Window.Validate(); err != nil {
		return nil, err
	}
	for _, z := range profile {
		if cmplx.IsNaN(z) || cmplx.IsInf(z) {
			return nil, fmt.Errorf("%w: non-finite sample", complexcolor.ErrShapeMismatch)
		}
	}

	n := float64(len(profile))
	xs := floats.Span(make([]float64, opts.Points), 0, n)
	pts := Resample(profile, xs)

	mids := make([]float64, len(pts)-1)
	for i := range mids {
		mids[i] = (pts[i].Mag + pts[i+1].Mag) / 2
	}
	ref := opts.Window.ReferenceMax
	if ref == 0 {
		ref = floats.Max(mids)
	}

	mode := complexcolor.Opaque
	if opts.Overlay {
		mode = complexcolor.Blended
	}
	segs := make([]figure.Segment, len(mids))
	for i, amp := range mids {
		a, b := pts[i], pts[i+1]
		phase := (a.Phase + b.Phase) / 2
		seg := figure.Segment{
			X0: a.X, Y0: a.Mag, X1: b.X, Y1: b.Mag,
			Color: opts.Encoder.Polar(amp, phase, ref, opts.Window.MinVisible, mode).NRGBA(),
			Width: opts.Width,
		}
		if opts.Orientation == Vertical {
			seg.X0, seg.Y0, seg.X1, seg.Y1 = a.Mag, a.X, b.Mag, b.X
		}
		segs[i] = seg
	}
	s.DrawSegments(segs)

	var peak float64
	for _, z := range profile {
		peak = math.Max(peak, cmplx.Abs(z))
	}
	top := 1.1 * peak
	if top == 0 {
		top = 1
	}
	along, across := figure.XAxis, figure.YAxis
	if opts.Orientation == Vertical {
		along, across = figure.YAxis, figure.XAxis
	}
	s.SetLimits(along, 0, n)
	s.SetLimits(across, 0, top)
	s.SetTicks(across, []float64{0, peak}, nil)
	return segs, nil
}

// Resample evaluates profile at positions xs, interpolating magnitude and
// unwrapped phase independently. Sample i sits at position i; positions
// outside [0, len(profile)-1] take the nearest end value.
func Resample(profile []complex128, xs []float64) []ProfilePoint {
	mag := make([]float64, len(profile))
	phase := make([]float64, len(profile))
	for i, z := range profile {
		mag[i] = cmplx.Abs(z)
		phase[i] = cmplx.Phase(z)
	}
	phase = Unwrap(phase)

	out := make([]ProfilePoint, len(xs))
	for i, x := range xs {
		out[i] = ProfilePoint{X: x, Mag: interp(mag, x), Phase: interp(phase, x)}
	}
	return out
}

func interp(ys []float64, x float64) float64 {
	last := len(ys) - 1
	switch {
	case x <= 0 || last == 0:
		return ys[0]
	case x >= float64(last):
		return ys[last]
	}
	lo := int(x)
	frac := x - float64(lo)
	return ys[lo] + frac*(ys[lo+1]-ys[lo])
}

// Unwrap removes jumps larger than π between consecutive phases by adding
// multiples of 2π.
func Unwrap(phase []float64) []float64 {
	out := make([]float64, len(phase))
	if len(phase) == 0 {
		return out
	}
	out[0] = phase[0]
	var correction float64
	for i := 1; i < len(phase); i++ {
		d := phase[i] - phase[i-1]
		dm := math.Mod(d+math.Pi, 2*math.Pi)
		if dm < 0 {
			dm += 2 * math.Pi
		}
		dm -= math.Pi
		if dm == -math.Pi && d > 0 {
			dm = math.Pi
		}
		if math.Abs(d) >= math.Pi {
			correction += dm - d
		}
		out[i] = phase[i] + correction
	}
	return out
}
