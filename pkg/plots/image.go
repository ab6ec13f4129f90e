package plots

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/floats"

	"github.com/cleanplots/cleanplots/pkg/colormap"
	"github.com/cleanplots/cleanplots/pkg/complexcolor"
	"github.com/cleanplots/cleanplots/pkg/figure"
	"github.com/cleanplots/cleanplots/pkg/scalebar"
)

// Scalebar overlay defaults.
const (
	scalebarPad      = 0.8
	scalebarFontSize = 14
)

// AddScalebar overlays a white scalebar in the lower-right corner, sized for
// an image spanning spanPx pixels of pixelSizeUM micrometres each. A zero
// fraction selects scalebar.DefaultFraction.
func AddScalebar(s figure.Surface, spanPx int, pixelSizeUM, fraction float64) (scalebar.Spec, error) {
	if fraction == 0 {
		fraction = scalebar.DefaultFraction
	}
	spec, err := scalebar.Infer(pixelSizeUM, spanPx, fraction)
	if err != nil {
		return scalebar.Spec{}, err
	}
	s.AddSizeBar(figure.SizeBar{
		Length:    spec.LengthPx,
		Thickness: spec.ThicknessPx,
		Label:     spec.Label,
		Anchor:    figure.AnchorLowerRight,
		LabelTop:  true,
		Pad:       scalebarPad,
		Color:     color.White,
		FontSize:  scalebarFontSize,
	})
	return spec, nil
}

// Image is a row-major grid of real values.
type Image struct {
	Rows, Cols int
	Data       []float64
}

// ShowOptions configures ShowImage.
type ShowOptions struct {
	// ContrastMin and ContrastMax bound the colormap. When equal, the data
	// range is used.
	ContrastMin, ContrastMax float64
	Title                    string
	Origin                   figure.Origin
	// Colorbar, when set, receives an amplitude legend for the image.
	Colorbar         figure.Surface
	PixelSizeUM      float64
	ScalebarFraction float64
	// Colormap defaults to colormap.Inferno.
	Colormap colormap.Colormap
}

// ShowImage draws a real-valued image through a sequential colormap with
// ticks and spines removed.
func ShowImage(s figure.Surface, im Image, opts ShowOptions) (*image.NRGBA, error) {
	if im.Rows <= 0 || im.Cols <= 0 || len(im.Data) != im.Rows*im.Cols {
		return nil, fmt.Errorf("%w: %d values for %dx%d image", complexcolor.ErrShapeMismatch, len(im.Data), im.Rows, im.Cols)
	}
	if opts.Origin != figure.OriginUpper && opts.Origin != figure.OriginLower {
		return nil, fmt.Errorf("%w: invalid origin %d", complexcolor.ErrShapeMismatch, opts.Origin)
	}
	cm := opts.Colormap
	if cm == nil {
		cm = colormap.Inferno
	}

	lo, hi := opts.ContrastMin, opts.ContrastMax
	if lo == hi {
		lo, hi = floats.Min(im.Data), floats.Max(im.Data)
	}

	img := image.NewNRGBA(image.Rect(0, 0, im.Cols, im.Rows))
	for i, v := range im.Data {
		t := 0.0
		if hi > lo {
			t = (v - lo) / (hi - lo)
		}
		img.SetNRGBA(i%im.Cols, i/im.Cols, nrgba(cm.At(t)))
	}

	rows, cols := float64(im.Rows), float64(im.Cols)
	s.DrawRaster(img, figure.Extent{XMin: -0.5, XMax: cols - 0.5, YMin: -0.5, YMax: rows - 0.5})
	for _, sp := range figure.AllSpines {
		s.SetSpineVisible(sp, false)
	}
	s.SetTitle(opts.Title)
	s.SetTicks(figure.XAxis, []float64{}, nil)
	s.SetTicks(figure.YAxis, []float64{}, nil)
	s.SetLimits(figure.XAxis, -0.5, cols-0.5)
	if opts.Origin == figure.OriginUpper {
		s.SetLimits(figure.YAxis, rows-0.5, -0.5)
	} else {
		s.SetLimits(figure.YAxis, -0.5, rows-0.5)
	}

	if opts.Colorbar != nil {
		if err := AmplitudeColorbar(opts.Colorbar, AmplitudeOptions{Max: hi, Colormap: cm}); err != nil {
			return nil, err
		}
	}
	if opts.PixelSizeUM > 0 {
		if _, err := AddScalebar(s, im.Rows, opts.PixelSizeUM, opts.ScalebarFraction); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// LineOptions configures PlotLine.
type LineOptions struct {
	Width float64
	// Color defaults to the first categorical color.
	Color color.Color
}

// PlotLine draws y against x as a polyline and applies DefaultFormat.
func PlotLine(s figure.Surface, x, y []float64, opts LineOptions) ([]figure.Segment, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d x values, %d y values", complexcolor.ErrShapeMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return nil, fmt.Errorf("%w: %d points", complexcolor.ErrShapeMismatch, len(x))
	}
	col := opts.Color
	if col == nil {
		col = colormap.Categorical.AtIndex(0)
	}
	width := opts.Width
	if width <= 0 {
		width = 2
	}

	c := nrgba(col)
	segs := make([]figure.Segment, len(x)-1)
	for i := range segs {
		segs[i] = figure.Segment{X0: x[i], Y0: y[i], X1: x[i+1], Y1: y[i+1], Color: c, Width: width}
	}
	s.DrawSegments(segs)
	xlo, xhi := spanOf(x)
	ylo, yhi := spanOf(y)
	s.SetLimits(figure.XAxis, xlo, xhi)
	s.SetLimits(figure.YAxis, ylo, yhi)
	DefaultFormat(s)
	return segs, nil
}

// spanOf returns the range of v, opened by half a unit either side when v is
// constant.
func spanOf(v []float64) (lo, hi float64) {
	lo, hi = floats.Min(v), floats.Max(v)
	if lo == hi {
		return lo - 0.5, hi + 0.5
	}
	return lo, hi
}
