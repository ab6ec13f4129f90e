package plots

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/cleanplots/cleanplots/pkg/colormap"
	"github.com/cleanplots/cleanplots/pkg/complexcolor"
	"github.com/cleanplots/cleanplots/pkg/figure"
)

const (
	amplitudeBarSize = 100
	phaseBarSize     = 200
)

// AmplitudeOptions configures AmplitudeColorbar.
type AmplitudeOptions struct {
	// Max labels the top of the bar. When Values is non-empty its maximum
	// is used instead.
	Max    float64
	Values []float64
	// Horizontal runs the gradient along x; by default it runs along y.
	Horizontal bool
	// Colormap defaults to colormap.Inferno.
	Colormap colormap.Colormap
}

// AmplitudeColorbar draws a sequential gradient legend labelled from 0 to
// the rounded maximum amplitude.
func AmplitudeColorbar(s figure.Surface, opts AmplitudeOptions) error {
	cm := opts.Colormap
	if cm == nil {
		cm = colormap.Inferno
	}
	top := opts.Max
	if len(opts.Values) > 0 {
		top = math.Inf(-1)
		for _, v := range opts.Values {
			top = math.Max(top, v)
		}
	}
	if math.IsNaN(top) || math.IsInf(top, 0) {
		return fmt.Errorf("%w: colorbar max %v", complexcolor.ErrShapeMismatch, top)
	}

	n := amplitudeBarSize
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for i := 0; i < n; i++ {
		c := nrgba(cm.At(float64(i) / float64(n-1)))
		for j := 0; j < n; j++ {
			if opts.Horizontal {
				img.SetNRGBA(i, j, c)
			} else {
				img.SetNRGBA(j, i, c)
			}
		}
	}
	s.DrawRaster(img, figure.Extent{XMax: float64(n), YMax: float64(n)})
	s.SetLimits(figure.XAxis, 0, float64(n))
	s.SetLimits(figure.YAxis, 0, float64(n))

	along := figure.YAxis
	if opts.Horizontal {
		along = figure.XAxis
	}
	maxLabel := strconv.FormatInt(int64(math.RoundToEven(top)), 10)
	s.SetTicks(along, []float64{0, float64(n)}, []string{"0", maxLabel})
	s.SetTicks(along.Other(), []float64{}, nil)
	s.SetLabel(along, "Intensity", -5*float64(len(maxLabel)))
	return nil
}

func nrgba(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

// PhaseOptions configures PhaseColorbar.
type PhaseOptions struct {
	// Max labels the full-amplitude end of the legend.
	Max        float64
	MinVisible float64
	// PhaseOnX puts the hue sweep on x; by default phase runs along y.
	PhaseOnX bool
	Encoder  complexcolor.Encoder
}

// DefaultPhaseOptions returns the options used when none are given.
func DefaultPhaseOptions() PhaseOptions {
	return PhaseOptions{
		Max:        1,
		MinVisible: complexcolor.DefaultMinVisible,
		Encoder:    complexcolor.NewEncoder(),
	}
}

// PhaseColorbar draws the joint legend for complex images: one axis sweeps
// the phase colormap from 0 to 2π, the other sweeps intensity from the
// amplitude floor to 1. The zero-amplitude line is black.
func PhaseColorbar(s figure.Surface, opts PhaseOptions) error {
	w := complexcolor.Window{MinVisible: opts.MinVisible}
	if err := w.Validate(); err != nil {
		return err
	}
	if math.IsNaN(opts.Max) || math.IsInf(opts.Max, 0) {
		return fmt.Errorf("%w: legend max %v", complexcolor.ErrShapeMismatch, opts.Max)
	}

	n := phaseBarSize
	img := image.NewNRGBA(image.Rect(0, 0, n, n))
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		for j := 0; j < n; j++ {
			shade := complexcolor.Intensity(float64(j)/float64(n-1), 1, opts.MinVisible)
			c := opts.Encoder.Hue(t, shade, complexcolor.Opaque).NRGBA()
			// Image rows map to y.
			if opts.PhaseOnX {
				img.SetNRGBA(i, j, c)
			} else {
				img.SetNRGBA(j, i, c)
			}
		}
	}
	s.DrawRaster(img, figure.Extent{XMax: float64(n), YMax: float64(n)})
	s.SetLimits(figure.XAxis, 0, float64(n))
	s.SetLimits(figure.YAxis, 0, float64(n))

	phaseAxis := figure.YAxis
	if opts.PhaseOnX {
		phaseAxis = figure.XAxis
	}
	ampAxis := phaseAxis.Other()
	s.SetTicks(phaseAxis, []float64{0, float64(n)}, []string{"0", "2π"})
	s.SetTicks(ampAxis, []float64{0, float64(n)}, []string{"0", figure.FormatTick(opts.Max)})
	s.SetLabel(phaseAxis, "Phase", 0)
	s.SetLabel(ampAxis, "Amplitude", 0)
	return nil
}
