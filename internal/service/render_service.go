// Package service provides the rendering logic shared by the HTTP API and the
// CLI.
package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cleanplots/cleanplots/internal/cache"
	"github.com/cleanplots/cleanplots/internal/config"
	"github.com/cleanplots/cleanplots/internal/fieldio"
	"github.com/cleanplots/cleanplots/internal/render"
	"github.com/cleanplots/cleanplots/pkg/colormap"
	"github.com/cleanplots/cleanplots/pkg/complexcolor"
	"github.com/cleanplots/cleanplots/pkg/figure"
	"github.com/cleanplots/cleanplots/pkg/plots"
	"github.com/cleanplots/cleanplots/pkg/scalebar"
)

// ErrUnknownColormap is returned when a configured colormap is not registered.
var ErrUnknownColormap = errors.New("service: unknown colormap")

// RenderServiceConfig contains render service configuration.
type RenderServiceConfig struct {
	Config   *config.Config
	Cache    *cache.Manager // optional
	Renderer *render.FigureRenderer
	Logger   *log.Logger
}

// RenderService turns fields and legend parameters into PNG figures.
type RenderService struct {
	cfg       *config.Config
	cache     *cache.Manager
	renderer  *render.FigureRenderer
	logger    *log.Logger
	encoder   complexcolor.Encoder
	amplitude colormap.Colormap
}

// NewRenderService creates a new render service.
func NewRenderService(cfg RenderServiceConfig) (*RenderService, error) {
	c := cfg.Config
	if c == nil {
		c = config.DefaultConfig()
	}
	phase, ok := colormap.LookupCyclic(c.Render.PhaseColormap)
	if !ok {
		return nil, fmt.Errorf("%w: phase colormap %q", ErrUnknownColormap, c.Render.PhaseColormap)
	}
	amp, ok := colormap.Lookup(c.Render.AmplitudeColormap)
	if !ok {
		return nil, fmt.Errorf("%w: amplitude colormap %q", ErrUnknownColormap, c.Render.AmplitudeColormap)
	}

	renderer := cfg.Renderer
	if renderer == nil {
		renderer = render.NewFigureRenderer(render.Config{Width: c.Render.Width, Height: c.Render.Height})
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &RenderService{
		cfg:       c,
		cache:     cfg.Cache,
		renderer:  renderer,
		logger:    logger,
		encoder:   complexcolor.Encoder{Phase: phase},
		amplitude: amp,
	}, nil
}

// Config returns the service configuration.
func (s *RenderService) Config() *config.Config {
	return s.cfg
}

// ImageParams are the presentation options of a complex image.
type ImageParams struct {
	MinVisible  *float64
	Origin      figure.Origin
	Overlay     bool
	PixelSizeUM float64
	Style       string
}

// ProfileParams are the presentation options of a line profile.
type ProfileParams struct {
	MinVisible  *float64
	Orientation plots.Orientation
	Style       string
	Title       string
}

// AmplitudeBarParams select an amplitude legend.
type AmplitudeBarParams struct {
	Max        float64
	Horizontal bool
	Style      string
}

// PhaseBarParams select a joint phase and amplitude legend.
type PhaseBarParams struct {
	Max        float64
	MinVisible *float64
	PhaseOnX   bool
	Style      string
}

func (p ImageParams) key() map[string]string {
	return map[string]string{
		"min_visible":   floatParam(p.MinVisible),
		"origin":        strconv.Itoa(int(p.Origin)),
		"overlay":       strconv.FormatBool(p.Overlay),
		"pixel_size_um": strconv.FormatFloat(p.PixelSizeUM, 'g', -1, 64),
		"style":         p.Style,
	}
}

func (p ProfileParams) key() map[string]string {
	return map[string]string{
		"min_visible": floatParam(p.MinVisible),
		"orientation": p.Orientation.String(),
		"style":       p.Style,
		"title":       p.Title,
	}
}

func floatParam(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func (s *RenderService) minVisible(v *float64) float64 {
	if v != nil {
		return *v
	}
	return s.cfg.Render.AmplitudeContrastMin
}

// ImagePNG decodes a field body in the given content encoding and renders
// it as a complex image.
func (s *RenderService) ImagePNG(ctx context.Context, body []byte, encoding string, p ImageParams) ([]byte, error) {
	key := cache.FigureKey("image", p.key(), body)
	return s.cached(ctx, key, func() ([]byte, error) {
		f, err := fieldio.Decode(bytes.NewReader(body), encoding)
		if err != nil {
			return nil, err
		}
		return s.RenderImage(ctx, f, p)
	})
}

// RenderImage renders f as a complex image.
func (s *RenderService) RenderImage(ctx context.Context, f complexcolor.Field, p ImageParams) ([]byte, error) {
	c, err := s.canvas(p.Style)
	if err != nil {
		return nil, err
	}
	opts := plots.ImageOptions{
		Window:           complexcolor.Window{MinVisible: s.minVisible(p.MinVisible)},
		Origin:           p.Origin,
		Overlay:          p.Overlay,
		PixelSizeUM:      p.PixelSizeUM,
		ScalebarFraction: s.cfg.Render.ScalebarFraction,
		Encoder:          s.encoder,
	}
	if _, err := plots.ComplexImage(c, f, opts); err != nil {
		return nil, err
	}
	s.logger.Debug("rendered complex image", "rows", f.Rows, "cols", f.Cols, "overlay", p.Overlay)
	return s.renderer.RenderPNG(c)
}

// ProfilePNG decodes a one-dimensional field body and renders it as a line
// profile.
func (s *RenderService) ProfilePNG(ctx context.Context, body []byte, encoding string, p ProfileParams) ([]byte, error) {
	key := cache.FigureKey("profile", p.key(), body)
	return s.cached(ctx, key, func() ([]byte, error) {
		f, err := fieldio.Decode(bytes.NewReader(body), encoding)
		if err != nil {
			return nil, err
		}
		return s.RenderProfile(ctx, f, p)
	})
}

// RenderProfile renders a single-row field as a line profile.
func (s *RenderService) RenderProfile(ctx context.Context, f complexcolor.Field, p ProfileParams) ([]byte, error) {
	if f.Dims() != 1 {
		return nil, fmt.Errorf("%w: profile must have one row, got %d", complexcolor.ErrShapeMismatch, f.Rows)
	}
	c, err := s.canvas(p.Style)
	if err != nil {
		return nil, err
	}
	opts := plots.ProfileOptions{
		Width:       s.cfg.Render.LineWidth,
		Window:      complexcolor.Window{MinVisible: s.minVisible(p.MinVisible)},
		Orientation: p.Orientation,
		Points:      s.cfg.Render.ProfilePoints,
		Encoder:     s.encoder,
	}
	segs, err := plots.LineProfile(c, f.Data, opts)
	if err != nil {
		return nil, err
	}
	plots.DecimalFormatTicks(c)
	plots.ClearSpines(c)
	c.SetTitle(p.Title)
	s.logger.Debug("rendered line profile", "samples", f.Len(), "segments", len(segs))
	return s.renderer.RenderPNG(c)
}

// AmplitudeColorbarPNG renders an amplitude legend.
func (s *RenderService) AmplitudeColorbarPNG(ctx context.Context, p AmplitudeBarParams) ([]byte, error) {
	key := cache.FigureKey("colorbar/amplitude", map[string]string{
		"max":        strconv.FormatFloat(p.Max, 'g', -1, 64),
		"horizontal": strconv.FormatBool(p.Horizontal),
		"style":      p.Style,
	}, nil)
	return s.cached(ctx, key, func() ([]byte, error) {
		c, err := s.canvas(p.Style)
		if err != nil {
			return nil, err
		}
		opts := plots.AmplitudeOptions{Max: p.Max, Horizontal: p.Horizontal, Colormap: s.amplitude}
		if err := plots.AmplitudeColorbar(c, opts); err != nil {
			return nil, err
		}
		return s.renderer.RenderPNG(c)
	})
}

// PhaseColorbarPNG renders a joint phase and amplitude legend.
func (s *RenderService) PhaseColorbarPNG(ctx context.Context, p PhaseBarParams) ([]byte, error) {
	key := cache.FigureKey("colorbar/phase", map[string]string{
		"max":         strconv.FormatFloat(p.Max, 'g', -1, 64),
		"min_visible": floatParam(p.MinVisible),
		"phase_on_x":  strconv.FormatBool(p.PhaseOnX),
		"style":       p.Style,
	}, nil)
	return s.cached(ctx, key, func() ([]byte, error) {
		c, err := s.canvas(p.Style)
		if err != nil {
			return nil, err
		}
		opts := plots.PhaseOptions{
			Max:        p.Max,
			MinVisible: s.minVisible(p.MinVisible),
			PhaseOnX:   p.PhaseOnX,
			Encoder:    s.encoder,
		}
		if err := plots.PhaseColorbar(c, opts); err != nil {
			return nil, err
		}
		return s.renderer.RenderPNG(c)
	})
}

// Scalebar infers a scalebar. A zero fraction selects the configured one.
func (s *RenderService) Scalebar(ctx context.Context, pixelSizeUM float64, spanPx int, fraction float64) (scalebar.Spec, error) {
	if fraction == 0 {
		fraction = s.cfg.Render.ScalebarFraction
	}
	key := cache.ScalebarKey(pixelSizeUM, spanPx, fraction)
	if s.cache != nil {
		if data, ok := s.cache.GetQuery(key); ok {
			var spec scalebar.Spec
			if err := json.Unmarshal(data, &spec); err == nil {
				return spec, nil
			}
		}
	}

	spec, err := scalebar.Infer(pixelSizeUM, spanPx, fraction)
	if err != nil {
		return scalebar.Spec{}, err
	}
	if s.cache != nil {
		if data, err := json.Marshal(spec); err == nil {
			s.cache.SetQuery(key, data)
		}
	}
	return spec, nil
}

// Colormaps returns the registered colormap names.
func (s *RenderService) Colormaps() []string {
	return colormap.Names()
}

// Presets returns the configured style preset names.
func (s *RenderService) Presets() []string {
	return s.cfg.PresetNames()
}

func (s *RenderService) canvas(preset string) (*figure.Canvas, error) {
	style, err := s.cfg.FigureStyle(preset)
	if err != nil {
		return nil, err
	}
	return s.renderer.NewCanvas(style), nil
}

func (s *RenderService) cached(ctx context.Context, key string, build func() ([]byte, error)) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if data, ok := s.cache.GetFigure(key); ok {
			s.logger.Debug("figure cache hit", "key", key)
			return data, nil
		}
	}

	start := time.Now()
	data, err := build()
	if err != nil {
		return nil, err
	}
	s.logger.Debug("figure rendered", "key", key, "bytes", len(data), "elapsed", time.Since(start).Round(time.Millisecond))

	if s.cache != nil {
		if err := s.cache.SetFigure(key, data); err != nil {
			s.logger.Warn("failed to cache figure", "key", key, "err", err)
		}
	}
	return data, nil
}
