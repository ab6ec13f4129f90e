// Package render rasterizes figure canvases to PNG using fogleman/gg.
package render

import (
	"bytes"
	"image"
	"image/png"
	"sync"

	"github.com/fogleman/gg"

	"github.com/cleanplots/cleanplots/pkg/figure"
)

// Config contains renderer configuration.
type Config struct {
	Width  int
	Height int
}

// FigureRenderer encodes canvases of the configured size, reusing drawing
// contexts and encode buffers between calls.
type FigureRenderer struct {
	config      Config
	contextPool sync.Pool
	bufferPool  sync.Pool
}

// NewFigureRenderer creates a new figure renderer.
func NewFigureRenderer(cfg Config) *FigureRenderer {
	r := &FigureRenderer{
		config: cfg,
		contextPool: sync.Pool{
			New: func() interface{} {
				return gg.NewContext(cfg.Width, cfg.Height)
			},
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 64*1024))
			},
		},
	}
	return r
}

// NewCanvas returns an empty canvas of the configured size.
func (r *FigureRenderer) NewCanvas(style figure.Style) *figure.Canvas {
	return figure.NewCanvas(r.config.Width, r.config.Height, style)
}

// RenderPNG rasterizes c and returns the encoded PNG. Canvases of another
// size are drawn on a fresh context.
func (r *FigureRenderer) RenderPNG(c *figure.Canvas) ([]byte, error) {
	w, h := c.Size()
	if w != r.config.Width || h != r.config.Height {
		dc := gg.NewContext(w, h)
		c.DrawTo(dc)
		return r.encode(dc.Image())
	}

	// Get context from pool
	dc := r.contextPool.Get().(*gg.Context)
	defer r.contextPool.Put(dc)

	c.DrawTo(dc)
	return r.encode(dc.Image())
}

func (r *FigureRenderer) encode(img image.Image) ([]byte, error) {
	buf := r.bufferPool.Get().(*bytes.Buffer)
	defer func() {
		buf.Reset()
		r.bufferPool.Put(buf)
	}()

	// Use fast PNG encoder
	encoder := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := encoder.Encode(buf, img); err != nil {
		return nil, err
	}

	// Copy buffer contents (buffer will be reused)
	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}
