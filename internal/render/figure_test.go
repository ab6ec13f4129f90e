package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/cleanplots/cleanplots/pkg/figure"
)

func TestRenderPNGUsesCanvasSize(t *testing.T) {
	t.Parallel()

	r := NewFigureRenderer(Config{Width: 120, Height: 90})
	for _, c := range []*figure.Canvas{
		r.NewCanvas(figure.DefaultStyle()),
		figure.NewCanvas(64, 48, figure.DefaultStyle()),
	} {
		data, err := r.RenderPNG(c)
		if err != nil {
			t.Fatalf("RenderPNG: %v", err)
		}
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		w, h := c.Size()
		if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
			t.Fatalf("image size = %v, want %dx%d", b, w, h)
		}
	}
}

func TestRenderPNGReusesPooledContext(t *testing.T) {
	t.Parallel()

	r := NewFigureRenderer(Config{Width: 100, Height: 100})
	first, err := r.RenderPNG(r.NewCanvas(figure.DefaultStyle()))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}

	style := figure.DefaultStyle()
	style.Background = "#ff0000"
	if _, err := r.RenderPNG(r.NewCanvas(style)); err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	again, err := r.RenderPNG(r.NewCanvas(figure.DefaultStyle()))
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	if !bytes.Equal(first, again) {
		t.Fatalf("pooled context leaked content between renders")
	}
}
