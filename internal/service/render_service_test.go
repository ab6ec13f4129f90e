package service

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/cleanplots/cleanplots/internal/cache"
	"github.com/cleanplots/cleanplots/internal/config"
	"github.com/cleanplots/cleanplots/pkg/complexcolor"
	"github.com/cleanplots/cleanplots/pkg/scalebar"
)

func newTestService(t *testing.T, withCache bool) *RenderService {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Render.Width, cfg.Render.Height = 160, 120

	var cm *cache.Manager
	if withCache {
		var err error
		cm, err = cache.NewManager(cache.Config{FigureCacheSizeMB: 8, FigureTTL: time.Minute, QueryCacheSize: 16})
		if err != nil {
			t.Fatalf("NewManager: %v", err)
		}
		t.Cleanup(func() { cm.Close() })
	}

	svc, err := NewRenderService(RenderServiceConfig{
		Config: cfg,
		Cache:  cm,
		Logger: log.New(io.Discard),
	})
	if err != nil {
		t.Fatalf("NewRenderService: %v", err)
	}
	return svc
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestImagePNG(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, true)
	body := []byte(`{"rows":2,"cols":2,"re":[1,0,0,-1],"im":[0,1,-1,0]}`)
	data, err := svc.ImagePNG(context.Background(), body, "", ImageParams{PixelSizeUM: 0.5})
	if err != nil {
		t.Fatalf("ImagePNG: %v", err)
	}
	if w, h := decodeSize(t, data); w != 160 || h != 120 {
		t.Fatalf("size = %dx%d, want 160x120", w, h)
	}

	again, err := svc.ImagePNG(context.Background(), body, "", ImageParams{PixelSizeUM: 0.5})
	if err != nil {
		t.Fatalf("ImagePNG (cached): %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Fatalf("cached figure differs")
	}
}

func TestImagePNGRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, false)
	ctx := context.Background()

	if _, err := svc.ImagePNG(ctx, []byte(`{"rows":2,"re":[1,2,3]}`), "", ImageParams{}); !errors.Is(err, complexcolor.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
	bad := 1.5
	if _, err := svc.ImagePNG(ctx, []byte(`{"re":[1]}`), "", ImageParams{MinVisible: &bad}); !errors.Is(err, complexcolor.ErrInvalidWindow) {
		t.Fatalf("err = %v, want ErrInvalidWindow", err)
	}
	if _, err := svc.ImagePNG(ctx, []byte(`{"re":[1]}`), "", ImageParams{Style: "billboard"}); !errors.Is(err, config.ErrUnknownPreset) {
		t.Fatalf("err = %v, want ErrUnknownPreset", err)
	}
	if _, err := svc.ImagePNG(ctx, []byte(`{"re":[1]}`), "", ImageParams{PixelSizeUM: -1}); err != nil {
		t.Fatalf("negative pixel size should skip the scalebar: %v", err)
	}
}

func TestProfilePNG(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, false)
	data, err := svc.ProfilePNG(context.Background(), []byte(`{"mag":[1,2,1],"phase":[0,2,4]}`), "", ProfileParams{Style: "poster"})
	if err != nil {
		t.Fatalf("ProfilePNG: %v", err)
	}
	if w, h := decodeSize(t, data); w != 160 || h != 120 {
		t.Fatalf("size = %dx%d", w, h)
	}

	f, _ := complexcolor.NewField(2, 2, []complex128{1, 2, 3, 4})
	if _, err := svc.RenderProfile(context.Background(), f, ProfileParams{}); !errors.Is(err, complexcolor.ErrShapeMismatch) {
		t.Fatalf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestColorbars(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, true)
	ctx := context.Background()
	if _, err := svc.AmplitudeColorbarPNG(ctx, AmplitudeBarParams{Max: 255}); err != nil {
		t.Fatalf("AmplitudeColorbarPNG: %v", err)
	}
	if _, err := svc.PhaseColorbarPNG(ctx, PhaseBarParams{Max: 1, PhaseOnX: true}); err != nil {
		t.Fatalf("PhaseColorbarPNG: %v", err)
	}
}

func TestScalebar(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, true)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		spec, err := svc.Scalebar(ctx, 0.5, 1000, 0)
		if err != nil {
			t.Fatalf("Scalebar: %v", err)
		}
		if spec.LengthUM != 200 || spec.LengthPx != 400 || spec.TargetFraction != 0.3 {
			t.Fatalf("unexpected spec %+v", spec)
		}
	}
	if _, err := svc.Scalebar(ctx, -1, 1000, 0.3); !errors.Is(err, scalebar.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestNewRenderServiceUnknownColormap(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Render.PhaseColormap = "viridis"
	if _, err := NewRenderService(RenderServiceConfig{Config: cfg}); !errors.Is(err, ErrUnknownColormap) {
		t.Fatalf("err = %v, want ErrUnknownColormap", err)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	svc := newTestService(t, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.AmplitudeColorbarPNG(ctx, AmplitudeBarParams{Max: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
