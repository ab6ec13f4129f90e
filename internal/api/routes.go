// Package api provides HTTP handlers for the cleanplots server.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cleanplots/cleanplots/internal/cache"
	"github.com/cleanplots/cleanplots/internal/config"
	"github.com/cleanplots/cleanplots/internal/fieldio"
	"github.com/cleanplots/cleanplots/internal/service"
	"github.com/cleanplots/cleanplots/pkg/complexcolor"
	"github.com/cleanplots/cleanplots/pkg/figure"
	"github.com/cleanplots/cleanplots/pkg/plots"
	"github.com/cleanplots/cleanplots/pkg/scalebar"
)

// maxFieldBytes bounds the size of an uploaded field body.
const maxFieldBytes = 64 << 20

// RouterConfig contains router configuration.
type RouterConfig struct {
	Service     *service.RenderService
	Cache       *cache.Manager // optional, for /api/stats
	CORSOrigins []string
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json", "text/plain"))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Encoding"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/colormaps", colormapsHandler(cfg.Service))
		r.Get("/presets", presetsHandler(cfg.Service))
		r.Get("/scalebar", scalebarHandler(cfg.Service))
		r.Get("/stats", statsHandler(cfg.Cache))

		r.Post("/render/image.png", imageHandler(cfg.Service))
		r.Post("/render/profile.png", profileHandler(cfg.Service))

		r.Get("/colorbar/amplitude.png", amplitudeColorbarHandler(cfg.Service))
		r.Get("/colorbar/phase.png", phaseColorbarHandler(cfg.Service))
	})

	return r
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writePNG(w http.ResponseWriter, data []byte, cacheable bool) {
	w.Header().Set("Content-Type", "image/png")
	if cacheable {
		w.Header().Set("Cache-Control", "public, max-age=3600")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.Write(data)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, complexcolor.ErrShapeMismatch),
		errors.Is(err, complexcolor.ErrInvalidWindow),
		errors.Is(err, scalebar.ErrInvalidInput),
		errors.Is(err, fieldio.ErrMalformed),
		errors.Is(err, errBadParam):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, config.ErrUnknownPreset):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &maxErr):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

var errBadParam = errors.New("invalid query parameter")

func paramError(name, value string) error {
	return fmt.Errorf("%w: %s=%q", errBadParam, name, value)
}

// parseFloat reads a finite float query parameter; missing yields def.
func parseFloat(query url.Values, name string, def float64) (float64, error) {
	s := strings.TrimSpace(query.Get(name))
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, paramError(name, s)
	}
	return v, nil
}

func parseOptionalFloat(query url.Values, name string) (*float64, error) {
	if strings.TrimSpace(query.Get(name)) == "" {
		return nil, nil
	}
	v, err := parseFloat(query, name, 0)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseBool(query url.Values, name string) (bool, error) {
	s := strings.TrimSpace(query.Get(name))
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, paramError(name, s)
	}
	return v, nil
}

func colormapsHandler(svc *service.RenderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{
			"colormaps": svc.Colormaps(),
			"phase":     svc.Config().Render.PhaseColormap,
			"amplitude": svc.Config().Render.AmplitudeColormap,
		})
	}
}

func presetsHandler(svc *service.RenderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"presets": svc.Presets()})
	}
}

func statsHandler(cm *cache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cm == nil {
			writeJSON(w, map[string]interface{}{})
			return
		}
		writeJSON(w, cm.Stats())
	}
}

func scalebarHandler(svc *service.RenderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		pixel, err := parseFloat(query, "pixel_size_um", 0)
		if err != nil {
			writeError(w, err)
			return
		}
		spanStr := strings.TrimSpace(query.Get("span_px"))
		span, err := strconv.Atoi(spanStr)
		if err != nil {
			writeError(w, paramError("span_px", spanStr))
			return
		}
		fraction, err := parseFloat(query, "fraction", 0)
		if err != nil {
			writeError(w, err)
			return
		}

		spec, err := svc.Scalebar(r.Context(), pixel, span, fraction)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, spec)
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxFieldBytes))
}

func imageHandler(svc *service.RenderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var (
			p   service.ImageParams
			err error
		)
		if p.MinVisible, err = parseOptionalFloat(query, "min_visible"); err != nil {
			writeError(w, err)
			return
		}
		if p.Origin, err = figure.ParseOrigin(query.Get("origin")); err != nil {
			writeError(w, paramError("origin", query.Get("origin")))
			return
		}
		if p.Overlay, err = parseBool(query, "overlay"); err != nil {
			writeError(w, err)
			return
		}
		if p.PixelSizeUM, err = parseFloat(query, "pixel_size_um", 0); err != nil {
			writeError(w, err)
			return
		}
		p.Style = query.Get("style")

		body, err := readBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := svc.ImagePNG(r.Context(), body, r.Header.Get("Content-Encoding"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writePNG(w, data, false)
	}
}

func profileHandler(svc *service.RenderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		var (
			p   service.ProfileParams
			err error
		)
		if p.MinVisible, err = parseOptionalFloat(query, "min_visible"); err != nil {
			writeError(w, err)
			return
		}
		if p.Orientation, err = plots.ParseOrientation(query.Get("orientation")); err != nil {
			writeError(w, err)
			return
		}
		p.Style = query.Get("style")
		p.Title = query.Get("title")

		body, err := readBody(w, r)
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := svc.ProfilePNG(r.Context(), body, r.Header.Get("Content-Encoding"), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writePNG(w, data, false)
	}
}

func amplitudeColorbarHandler(svc *service.RenderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		max, err := parseFloat(query, "max", 1)
		if err != nil {
			writeError(w, err)
			return
		}
		orientation, err := plots.ParseOrientation(query.Get("orientation"))
		if err != nil {
			writeError(w, err)
			return
		}
		if query.Get("orientation") == "" {
			orientation = plots.Vertical
		}

		data, err := svc.AmplitudeColorbarPNG(r.Context(), service.AmplitudeBarParams{
			Max:        max,
			Horizontal: orientation == plots.Horizontal,
			Style:      query.Get("style"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writePNG(w, data, true)
	}
}

func phaseColorbarHandler(svc *service.RenderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		max, err := parseFloat(query, "max", 1)
		if err != nil {
			writeError(w, err)
			return
		}
		minVisible, err := parseOptionalFloat(query, "min_visible")
		if err != nil {
			writeError(w, err)
			return
		}
		var phaseOnX bool
		switch axis := strings.ToLower(strings.TrimSpace(query.Get("phase_axis"))); axis {
		case "", "y":
		case "x":
			phaseOnX = true
		default:
			writeError(w, paramError("phase_axis", axis))
			return
		}

		data, err := svc.PhaseColorbarPNG(r.Context(), service.PhaseBarParams{
			Max:        max,
			MinVisible: minVisible,
			PhaseOnX:   phaseOnX,
			Style:      query.Get("style"),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writePNG(w, data, true)
	}
}
