// Package config handles configuration loading for the cleanplots server and
// CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cleanplots/cleanplots/pkg/complexcolor"
	"github.com/cleanplots/cleanplots/pkg/figure"
	"github.com/cleanplots/cleanplots/pkg/plots"
	"github.com/cleanplots/cleanplots/pkg/scalebar"
)

// ErrUnknownPreset is returned when a style preset is not configured.
var ErrUnknownPreset = errors.New("config: unknown style preset")

// Config represents the cleanplots configuration.
type Config struct {
	Server  ServerConfig           `yaml:"server" toml:"server"`
	Cache   CacheConfig            `yaml:"cache" toml:"cache"`
	Render  RenderConfig           `yaml:"render" toml:"render"`
	Style   StyleConfig            `yaml:"style" toml:"style"`
	Presets map[string]StyleConfig `yaml:"presets" toml:"presets"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int      `yaml:"port" toml:"port"`
	CORSOrigins []string `yaml:"cors_origins" toml:"cors_origins"`
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	FigureSizeMB     int `yaml:"figure_size_mb" toml:"figure_size_mb"`
	FigureTTLMinutes int `yaml:"figure_ttl_minutes" toml:"figure_ttl_minutes"`
	QueryCacheSize   int `yaml:"query_cache_size" toml:"query_cache_size"`
}

// RenderConfig contains rendering settings.
type RenderConfig struct {
	Width                int     `yaml:"width" toml:"width"`
	Height               int     `yaml:"height" toml:"height"`
	PhaseColormap        string  `yaml:"phase_colormap" toml:"phase_colormap"`
	AmplitudeColormap    string  `yaml:"amplitude_colormap" toml:"amplitude_colormap"`
	AmplitudeContrastMin float64 `yaml:"amplitude_contrast_min" toml:"amplitude_contrast_min"`
	ProfilePoints        int     `yaml:"profile_points" toml:"profile_points"`
	LineWidth            float64 `yaml:"line_width" toml:"line_width"`
	ScalebarFraction     float64 `yaml:"scalebar_fraction" toml:"scalebar_fraction"`
}

// StyleConfig mirrors figure.Style. Zero fields inherit from the base style.
type StyleConfig struct {
	FontSize        float64  `yaml:"font_size" toml:"font_size"`
	TitleSize       float64  `yaml:"title_size" toml:"title_size"`
	LabelSize       float64  `yaml:"label_size" toml:"label_size"`
	TickLabelSize   float64  `yaml:"tick_label_size" toml:"tick_label_size"`
	FigureTitleSize float64  `yaml:"figure_title_size" toml:"figure_title_size"`
	AxesLineWidth   float64  `yaml:"axes_line_width" toml:"axes_line_width"`
	TickWidth       float64  `yaml:"tick_width" toml:"tick_width"`
	TickLength      float64  `yaml:"tick_length" toml:"tick_length"`
	HiddenSpines    []string `yaml:"hidden_spines" toml:"hidden_spines"`
	Background      string   `yaml:"background" toml:"background"`
	Foreground      string   `yaml:"foreground" toml:"foreground"`
}

// Load reads configuration from a YAML or TOML file, chosen by extension.
// A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	// Zero is a meaningful contrast floor, so it is seeded before decoding
	// instead of being patched afterwards.
	var cfg Config
	cfg.Render.AmplitudeContrastMin = complexcolor.DefaultMinVisible
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	// Apply defaults for missing values
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Cache: CacheConfig{
			FigureSizeMB:     256,
			FigureTTLMinutes: 10,
			QueryCacheSize:   1024,
		},
		Render: RenderConfig{
			Width:                640,
			Height:               480,
			PhaseColormap:        "phase_r",
			AmplitudeColormap:    "inferno",
			AmplitudeContrastMin: complexcolor.DefaultMinVisible,
			ProfilePoints:        plots.DefaultProfilePoints,
			LineWidth:            2,
			ScalebarFraction:     scalebar.DefaultFraction,
		},
		Style: StyleConfig{
			FontSize:        14,
			TitleSize:       14,
			LabelSize:       18,
			TickLabelSize:   14,
			FigureTitleSize: 24,
			AxesLineWidth:   2,
			TickWidth:       2,
			TickLength:      6,
			HiddenSpines:    []string{"top", "right"},
			Background:      "#ffffff",
			Foreground:      "#000000",
		},
		Presets: map[string]StyleConfig{
			"poster": {
				FontSize:        24,
				TitleSize:       24,
				LabelSize:       28,
				TickLabelSize:   22,
				FigureTitleSize: 36,
				AxesLineWidth:   3,
				TickWidth:       3,
				TickLength:      10,
			},
		},
	}
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()

	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaults.Server.Port
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = defaults.Server.CORSOrigins
	}
	if cfg.Cache.FigureSizeMB == 0 {
		cfg.Cache.FigureSizeMB = defaults.Cache.FigureSizeMB
	}
	if cfg.Cache.FigureTTLMinutes == 0 {
		cfg.Cache.FigureTTLMinutes = defaults.Cache.FigureTTLMinutes
	}
	if cfg.Cache.QueryCacheSize == 0 {
		cfg.Cache.QueryCacheSize = defaults.Cache.QueryCacheSize
	}
	if cfg.Render.Width == 0 {
		cfg.Render.Width = defaults.Render.Width
	}
	if cfg.Render.Height == 0 {
		cfg.Render.Height = defaults.Render.Height
	}
	if cfg.Render.PhaseColormap == "" {
		cfg.Render.PhaseColormap = defaults.Render.PhaseColormap
	}
	if cfg.Render.AmplitudeColormap == "" {
		cfg.Render.AmplitudeColormap = defaults.Render.AmplitudeColormap
	}
	if cfg.Render.ProfilePoints == 0 {
		cfg.Render.ProfilePoints = defaults.Render.ProfilePoints
	}
	if cfg.Render.LineWidth == 0 {
		cfg.Render.LineWidth = defaults.Render.LineWidth
	}
	if cfg.Render.ScalebarFraction == 0 {
		cfg.Render.ScalebarFraction = defaults.Render.ScalebarFraction
	}
	cfg.Style = cfg.Style.over(defaults.Style)
	if cfg.Presets == nil {
		cfg.Presets = defaults.Presets
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Render.Width < 0 || c.Render.Height < 0 {
		return fmt.Errorf("config: figure size %dx%d", c.Render.Width, c.Render.Height)
	}
	w := complexcolor.Window{MinVisible: c.Render.AmplitudeContrastMin}
	if err := w.Validate(); err != nil {
		return fmt.Errorf("config: render.amplitude_contrast_min: %w", err)
	}
	if f := c.Render.ScalebarFraction; f <= 0 || f >= 1 {
		return fmt.Errorf("config: render.scalebar_fraction %v not in (0,1)", f)
	}
	if _, err := c.Style.parseSpines(); err != nil {
		return err
	}
	for name, p := range c.Presets {
		if _, err := p.parseSpines(); err != nil {
			return fmt.Errorf("config: preset %q: %w", name, err)
		}
	}
	return nil
}

// FigureStyle returns the named preset applied over the base style. The
// empty name selects the base style.
func (c *Config) FigureStyle(preset string) (figure.Style, error) {
	sc := c.Style
	if preset != "" {
		p, ok := c.Presets[preset]
		if !ok {
			return figure.Style{}, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
		}
		sc = p.over(c.Style)
	}
	return sc.figureStyle()
}

// PresetNames returns the configured preset names in sorted order.
func (c *Config) PresetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// over fills the zero fields of s from base.
func (s StyleConfig) over(base StyleConfig) StyleConfig {
	pick := func(v, b float64) float64 {
		if v == 0 {
			return b
		}
		return v
	}
	out := StyleConfig{
		FontSize:        pick(s.FontSize, base.FontSize),
		TitleSize:       pick(s.TitleSize, base.TitleSize),
		LabelSize:       pick(s.LabelSize, base.LabelSize),
		TickLabelSize:   pick(s.TickLabelSize, base.TickLabelSize),
		FigureTitleSize: pick(s.FigureTitleSize, base.FigureTitleSize),
		AxesLineWidth:   pick(s.AxesLineWidth, base.AxesLineWidth),
		TickWidth:       pick(s.TickWidth, base.TickWidth),
		TickLength:      pick(s.TickLength, base.TickLength),
		HiddenSpines:    s.HiddenSpines,
		Background:      s.Background,
		Foreground:      s.Foreground,
	}
	if out.HiddenSpines == nil {
		out.HiddenSpines = base.HiddenSpines
	}
	if out.Background == "" {
		out.Background = base.Background
	}
	if out.Foreground == "" {
		out.Foreground = base.Foreground
	}
	return out
}

func (s StyleConfig) parseSpines() ([]figure.Spine, error) {
	spines := make([]figure.Spine, 0, len(s.HiddenSpines))
	for _, name := range s.HiddenSpines {
		sp, err := figure.ParseSpine(name)
		if err != nil {
			return nil, err
		}
		spines = append(spines, sp)
	}
	return spines, nil
}

func (s StyleConfig) figureStyle() (figure.Style, error) {
	spines, err := s.parseSpines()
	if err != nil {
		return figure.Style{}, err
	}
	return figure.Style{
		FontSize:        s.FontSize,
		TitleSize:       s.TitleSize,
		LabelSize:       s.LabelSize,
		TickLabelSize:   s.TickLabelSize,
		FigureTitleSize: s.FigureTitleSize,
		AxesLineWidth:   s.AxesLineWidth,
		TickWidth:       s.TickWidth,
		TickLength:      s.TickLength,
		HiddenSpines:    spines,
		Background:      s.Background,
		Foreground:      s.Foreground,
	}, nil
}
