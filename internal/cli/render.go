package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleanplots/cleanplots/internal/fieldio"
	"github.com/cleanplots/cleanplots/internal/service"
	"github.com/cleanplots/cleanplots/pkg/figure"
	"github.com/cleanplots/cleanplots/pkg/plots"
)

// renderOpts holds the flags shared by the render subcommands.
type renderOpts struct {
	output     string
	style      string
	minVisible float64
}

func (o *renderOpts) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output PNG path (default: input name with .png)")
	cmd.Flags().StringVar(&o.style, "style", "", "style preset from the configuration")
	cmd.Flags().Float64Var(&o.minVisible, "min-visible", -1, "brightness floor for non-zero amplitudes (default from config)")
}

// floor returns the --min-visible override, or nil when unset.
func (o *renderOpts) floor() *float64 {
	if o.minVisible < 0 {
		return nil
	}
	v := o.minVisible
	return &v
}

func newRenderCmd(g *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render figures to PNG files",
	}
	cmd.AddCommand(newRenderImageCmd(g))
	cmd.AddCommand(newRenderProfileCmd(g))
	cmd.AddCommand(newRenderColorbarCmd(g))
	cmd.AddCommand(newRenderPhasebarCmd(g))
	return cmd
}

func newRenderImageCmd(g *globalOpts) *cobra.Command {
	var (
		opts      renderOpts
		origin    string
		overlay   bool
		pixelSize float64
	)
	cmd := &cobra.Command{
		Use:   "image [field.json]",
		Short: "Render a 2D complex field as a hue/brightness image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := figure.ParseOrigin(origin)
			if err != nil {
				return err
			}
			p := service.ImageParams{
				MinVisible:  opts.floor(),
				Origin:      o,
				Overlay:     overlay,
				PixelSizeUM: pixelSize,
				Style:       opts.style,
			}
			return runRenderField(cmd.Context(), g, args[0], opts.output, func(svc *service.RenderService, path string) ([]byte, error) {
				f, err := fieldio.ReadFile(path)
				if err != nil {
					return nil, err
				}
				return svc.RenderImage(cmd.Context(), f, p)
			})
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&origin, "origin", "upper", "row 0 position: upper or lower")
	cmd.Flags().BoolVar(&overlay, "overlay", false, "encode amplitude as transparency instead of drawing over black")
	cmd.Flags().Float64Var(&pixelSize, "pixel-size", 0, "pixel size in micrometres; adds a scalebar when positive")
	return cmd
}

func newRenderProfileCmd(g *globalOpts) *cobra.Command {
	var (
		opts        renderOpts
		orientation string
		title       string
	)
	cmd := &cobra.Command{
		Use:   "profile [field.json]",
		Short: "Render a 1D complex profile as a colored line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := plots.ParseOrientation(orientation)
			if err != nil {
				return err
			}
			p := service.ProfileParams{
				MinVisible:  opts.floor(),
				Orientation: o,
				Style:       opts.style,
				Title:       title,
			}
			return runRenderField(cmd.Context(), g, args[0], opts.output, func(svc *service.RenderService, path string) ([]byte, error) {
				f, err := fieldio.ReadFile(path)
				if err != nil {
					return nil, err
				}
				return svc.RenderProfile(cmd.Context(), f, p)
			})
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&orientation, "orientation", "horz", "profile direction: horz or vert")
	cmd.Flags().StringVar(&title, "title", "", "axes title")
	return cmd
}

func newRenderColorbarCmd(g *globalOpts) *cobra.Command {
	var (
		opts       renderOpts
		max        float64
		horizontal bool
	)
	cmd := &cobra.Command{
		Use:   "colorbar",
		Short: "Render an amplitude colorbar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := defaultOutput(opts.output, "colorbar.png")
			return runRenderField(cmd.Context(), g, "", out, func(svc *service.RenderService, _ string) ([]byte, error) {
				return svc.AmplitudeColorbarPNG(cmd.Context(), service.AmplitudeBarParams{
					Max:        max,
					Horizontal: horizontal,
					Style:      opts.style,
				})
			})
		},
	}
	opts.bind(cmd)
	cmd.Flags().Float64Var(&max, "max", 1, "amplitude shown at the top of the bar")
	cmd.Flags().BoolVar(&horizontal, "horizontal", false, "lay the bar out horizontally")
	return cmd
}

func newRenderPhasebarCmd(g *globalOpts) *cobra.Command {
	var (
		opts     renderOpts
		max      float64
		phaseOnX bool
	)
	cmd := &cobra.Command{
		Use:   "phasebar",
		Short: "Render a 2D phase and amplitude legend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := defaultOutput(opts.output, "phasebar.png")
			return runRenderField(cmd.Context(), g, "", out, func(svc *service.RenderService, _ string) ([]byte, error) {
				return svc.PhaseColorbarPNG(cmd.Context(), service.PhaseBarParams{
					Max:        max,
					MinVisible: opts.floor(),
					PhaseOnX:   phaseOnX,
					Style:      opts.style,
				})
			})
		},
	}
	opts.bind(cmd)
	cmd.Flags().Float64Var(&max, "max", 1, "amplitude at the end of the amplitude axis")
	cmd.Flags().BoolVar(&phaseOnX, "phase-on-x", false, "put phase on the horizontal axis")
	return cmd
}

// runRenderField builds a service, produces a PNG and writes it to output
// (derived from input when empty).
func runRenderField(ctx context.Context, g *globalOpts, input, output string, build func(*service.RenderService, string) ([]byte, error)) error {
	sw := startStopwatch(logFrom(ctx))

	cfg, err := g.loadConfig(ctx)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	svc, err := newService(ctx, cfg, nil)
	if err != nil {
		return err
	}

	data, err := build(svc, input)
	if err != nil {
		return err
	}
	out := defaultOutput(output, pngPath(input))
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	sw.wrote(out, len(data))
	return nil
}

func defaultOutput(output, fallback string) string {
	if output != "" {
		return output
	}
	return fallback
}

// pngPath swaps the extensions of a field file for .png, dropping a
// compression suffix first.
func pngPath(input string) string {
	base := input
	if fieldio.EncodingForPath(base) != fieldio.Identity {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".png"
}
