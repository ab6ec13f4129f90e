package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/cleanplots/cleanplots/pkg/scalebar"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func newScalebarCmd(g *globalOpts) *cobra.Command {
	var (
		pixelSize float64
		span      int
		fraction  float64
	)
	cmd := &cobra.Command{
		Use:   "scalebar",
		Short: "Show the scalebar chosen for an image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.loadConfig(cmd.Context())
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if fraction == 0 {
				fraction = cfg.Render.ScalebarFraction
			}
			spec, err := scalebar.Infer(pixelSize, span, fraction)
			if err != nil {
				return err
			}
			writeScalebar(cmd.OutOrStdout(), spec)
			return nil
		},
	}
	cmd.Flags().Float64Var(&pixelSize, "pixel-size", 0, "pixel size in micrometres")
	cmd.Flags().IntVar(&span, "span", 0, "image extent in pixels")
	cmd.Flags().Float64Var(&fraction, "fraction", 0, "target share of the span (default from config)")
	cmd.MarkFlagRequired("pixel-size")
	cmd.MarkFlagRequired("span")
	return cmd
}

func writeScalebar(w io.Writer, spec scalebar.Spec) {
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
	}
	out := headerStyle.Render("Scalebar "+spec.Label) + "\n"
	out += row("length", strconv.FormatFloat(spec.LengthPx, 'f', 1, 64)+" px")
	out += row("thickness", strconv.FormatFloat(spec.ThicknessPx, 'f', 1, 64)+" px")
	out += row("target", strconv.FormatFloat(spec.TargetFraction*float64(spec.SpanPx), 'f', 1, 64)+" px")
	out += row("pixel size", strconv.FormatFloat(spec.PixelSizeUM, 'g', -1, 64)+" µm")
	fmt.Fprint(w, out)
}
