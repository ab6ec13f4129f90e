package cli

import (
	"fmt"
	"io"
	"math/cmplx"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/cleanplots/cleanplots/internal/fieldio"
	"github.com/cleanplots/cleanplots/pkg/complexcolor"
	"github.com/cleanplots/cleanplots/pkg/plots"
)

func newPreviewCmd() *cobra.Command {
	var (
		height int
		width  int
		phase  bool
	)
	cmd := &cobra.Command{
		Use:   "preview [field.json]",
		Short: "Plot a profile's magnitude in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := fieldio.ReadFile(args[0])
			if err != nil {
				return err
			}
			logFrom(cmd.Context()).Debug("loaded field", "rows", f.Rows, "cols", f.Cols)
			return writePreview(cmd.OutOrStdout(), f, height, width, phase)
		},
	}
	cmd.Flags().IntVar(&height, "height", 10, "plot height in rows")
	cmd.Flags().IntVar(&width, "width", 80, "plot width in columns")
	cmd.Flags().BoolVar(&phase, "phase", false, "also plot the unwrapped phase")
	return cmd
}

// writePreview plots |z| (and optionally the unwrapped phase) of a 1D field.
func writePreview(w io.Writer, f complexcolor.Field, height, width int, withPhase bool) error {
	if f.Dims() != 1 {
		return fmt.Errorf("%w: preview needs one row, got %d", complexcolor.ErrShapeMismatch, f.Rows)
	}
	if f.Len() == 0 {
		return fmt.Errorf("%w: empty profile", complexcolor.ErrShapeMismatch)
	}

	mag := make([]float64, f.Len())
	angles := make([]float64, f.Len())
	for i, z := range f.Data {
		mag[i] = cmplx.Abs(z)
		angles[i] = cmplx.Phase(z)
	}

	graph := asciigraph.Plot(mag,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("magnitude (peak %s)", plots.DecimalTick(f.MaxAbs()))),
	)
	fmt.Fprintln(w, graph)

	if withPhase {
		graph = asciigraph.Plot(plots.Unwrap(angles),
			asciigraph.Height(height),
			asciigraph.Width(width),
			asciigraph.Caption("unwrapped phase (rad)"),
		)
		fmt.Fprintln(w, graph)
	}
	return nil
}
