package colormap

import (
	"image/color"
	"math"
	"testing"
)

func TestSeuratColormapEndpoints(t *testing.T) {
	t.Parallel()

	c0, ok := Seurat.At(0).(color.RGBA)
	if !ok {
		t.Fatalf("expected color.RGBA at t=0")
	}
	if c0 != (color.RGBA{R: 211, G: 211, B: 211, A: 255}) {
		t.Fatalf("unexpected Seurat.At(0): %#v", c0)
	}

	c1, ok := Seurat.At(1).(color.RGBA)
	if !ok {
		t.Fatalf("expected color.RGBA at t=1")
	}
	if c1 != (color.RGBA{R: 255, G: 0, B: 0, A: 255}) {
		t.Fatalf("unexpected Seurat.At(1): %#v", c1)
	}
}

func TestInfernoClampsOutOfRange(t *testing.T) {
	t.Parallel()

	if Inferno.At(-3) != Inferno.At(0) {
		t.Fatalf("expected t<0 to clamp to first color")
	}
	if Inferno.At(7) != Inferno.At(1) {
		t.Fatalf("expected t>1 to clamp to last color")
	}
	if got := Inferno.At(0).(color.RGBA); got != (color.RGBA{0, 0, 4, 255}) {
		t.Fatalf("unexpected Inferno.At(0): %#v", got)
	}
}

func TestCyclicWrapsWithoutSeam(t *testing.T) {
	t.Parallel()

	for _, cm := range []CyclicColormap{Phase, PhaseR} {
		a, b := cm.Eval(0), cm.Eval(1)
		if a.DistanceRgb(b) > 1e-12 {
			t.Fatalf("expected t=0 and t=1 to match, got %v vs %v", a, b)
		}
		// Approaching the seam from below must converge on the first anchor.
		near := cm.Eval(1 - 1e-9)
		if near.DistanceRgb(a) > 1e-6 {
			t.Fatalf("discontinuity at wrap point: %v vs %v", near, a)
		}
		for _, x := range []float64{0.1, 0.37, 0.8} {
			if cm.Eval(x).DistanceRgb(cm.Eval(x+1)) > 1e-12 {
				t.Fatalf("expected Eval(%v) == Eval(%v)", x, x+1)
			}
			if cm.Eval(x).DistanceRgb(cm.Eval(x-2)) > 1e-12 {
				t.Fatalf("expected Eval(%v) == Eval(%v)", x, x-2)
			}
		}
	}
}

func TestReversedMirrorsPositions(t *testing.T) {
	t.Parallel()

	for _, x := range []float64{0, 0.05, 0.25, 0.5, 0.73, 0.99} {
		got := PhaseR.Eval(x)
		want := Phase.Eval(1 - x)
		if got.DistanceRgb(want) > 1e-9 {
			t.Errorf("PhaseR.Eval(%v)=%v, want %v", x, got, want)
		}
	}
}

func TestCyclicInvertRoundTrip(t *testing.T) {
	t.Parallel()

	const n = 256
	for i := 0; i < n; i++ {
		want := float64(i) / n
		got := PhaseR.Invert(PhaseR.Eval(want))
		diff := math.Abs(got - want)
		if diff > 0.5 {
			diff = 1 - diff
		}
		if diff > 1.0/invertSamples {
			t.Fatalf("Invert(Eval(%v)) = %v", want, got)
		}
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	if _, ok := Lookup("inferno"); !ok {
		t.Fatalf("expected inferno to be registered")
	}
	if _, ok := Lookup("jet"); ok {
		t.Fatalf("did not expect jet to be registered")
	}
	if _, ok := LookupCyclic("phase_r"); !ok {
		t.Fatalf("expected phase_r to be cyclic")
	}
	if _, ok := LookupCyclic("viridis"); ok {
		t.Fatalf("viridis is not cyclic")
	}

	names := Names()
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}

func TestAtIndexWraps(t *testing.T) {
	t.Parallel()

	if Categorical.AtIndex(10) != Categorical.AtIndex(0) {
		t.Fatalf("expected index 10 to wrap to 0")
	}
	if Categorical.AtIndex(-1) != Categorical.AtIndex(9) {
		t.Fatalf("expected index -1 to wrap to 9")
	}
}
