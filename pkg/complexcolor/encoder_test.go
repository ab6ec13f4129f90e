package complexcolor

import (
	"errors"
	"math"
	"math/bits"
	"math/cmplx"
	"testing"
)

func colorsClose(a, b Color, tol float64) bool {
	return math.Abs(a.R-b.R) <= tol &&
		math.Abs(a.G-b.G) <= tol &&
		math.Abs(a.B-b.B) <= tol &&
		math.Abs(a.A-b.A) <= tol
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	if d > math.Pi {
		d = 2*math.Pi - d
	}
	return d
}

func TestPhaseIsCyclic(t *testing.T) {
	t.Parallel()

	enc := NewEncoder()
	for _, mode := range []Mode{Opaque, Blended} {
		for i := 0; i < 64; i++ {
			theta := -math.Pi + 2*math.Pi*float64(i)/64
			a := enc.Polar(0.7, theta, 1, 0.1, mode)
			b := enc.Polar(0.7, theta+2*math.Pi, 1, 0.1, mode)
			if !colorsClose(a, b, 1e-9) {
				t.Fatalf("%s: theta=%v: %v != %v", mode, theta, a, b)
			}
			za := enc.Sample(cmplx.Rect(0.7, theta), 1, 0.1, mode)
			zb := enc.Sample(cmplx.Rect(0.7, theta+2*math.Pi), 1, 0.1, mode)
			if !colorsClose(za, zb, 1e-9) {
				t.Fatalf("%s: sample theta=%v: %v != %v", mode, theta, za, zb)
			}
		}
	}
}

func TestZeroAmplitudeIgnoresPhase(t *testing.T) {
	t.Parallel()

	enc := NewEncoder()
	f, err := NewField(1, 3, []complex128{0, 2, complex(0, 0)})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}

	opaque, err := enc.Encode(f, DefaultWindow(), Opaque)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if opaque[0] != (Color{A: 1}) || opaque[2] != (Color{A: 1}) {
		t.Fatalf("expected true black for zero amplitude, got %v %v", opaque[0], opaque[2])
	}

	blended, err := enc.Encode(f, DefaultWindow(), Blended)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if blended[0].A != 0 || blended[2].A != 0 {
		t.Fatalf("expected transparent zero amplitude, got %v %v", blended[0], blended[2])
	}

	for i := 0; i < 16; i++ {
		theta := float64(i) * 0.4
		if c := enc.Polar(0, theta, 1, 0.5, Opaque); c != (Color{A: 1}) {
			t.Fatalf("phase %v leaked into zero amplitude: %v", theta, c)
		}
	}
}

func TestAllZeroFieldIsDegenerateNotError(t *testing.T) {
	t.Parallel()

	f, err := NewField(2, 2, make([]complex128, 4))
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	out, err := NewEncoder().Encode(f, DefaultWindow(), Blended)
	if err != nil {
		t.Fatalf("expected no error for all-zero field, got %v", err)
	}
	for i, c := range out {
		if c != (Color{}) {
			t.Fatalf("element %d: expected transparent, got %v", i, c)
		}
		if math.IsNaN(c.R) || math.IsNaN(c.A) {
			t.Fatalf("element %d: NaN in %v", i, c)
		}
	}
}

func TestIntensityReachesOneAtReference(t *testing.T) {
	t.Parallel()

	for _, floor := range []float64{0, 0.1, 0.3, 0.7, 0.99} {
		if got := Intensity(3.3, 3.3, floor); got != 1 {
			t.Fatalf("floor %v: Intensity at reference = %v, want 1", floor, got)
		}
		prev := -1.0
		for i := 0; i <= 100; i++ {
			a := 3.3 * float64(i) / 100
			v := Intensity(a, 3.3, floor)
			if v < prev {
				t.Fatalf("floor %v: intensity decreased at %v (%v < %v)", floor, a, v, prev)
			}
			if v < 0 || v > 1 {
				t.Fatalf("floor %v: intensity %v out of range", floor, v)
			}
			prev = v
		}
	}

	if got := Intensity(1e-12, 1, 0.25); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("expected faint signal near the floor, got %v", got)
	}
	if got := Intensity(5, 0, 0.25); got != 0 {
		t.Fatalf("expected zero reference to yield 0, got %v", got)
	}
}

func TestEncodeUsesFieldMaxWhenNoReference(t *testing.T) {
	t.Parallel()

	enc := NewEncoder()
	f, _ := NewField(1, 2, []complex128{complex(4, 0), complex(2, 0)})
	out, err := enc.Encode(f, Window{MinVisible: 0}, Blended)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if out[0].A != 1 {
		t.Fatalf("expected full alpha at max, got %v", out[0].A)
	}
	if math.Abs(out[1].A-0.5) > 1e-12 {
		t.Fatalf("expected alpha 0.5, got %v", out[1].A)
	}

	out, err = enc.Encode(f, Window{MinVisible: 0, ReferenceMax: 8}, Blended)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if math.Abs(out[0].A-0.5) > 1e-12 {
		t.Fatalf("expected explicit reference to be honoured, got %v", out[0].A)
	}
}

func TestOpaqueScalesBlendedCarriesAlpha(t *testing.T) {
	t.Parallel()

	enc := NewEncoder()
	full := enc.Polar(1, 0.4, 1, 0, Blended)
	half := enc.Polar(0.5, 0.4, 1, 0, Opaque)
	if math.Abs(half.R-full.R*0.5) > 1e-12 || math.Abs(half.G-full.G*0.5) > 1e-12 || half.A != 1 {
		t.Fatalf("opaque mode should scale RGB: full=%v half=%v", full, half)
	}
	alpha := enc.Polar(0.5, 0.4, 1, 0, Blended)
	if alpha.R != full.R || alpha.A != 0.5 {
		t.Fatalf("blended mode should keep RGB and carry alpha: %v", alpha)
	}
}

func TestDecodePhaseRoundTrip(t *testing.T) {
	t.Parallel()

	enc := NewEncoder()
	const n = 256
	for i := 0; i < n; i++ {
		theta := -math.Pi + 2*math.Pi*float64(i)/n
		c := enc.Sample(cmplx.Rect(1, theta), 1, DefaultMinVisible, Opaque)
		got := enc.DecodePhase(c)
		if d := angleDiff(got, theta); d > 2*math.Pi/n {
			t.Fatalf("theta=%v decoded as %v (diff %v)", theta, got, d)
		}
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	t.Parallel()

	enc := NewEncoder()
	if _, err := enc.Encode(Field{Rows: 2, Cols: 2, Data: make([]complex128, 3)}, DefaultWindow(), Opaque); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}

	f, _ := Profile([]complex128{1, 2})
	for _, w := range []Window{{MinVisible: 1}, {MinVisible: -0.1}, {MinVisible: math.NaN()}, {ReferenceMax: -1}} {
		if _, err := enc.Encode(f, w, Opaque); !errors.Is(err, ErrInvalidWindow) {
			t.Fatalf("window %+v: expected ErrInvalidWindow, got %v", w, err)
		}
	}
}

func TestNewFieldValidatesShape(t *testing.T) {
	t.Parallel()

	if _, err := NewField(0, 3, nil); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for zero rows, got %v", err)
	}
	if _, err := NewField(2, 3, make([]complex128, 5)); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for short data, got %v", err)
	}
	// huge*huge wraps to zero on every word size.
	huge := 1 << (bits.UintSize / 2)
	if _, err := NewField(huge, huge, nil); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for dimensions whose product wraps, got %v", err)
	}
	if _, err := NewEncoder().EncodeImage(Field{Rows: huge, Cols: huge}, DefaultWindow(), Opaque); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected EncodeImage to reject a wrapped shape, got %v", err)
	}
	if _, err := FromPolar(1, 2, []float64{1, 2}, []float64{0}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for unequal polar slices, got %v", err)
	}

	f, err := NewField(2, 3, []complex128{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	if f.At(1, 0) != 4 || f.Dims() != 2 || f.MaxAbs() != 6 {
		t.Fatalf("unexpected field accessors: %v %d %v", f.At(1, 0), f.Dims(), f.MaxAbs())
	}
}

func TestEncodeImageShape(t *testing.T) {
	t.Parallel()

	f, _ := NewField(2, 3, []complex128{1, 0, 1i, -1, 0, 2})
	img, err := NewEncoder().EncodeImage(f, DefaultWindow(), Opaque)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if c := img.NRGBAAt(1, 0); c.R != 0 || c.G != 0 || c.B != 0 || c.A != 255 {
		t.Fatalf("expected black at zero sample, got %v", c)
	}
}
