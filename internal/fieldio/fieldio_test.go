package fieldio

import (
	"bytes"
	"errors"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cleanplots/cleanplots/pkg/complexcolor"
)

func TestDecodeCartesian(t *testing.T) {
	t.Parallel()

	f, err := Decode(strings.NewReader(`{"rows":2,"cols":2,"re":[1,0,0,2],"im":[0,1,-1,0]}`), "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Rows != 2 || f.Cols != 2 {
		t.Fatalf("shape = %dx%d", f.Rows, f.Cols)
	}
	if f.At(0, 1) != 1i || f.At(1, 1) != 2 {
		t.Fatalf("unexpected data %v", f.Data)
	}
}

func TestDecodeProfileAndPolar(t *testing.T) {
	t.Parallel()

	f, err := Decode(strings.NewReader(`{"mag":[1,2,3],"phase":[0,1.5707963267948966,3.141592653589793]}`), "identity")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.Dims() != 1 || f.Len() != 3 {
		t.Fatalf("expected 1D profile of 3, got %dx%d", f.Rows, f.Cols)
	}
	if cmplx.Abs(f.Data[1]-2i) > 1e-12 {
		t.Fatalf("polar sample = %v, want 2i", f.Data[1])
	}

	real1D, err := Decode(strings.NewReader(`{"re":[1,2]}`), "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if real1D.Data[1] != 2 {
		t.Fatalf("real sample = %v", real1D.Data[1])
	}
}

func TestDecodeShapeErrors(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"rows":      `{"rows":2,"cols":2,"re":[1,2,3]}`,
		"im length": `{"re":[1,2],"im":[1]}`,
		"polar":     `{"mag":[1,2],"phase":[1]}`,
		"mixed":     `{"re":[1],"mag":[1],"phase":[0]}`,
		"cols":      `{"cols":3,"re":[1,2]}`,
		"empty":     `{}`,
	}
	for name, body := range tests {
		if _, err := Decode(strings.NewReader(body), ""); !errors.Is(err, complexcolor.ErrShapeMismatch) {
			t.Errorf("%s: err = %v, want ErrShapeMismatch", name, err)
		}
	}
	if _, err := Decode(strings.NewReader(`{`), ""); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected syntax error")
	}
	if _, err := Decode(strings.NewReader(`{}`), "br"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected unsupported encoding error")
	}
}

func TestCompressedRoundTrip(t *testing.T) {
	t.Parallel()

	want, err := complexcolor.NewField(2, 3, []complex128{1, 1i, -1, complex(0.5, 0.5), 0, 3})
	if err != nil {
		t.Fatalf("NewField: %v", err)
	}
	for _, enc := range []string{Identity, Gzip, Zstd} {
		var buf bytes.Buffer
		if err := Encode(&buf, want, enc); err != nil {
			t.Fatalf("Encode(%s): %v", enc, err)
		}
		got, err := Decode(&buf, enc)
		if err != nil {
			t.Fatalf("Decode(%s): %v", enc, err)
		}
		if got.Rows != 2 || got.Cols != 3 {
			t.Fatalf("%s: shape = %dx%d", enc, got.Rows, got.Cols)
		}
		for i := range want.Data {
			if cmplx.Abs(got.Data[i]-want.Data[i]) > 1e-12 {
				t.Fatalf("%s: sample %d = %v, want %v", enc, i, got.Data[i], want.Data[i])
			}
		}
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	f, _ := complexcolor.Profile([]complex128{1, complex(0, math.Pi)})
	path := filepath.Join(t.TempDir(), "profile.json.zst")
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := Encode(out, f, EncodingForPath(path)); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out.Close()

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("samples = %d", got.Len())
	}
}

func TestEncodingForPath(t *testing.T) {
	t.Parallel()

	for path, want := range map[string]string{"a.json": Identity, "a.json.gz": Gzip, "a.ZST": Zstd} {
		if got := EncodingForPath(path); got != want {
			t.Errorf("EncodingForPath(%q) = %q, want %q", path, got, want)
		}
	}
}
