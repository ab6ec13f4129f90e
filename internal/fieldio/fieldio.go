// Package fieldio decodes complex fields from their JSON wire form, optionally
// gzip or zstd compressed.
//
// A field is either cartesian
//
//	{"rows": 2, "cols": 2, "re": [...], "im": [...]}
//
// or polar
//
//	{"rows": 2, "cols": 2, "mag": [...], "phase": [...]}
//
// When rows is omitted the field is a one-dimensional profile. A missing
// "im" array means the samples are real.
package fieldio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/cleanplots/cleanplots/pkg/complexcolor"
)

// ErrMalformed indicates a body that is not a well-formed field document.
var ErrMalformed = errors.New("fieldio: malformed field")

// Encoding names accepted by Decode.
const (
	Identity = "identity"
	Gzip     = "gzip"
	Zstd     = "zstd"
)

// Wire is the JSON representation of a field.
type Wire struct {
	Rows  *int      `json:"rows,omitempty"`
	Cols  int       `json:"cols,omitempty"`
	Re    []float64 `json:"re,omitempty"`
	Im    []float64 `json:"im,omitempty"`
	Mag   []float64 `json:"mag,omitempty"`
	Phase []float64 `json:"phase,omitempty"`
}

// Field converts w into a validated field.
func (w Wire) Field() (complexcolor.Field, error) {
	polar := len(w.Mag) > 0 || len(w.Phase) > 0
	if polar && (len(w.Re) > 0 || len(w.Im) > 0) {
		return complexcolor.Field{}, fmt.Errorf("%w: both cartesian and polar samples", complexcolor.ErrShapeMismatch)
	}

	n := len(w.Re)
	if polar {
		n = len(w.Mag)
	}
	rows, cols := 1, n
	if w.Rows != nil {
		rows = *w.Rows
		cols = w.Cols
		if cols == 0 && rows > 0 {
			cols = n / rows
		}
	} else if w.Cols != 0 && w.Cols != n {
		return complexcolor.Field{}, fmt.Errorf("%w: cols %d for %d samples", complexcolor.ErrShapeMismatch, w.Cols, n)
	}

	if polar {
		return complexcolor.FromPolar(rows, cols, w.Mag, w.Phase)
	}
	if w.Im != nil && len(w.Im) != len(w.Re) {
		return complexcolor.Field{}, fmt.Errorf("%w: %d real, %d imaginary parts", complexcolor.ErrShapeMismatch, len(w.Re), len(w.Im))
	}
	data := make([]complex128, n)
	for i, re := range w.Re {
		var im float64
		if w.Im != nil {
			im = w.Im[i]
		}
		data[i] = complex(re, im)
	}
	return complexcolor.NewField(rows, cols, data)
}

// FromField returns the cartesian wire form of f.
func FromField(f complexcolor.Field) Wire {
	rows := f.Rows
	w := Wire{Rows: &rows, Cols: f.Cols, Re: make([]float64, len(f.Data)), Im: make([]float64, len(f.Data))}
	for i, z := range f.Data {
		w.Re[i], w.Im[i] = real(z), imag(z)
	}
	return w
}

// Decode reads one field from r. encoding is a Content-Encoding value; the
// empty string means identity.
func Decode(r io.Reader, encoding string) (complexcolor.Field, error) {
	body, closeFn, err := decompress(r, encoding)
	if err != nil {
		return complexcolor.Field{}, err
	}
	defer closeFn()

	var w Wire
	if err := json.NewDecoder(body).Decode(&w); err != nil {
		return complexcolor.Field{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return w.Field()
}

// ReadFile decodes a field from path. Files ending in .gz or .zst are
// decompressed.
func ReadFile(path string) (complexcolor.Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return complexcolor.Field{}, err
	}
	defer f.Close()
	return Decode(f, EncodingForPath(path))
}

// EncodingForPath infers the compression of a file from its extension.
func EncodingForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	}
	return Identity
}

// Encode writes f to w in the given encoding.
func Encode(w io.Writer, f complexcolor.Field, encoding string) error {
	switch normalize(encoding) {
	case Identity:
		return json.NewEncoder(w).Encode(FromField(f))
	case Gzip:
		zw := gzip.NewWriter(w)
		if err := json.NewEncoder(zw).Encode(FromField(f)); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return err
		}
		if err := json.NewEncoder(zw).Encode(FromField(f)); err != nil {
			zw.Close()
			return err
		}
		return zw.Close()
	}
	return fmt.Errorf("fieldio: unsupported encoding %q", encoding)
}

func normalize(encoding string) string {
	e := strings.ToLower(strings.TrimSpace(encoding))
	if e == "" {
		return Identity
	}
	return e
}

func decompress(r io.Reader, encoding string) (io.Reader, func(), error) {
	switch normalize(encoding) {
	case Identity:
		return r, func() {}, nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: gzip: %v", ErrMalformed, err)
		}
		return zr, func() { zr.Close() }, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: zstd: %v", ErrMalformed, err)
		}
		return zr, zr.Close, nil
	}
	return nil, nil, fmt.Errorf("%w: unsupported encoding %q", ErrMalformed, encoding)
}
