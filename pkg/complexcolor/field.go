package complexcolor

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Field is a row-major grid of complex samples. A one-dimensional profile is
// a field with a single row.
type Field struct {
	Rows int
	Cols int
	Data []complex128
}

// NewField wraps data as a rows×cols field.
func NewField(rows, cols int, data []complex128) (Field, error) {
	if rows <= 0 || cols <= 0 {
		return Field{}, fmt.Errorf("%w: dimensions %dx%d", ErrShapeMismatch, rows, cols)
	}
	if !holds(rows, cols, len(data)) {
		return Field{}, fmt.Errorf("%w: %d samples for %dx%d field", ErrShapeMismatch, len(data), rows, cols)
	}
	return Field{Rows: rows, Cols: cols, Data: data}, nil
}

// holds reports whether n samples fill exactly rows×cols. It divides rather
// than multiplies so huge dimensions cannot wrap around.
func holds(rows, cols, n int) bool {
	return rows > 0 && cols > 0 && n%cols == 0 && n/cols == rows
}

// Profile wraps a one-dimensional sequence of samples as a single-row field.
func Profile(data []complex128) (Field, error) {
	return NewField(1, len(data), data)
}

// FromPolar builds a field from matching magnitude and phase grids.
func FromPolar(rows, cols int, mag, phase []float64) (Field, error) {
	if len(mag) != len(phase) {
		return Field{}, fmt.Errorf("%w: %d magnitudes, %d phases", ErrShapeMismatch, len(mag), len(phase))
	}
	data := make([]complex128, len(mag))
	for i := range mag {
		data[i] = cmplx.Rect(mag[i], phase[i])
	}
	return NewField(rows, cols, data)
}

// Dims reports 1 for single-row fields and 2 otherwise.
func (f Field) Dims() int {
	if f.Rows == 1 {
		return 1
	}
	return 2
}

// At returns the sample at row r, column c.
func (f Field) At(r, c int) complex128 {
	return f.Data[r*f.Cols+c]
}

// Len returns the number of samples.
func (f Field) Len() int {
	return len(f.Data)
}

// MaxAbs returns the largest magnitude in the field, or 0 for an empty field.
func (f Field) MaxAbs() float64 {
	var m float64
	for _, z := range f.Data {
		if a := cmplx.Abs(z); a > m {
			m = a
		}
	}
	return m
}

// validate reports a field whose header disagrees with its data.
func (f Field) validate() error {
	if !holds(f.Rows, f.Cols, len(f.Data)) {
		return fmt.Errorf("%w: %d samples for %dx%d field", ErrShapeMismatch, len(f.Data), f.Rows, f.Cols)
	}
	for _, z := range f.Data {
		if cmplx.IsNaN(z) || cmplx.IsInf(z) {
			return fmt.Errorf("%w: non-finite sample %v", ErrShapeMismatch, z)
		}
	}
	return nil
}

// Window is the affine contrast map from amplitude to intensity.
type Window struct {
	// MinVisible is the intensity given to the faintest non-zero signal.
	MinVisible float64
	// ReferenceMax is the amplitude mapped to full intensity. Zero selects
	// the field maximum.
	ReferenceMax float64
}

// DefaultMinVisible is the contrast floor used when none is configured.
const DefaultMinVisible = 0.1

// DefaultWindow returns a window with the default floor and a field-derived
// reference.
func DefaultWindow() Window {
	return Window{MinVisible: DefaultMinVisible}
}

// Validate checks the window ranges.
func (w Window) Validate() error {
	if math.IsNaN(w.MinVisible) || w.MinVisible < 0 || w.MinVisible >= 1 {
		return fmt.Errorf("%w: min visible fraction %v not in [0,1)", ErrInvalidWindow, w.MinVisible)
	}
	if math.IsNaN(w.ReferenceMax) || math.IsInf(w.ReferenceMax, 0) || w.ReferenceMax < 0 {
		return fmt.Errorf("%w: reference max %v", ErrInvalidWindow, w.ReferenceMax)
	}
	return nil
}

// Intensity maps an amplitude onto [floor, 1]. Zero amplitude, or a zero
// reference, is "no signal" and maps to 0 rather than to the floor.
func Intensity(amplitude, reference, floor float64) float64 {
	if amplitude <= 0 || reference <= 0 {
		return 0
	}
	if amplitude >= reference {
		return 1
	}
	v := floor + (1-floor)*(amplitude/reference)
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
