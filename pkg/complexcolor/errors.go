package complexcolor

import "errors"

// Domain errors for encoding operations.
var (
	// ErrShapeMismatch indicates field dimensions that disagree with the data
	// or with the flags a caller passed alongside the field.
	ErrShapeMismatch = errors.New("complexcolor: shape mismatch")

	// ErrInvalidWindow indicates a contrast window outside its valid range.
	ErrInvalidWindow = errors.New("complexcolor: invalid contrast window")
)
