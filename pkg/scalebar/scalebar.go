// Package scalebar picks a round physical length for an image scalebar.
package scalebar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	// DefaultFraction is the share of the image span a bar aims to cover.
	DefaultFraction = 0.3
	// ThicknessRatio is the bar thickness relative to its length.
	ThicknessRatio = 0.175
)

// ErrInvalidInput indicates a non-positive or non-finite scale, span or
// fraction.
var ErrInvalidInput = errors.New("scalebar: invalid input")

// Spec describes a scalebar for one render call.
type Spec struct {
	PixelSizeUM    float64 `json:"pixel_size_um"`
	SpanPx         int     `json:"span_px"`
	TargetFraction float64 `json:"target_fraction"`

	LengthUM    float64 `json:"length_um"`
	LengthPx    float64 `json:"length_px"`
	ThicknessPx float64 `json:"thickness_px"`
	Label       string  `json:"label"`
}

// Infer chooses a bar length near spanPx*targetFraction pixels, rounded to a
// single significant digit in micrometres.
func Infer(pixelSizeUM float64, spanPx int, targetFraction float64) (Spec, error) {
	if !(pixelSizeUM > 0) || math.IsInf(pixelSizeUM, 0) {
		return Spec{}, fmt.Errorf("%w: pixel size %v", ErrInvalidInput, pixelSizeUM)
	}
	if spanPx <= 0 {
		return Spec{}, fmt.Errorf("%w: image span %d px", ErrInvalidInput, spanPx)
	}
	if !(targetFraction > 0 && targetFraction < 1) {
		return Spec{}, fmt.Errorf("%w: target fraction %v not in (0,1)", ErrInvalidInput, targetFraction)
	}

	desired := float64(spanPx) * targetFraction * pixelSizeUM
	length := Round(desired)
	if !(length > 0) || math.IsInf(length, 0) {
		return Spec{}, fmt.Errorf("%w: no representable length for %v um", ErrInvalidInput, desired)
	}

	lengthPx := length / pixelSizeUM
	return Spec{
		PixelSizeUM:    pixelSizeUM,
		SpanPx:         spanPx,
		TargetFraction: targetFraction,
		LengthUM:       length,
		LengthPx:       lengthPx,
		ThicknessPx:    ThicknessRatio * lengthPx,
		Label:          FormatLength(length),
	}, nil
}

// Round rounds v to the nearest multiple of its leading power of ten, with
// ties going to the even multiple (150 -> 200, 250 -> 200, 37 -> 40).
func Round(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	mag := math.Floor(math.Log10(v))
	// Negative exponents divide instead of multiplying so 0.3 stays 0.3.
	if mag >= 0 {
		p := math.Pow10(int(mag))
		return math.RoundToEven(v/p) * p
	}
	p := math.Pow10(int(-mag))
	return math.RoundToEven(v*p) / p
}

// FormatLength renders a length in micrometres for the bar label.
func FormatLength(um float64) string {
	return strconv.FormatFloat(um, 'g', -1, 64) + " µm"
}
