package figure

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	regularOnce sync.Once
	regular     *truetype.Font
)

// Face returns a Go Regular face at the given point size. If the embedded
// font cannot be parsed it falls back to a fixed 7x13 bitmap face.
func Face(size float64) font.Face {
	regularOnce.Do(func() {
		f, err := truetype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		regular = f
	})
	if regular == nil {
		return basicfont.Face7x13
	}
	return truetype.NewFace(regular, &truetype.Options{Size: size, Hinting: font.HintingFull})
}
