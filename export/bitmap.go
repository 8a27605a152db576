// Package export converts decoded resources into common interchange formats:
// indexed pixels to BMP images and models to binary glTF.
package export

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
	"golang.org/x/image/bmp"
)

// Grey is the palette used when no palette accompanies a set of pixels.
var Grey = func() color.Palette {
	p := make(color.Palette, qfg5.PaletteSize)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i)}
	}
	return p
}()

// Paletted wraps width*height palette indices in an image. When pal is nil,
// Grey is used.
func Paletted(width, height int, pixels []byte, pal *qfg5.Palette) (*image.Paletted, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("invalid size %dx%d", width, height)
	}
	if err := errors.Expect("pixel count", int64(width)*int64(height), int64(len(pixels))); err != nil {
		return nil, err
	}
	p := Grey
	if pal != nil {
		p = pal.ColorPalette()
	}
	return &image.Paletted{
		Pix:     pixels,
		Stride:  width,
		Rect:    image.Rect(0, 0, width, height),
		Palette: p,
	}, nil
}

// WriteBitmap encodes indexed pixels as an 8-bit BMP image.
func WriteBitmap(w io.Writer, width, height int, pixels []byte, pal *qfg5.Palette) error {
	m, err := Paletted(width, height, pixels, pal)
	if err != nil {
		return err
	}
	return bmp.Encode(w, m)
}
