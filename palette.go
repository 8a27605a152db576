package qfg5

import (
	"encoding/binary"
	"fmt"
	"image/color"

	"github.com/qfg5tools/qfg5/errors"
)

// PaletteSize is the number of entries in a palette.
const PaletteSize = 256

// Color is an entry of a palette, with 8 bits per channel.
type Color struct {
	R, G, B uint8
}

// RGBA implements color.Color. Palette colors are always opaque.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Palette maps pixel indices to colors. Decoded images hold indices only; the
// palette is always supplied separately.
type Palette [PaletteSize]Color

// ColorPalette returns p as a color.Palette, suitable for image.Paletted.
func (p *Palette) ColorPalette() color.Palette {
	cp := make(color.Palette, len(p))
	for i, c := range p {
		cp[i] = c
	}
	return cp
}

// RGB555 expands a packed 15-bit color. Bits 10-14 hold red, 5-9 green and
// 0-4 blue. Each channel is scaled by 255/31 and truncated.
func RGB555(v uint16) Color {
	return Color{
		R: expand5(v >> 10),
		G: expand5(v >> 5),
		B: expand5(v),
	}
}

func expand5(v uint16) uint8 {
	return uint8(float32(255.0/31.0) * float32(v&31))
}

// PaletteFromRGB555 expands 256 little-endian packed 15-bit colors.
func PaletteFromRGB555(b []byte) (p Palette, err error) {
	if len(b) < PaletteSize*2 {
		return p, errors.FieldError{
			Kind:     errors.ErrTruncated,
			Field:    "rgb555 palette",
			Expected: PaletteSize * 2,
			Actual:   len(b),
		}
	}
	for i := range p {
		p[i] = RGB555(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return p, nil
}
