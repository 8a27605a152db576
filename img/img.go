// Package img decodes IMG raster images and ZZZ background images.
//
// Both hold pixel indices compressed with the rle codec. An IMG file starts
// with a 64-byte header that declares its dimensions. A ZZZ file has no
// header; it has the dimensions of the IMG image it accompanies.
package img

import (
	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/internal/cursor"
	"github.com/qfg5tools/qfg5/rle"
)

const (
	widthOffset  = 32
	heightOffset = 36
	dataOffset   = 64
)

// Image is an indexed-color image. Pixels holds Width*Height palette
// indices in row-major order.
type Image struct {
	Width  int
	Height int
	Pixels []byte
}

// At returns the palette index at x, y.
func (m *Image) At(x, y int) byte {
	return m.Pixels[y*m.Width+x]
}

// Decode decodes an IMG image.
func Decode(b []byte) (*Image, error) {
	r := cursor.New(b)
	if r.Need(dataOffset) {
		return nil, r.Err()
	}
	var width, height uint16
	r.Seek(widthOffset)
	r.Number(&width)
	r.Seek(heightOffset)
	r.Number(&height)
	if r.Seek(dataOffset) {
		return nil, r.Err()
	}
	m := &Image{Width: int(width), Height: int(height)}
	m.Pixels = rle.DecodeSize(r.Remaining(), m.Width*m.Height)
	return m, nil
}

// DecodeBackground decodes a ZZZ background image. The image takes the
// dimensions of companion.
func DecodeBackground(b []byte, companion *Image) (*Image, error) {
	if companion == nil {
		return nil, errors.New("nil companion image")
	}
	m := &Image{
		Width:  companion.Width,
		Height: companion.Height,
	}
	m.Pixels = rle.DecodeSize(b, m.Width*m.Height)
	return m, nil
}

// Format implements qfg5.Format for IMG images.
type Format struct{}

func (Format) Name() string {
	return "img"
}

func (Format) Decode(b []byte) (v interface{}, warn, err error) {
	m, err := Decode(b)
	if err != nil {
		return nil, nil, err
	}
	return m, nil, nil
}

func init() {
	qfg5.RegisterFormat(Format{})
}
