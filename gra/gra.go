// Package gra decodes GRA sprite atlases.
//
// A GRA file holds an RGB555 palette and a list of sprite collections. Each
// collection is a sequence of frames of the same size, stored either raw or
// compressed with the rle codec, depending on the file's colour mode.
package gra

import (
	"fmt"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/internal/cursor"
	"github.com/qfg5tools/qfg5/rle"
)

// ColorMode indicates how the frames of a file are stored.
type ColorMode uint32

const (
	ModeRaw ColorMode = 0 // Frames are stored uncompressed.
	ModeRLE ColorMode = 2 // Frames are compressed with the rle codec.
)

// maxFrameSize bounds the pixel count of a single frame.
const maxFrameSize = 1 << 26

// Sprite is one frame of a collection. Pixels holds palette indices in
// row-major order.
type Sprite struct {
	Pixels []byte
}

// Collection is a sequence of frames sharing a position and size.
type Collection struct {
	X, Y          uint32
	Width, Height uint32
	// FrameDelay is the delay between frames.
	FrameDelay uint32
	// Flags is not interpreted.
	Flags   uint32
	Sprites []Sprite
}

// Atlas is a decoded GRA file.
type Atlas struct {
	Mode        ColorMode
	Palette     qfg5.Palette
	Collections []Collection
}

// Decode decodes a GRA file.
func Decode(b []byte) (*Atlas, error) {
	a := &Atlas{}
	r := cursor.New(b)

	var count uint32
	r.Number(&a.Mode)
	r.Number(&count)
	var raw [qfg5.PaletteSize * 2]byte
	if r.Bytes(raw[:]) {
		return nil, r.Err()
	}
	pal, err := qfg5.PaletteFromRGB555(raw[:])
	if r.Check(err) {
		return nil, r.Err()
	}
	a.Palette = pal
	if a.Mode != ModeRaw && a.Mode != ModeRLE {
		r.Check(errors.FieldError{Kind: errors.ErrUnsupported, Field: "colour mode", Actual: uint32(a.Mode)})
		return nil, r.Err()
	}

	if r.Need(4 * int64(count)) {
		return nil, r.Err()
	}
	offsets := make([]uint32, count)
	if r.Number(offsets) {
		return nil, r.Err()
	}

	a.Collections = make([]Collection, 0, count)
	for i, off := range offsets {
		c, failed := readCollection(r, int64(off), a.Mode)
		if failed {
			return nil, fmt.Errorf("collection %d: %w", i, r.Err())
		}
		a.Collections = append(a.Collections, c)
	}
	return a, nil
}

func readCollection(r *cursor.Reader, base int64, mode ColorMode) (c Collection, failed bool) {
	var count uint32
	r.Seek(base)
	r.Number(&c.X)
	r.Number(&c.Y)
	r.Number(&c.Width)
	r.Number(&c.Height)
	r.Number(&count)
	r.Number(&c.FrameDelay)
	r.Number(&c.Flags)
	if r.Err() != nil {
		return c, true
	}
	if r.Need(4 * int64(count)) {
		return c, true
	}
	frames := make([]uint32, count)
	if r.Number(frames) {
		return c, true
	}

	size := int64(c.Width) * int64(c.Height)
	if size > maxFrameSize {
		r.Check(errors.FieldError{Kind: errors.ErrUnsupported, Field: "frame size", Expected: int64(maxFrameSize), Actual: size})
		return c, true
	}
	c.Sprites = make([]Sprite, 0, count)
	for _, off := range frames {
		if r.Seek(base + int64(off)) {
			return c, true
		}
		pixels := make([]byte, size)
		switch mode {
		case ModeRaw:
			if r.Bytes(pixels) {
				return c, true
			}
		case ModeRLE:
			rle.Decode(pixels, r.Remaining())
		}
		c.Sprites = append(c.Sprites, Sprite{Pixels: pixels})
	}
	return c, false
}

// Format implements qfg5.Format for GRA files.
type Format struct{}

func (Format) Name() string {
	return "gra"
}

func (Format) Decode(b []byte) (v interface{}, warn, err error) {
	a, err := Decode(b)
	if err != nil {
		return nil, nil, err
	}
	return a, nil, nil
}

func init() {
	qfg5.RegisterFormat(Format{})
}
