// Package qgf decodes QGF bitmap fonts.
package qgf

import (
	"fmt"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/internal/cursor"
)

// GlyphCount is the number of glyph slots in every font.
const GlyphCount = 512

const maxSkip = 128

// Glyph is a single character. Pixels holds Width*Font.Height values in
// row-major order; zero is background.
type Glyph struct {
	Width  int
	Pixels []byte
}

// Font is a decoded QGF font.
type Font struct {
	MaxWidth int
	Height   int
	Spacing  int
	// Is3D indicates that pixel values are shading levels rather than
	// palette indices.
	Is3D   bool
	Glyphs [GlyphCount]Glyph
}

type header struct {
	MaxWidth uint32
	Height   uint32
	Spacing  uint32
	_        uint32
	Flag3D   uint32
	_        uint32
}

// Decode decodes a QGF font.
func Decode(b []byte) (*Font, error) {
	r := cursor.New(b)
	var h header
	var widths [GlyphCount]uint8
	var offsets [GlyphCount]uint32
	r.Number(&h)
	r.Number(&widths)
	r.Number(&offsets)
	if err := r.Err(); err != nil {
		return nil, err
	}

	f := &Font{
		MaxWidth: int(h.MaxWidth),
		Height:   int(h.Height),
		Spacing:  int(h.Spacing),
		Is3D:     h.Flag3D != 0,
	}
	for i := range f.Glyphs {
		g := &f.Glyphs[i]
		g.Width = int(widths[i])
		size := int64(g.Width) * int64(h.Height)
		if size == 0 {
			g.Pixels = []byte{}
			continue
		}
		if r.Seek(int64(offsets[i])) || r.Need(minGlyphBytes(size)) {
			return nil, fmt.Errorf("glyph %d: %w", i, r.Err())
		}
		g.Pixels = make([]byte, size)
		if readGlyph(r, g.Pixels) {
			return nil, fmt.Errorf("glyph %d: %w", i, r.Err())
		}
	}
	return f, nil
}

// minGlyphBytes returns the least number of bytes that can encode size
// pixels. One pair covers at most maxSkip pixels.
func minGlyphBytes(size int64) int64 {
	return (size + maxSkip - 1) / maxSkip * 2
}

// readGlyph decodes pairs of bytes until pixels is filled. A pair whose first
// byte has the high bit clear is a pixel value. Otherwise it skips
// 128-(first&0x7f) background pixels. The second byte is unused.
func readGlyph(r *cursor.Reader, pixels []byte) (failed bool) {
	var pair [2]byte
	for n := 0; n < len(pixels); {
		if r.Bytes(pair[:]) {
			return true
		}
		if pair[0]&0x80 == 0 {
			pixels[n] = pair[0]
			n++
		} else {
			n += maxSkip - int(pair[0]&0x7f)
		}
	}
	return false
}

// Format implements qfg5.Format for QGF fonts.
type Format struct{}

func (Format) Name() string {
	return "qgf"
}

func (Format) Decode(b []byte) (v interface{}, warn, err error) {
	f, err := Decode(b)
	if err != nil {
		return nil, nil, err
	}
	return f, nil, nil
}

func init() {
	qfg5.RegisterFormat(Format{})
}
