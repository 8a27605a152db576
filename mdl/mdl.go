// Package mdl decodes MDL mesh models.
//
// A model consists of a palette, a number of submeshes, and a number of
// texture atlases ("subbitmaps") whose pixels index the palette. The format
// stores redundant offsets and sizes next to each table; these are verified
// against the counts, since the format has no other way to detect
// corruption.
package mdl

import (
	"fmt"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/internal/cursor"
)

const (
	headerSkip    = 0xc
	paletteSkip   = 0xf
	nameSize      = 16
	unknownFloats = 20

	// vertexListAddr is the offset of the vertex list relative to the start
	// of a submesh.
	vertexListAddr = 0x7c

	vertexSize   = 12
	texCoordSize = 8
	faceSize     = 40
	lightingSize = 16

	// maxPow2 bounds the size exponents of a subbitmap.
	maxPow2 = 16
)

// PaletteSize is the size of the raw palette of a model.
const PaletteSize = 1019

type Vertex struct {
	X, Y, Z float32
}

type TexCoord struct {
	U, V float32
}

// Face is a triangle. Indices refer to the vertices and texture coordinates of
// the owning submesh, and to the subbitmaps of the model. They are not
// validated by the decoder.
type Face struct {
	Vertices  [3]uint32
	TexCoords [3]uint32
	SubBitmap uint32
	Normal    [3]float32
}

// Lighting holds the lighting coefficients of a vertex.
type Lighting struct {
	A, B, C, D float32
}

// SubMesh is a named part of a model. Vertices and Lighting always have the
// same length; Lighting[i] belongs to Vertices[i].
type SubMesh struct {
	Name string
	// Unknown holds fields of the submesh header that are not interpreted.
	Unknown   [unknownFloats]float32
	Vertices  []Vertex
	TexCoords []TexCoord
	Faces     []Face
	Lighting  []Lighting
}

// SubBitmap is a texture atlas. Width and Height are powers of two. Pixels
// holds Width*Height indices into the model's palette.
type SubBitmap struct {
	Width  int
	Height int
	Pixels []byte
}

// Model is a decoded MDL file.
type Model struct {
	Name string
	// Palette is kept as stored; its layout is specific to the format.
	Palette    [PaletteSize]byte
	SubMeshes  []SubMesh
	SubBitmaps []SubBitmap
}

// Decode decodes an MDL file. The returned warning notes data that was
// skipped.
func Decode(b []byte) (m *Model, warn, err error) {
	m = &Model{}
	r := cursor.New(b)

	var count uint16
	var atlasOffset uint32
	r.Skip(headerSkip)
	r.String(nameSize, "model name", &m.Name)
	r.Number(&count)
	r.Skip(paletteSkip)
	r.Bytes(m.Palette[:])
	r.Number(&atlasOffset)
	offsets := make([]uint32, count)
	if r.Number(offsets) {
		return nil, nil, r.Err()
	}

	m.SubMeshes = make([]SubMesh, 0, count)
	for i, off := range offsets {
		sm, failed := readSubMesh(r, int64(off))
		if failed {
			return nil, nil, fmt.Errorf("submesh %d: %w", i, r.Err())
		}
		m.SubMeshes = append(m.SubMeshes, sm)
	}

	r.Seek(int64(atlasOffset))
	var warns errors.Errors
	m.SubBitmaps, warns = readSubBitmaps(r)
	if err := r.Err(); err != nil {
		return nil, warns.Return(), fmt.Errorf("subbitmaps: %w", err)
	}
	return m, warns.Return(), nil
}

func readSubMesh(r *cursor.Reader, base int64) (sm SubMesh, failed bool) {
	var numVertices, numTexCoords, numFaces uint32
	var vlist, r1, r2, r3 uint32
	r.Seek(base)
	r.String(nameSize, "submesh name", &sm.Name)
	r.Number(&sm.Unknown)
	r.Number(&numVertices)
	r.Number(&numTexCoords)
	r.Number(&numFaces)
	r.Number(&vlist)
	r.Expect("vlist_addr", vertexListAddr, int64(vlist))
	r.Number(&r1)
	r.Expect("r1", int64(vlist)+vertexSize*int64(numVertices), int64(r1))
	r.Number(&r2)
	r.Expect("r2", int64(r1)+texCoordSize*int64(numTexCoords), int64(r2))
	r.Number(&r3)
	r.Expect("r3", int64(r2)+faceSize*int64(numFaces), int64(r3))
	if r.Need(int64(r3) - vertexListAddr + lightingSize*int64(numVertices)) {
		return sm, true
	}

	sm.Vertices = make([]Vertex, numVertices)
	sm.TexCoords = make([]TexCoord, numTexCoords)
	sm.Faces = make([]Face, numFaces)
	sm.Lighting = make([]Lighting, numVertices)
	r.Number(sm.Vertices)
	r.Number(sm.TexCoords)
	r.Number(sm.Faces)
	r.Number(sm.Lighting)
	return sm, r.Err() != nil
}

func readSubBitmaps(r *cursor.Reader) (bitmaps []SubBitmap, warns errors.Errors) {
	var count uint32
	if r.Number(&count) {
		return nil, nil
	}
	if count&3 != 0 {
		r.Check(errors.FieldError{Kind: errors.ErrCrossCheck, Field: "subbitmap count", Expected: "multiple of 4", Actual: count})
		return nil, nil
	}
	count /= 4
	if count > 1 {
		// Only the metadata of the first subbitmap is understood; the
		// entries of the others are skipped.
		warns = append(warns, fmt.Errorf("model has %d subbitmaps; skipped %d bytes of subbitmap metadata", count, (count-1)*4))
		if r.Skip(int64(count-1) * 4) {
			return nil, warns
		}
	}

	bitmaps = make([]SubBitmap, 0, count)
	for i := 0; i < int(count); i++ {
		var hdr struct {
			Width, Height             float32
			WidthPow2, HeightPow2     uint32
			WidthMinus1, HeightMinus1 uint32
		}
		if r.Number(&hdr) {
			return nil, warns
		}
		if hdr.WidthPow2 > maxPow2 || hdr.HeightPow2 > maxPow2 {
			r.Check(errors.FieldError{
				Kind:     errors.ErrUnsupported,
				Field:    fmt.Sprintf("subbitmap %d size exponent", i),
				Expected: int64(maxPow2),
				Actual:   max(hdr.WidthPow2, hdr.HeightPow2),
			})
			return nil, warns
		}
		width, height := int64(hdr.Width), int64(hdr.Height)
		r.Expect(fmt.Sprintf("subbitmap %d width", i), int64(hdr.WidthMinus1)+1, width)
		r.Expect(fmt.Sprintf("subbitmap %d height", i), int64(hdr.HeightMinus1)+1, height)
		r.Expect(fmt.Sprintf("subbitmap %d width power of two", i), int64(1)<<hdr.WidthPow2, width)
		r.Expect(fmt.Sprintf("subbitmap %d height power of two", i), int64(1)<<hdr.HeightPow2, height)
		if r.Need(width * height) {
			return nil, warns
		}
		bm := SubBitmap{Width: int(width), Height: int(height)}
		bm.Pixels = make([]byte, width*height)
		if r.Bytes(bm.Pixels) {
			return nil, warns
		}
		bitmaps = append(bitmaps, bm)
	}
	return bitmaps, warns
}

// Format implements qfg5.Format for MDL files.
type Format struct{}

func (Format) Name() string {
	return "mdl"
}

func (Format) Decode(b []byte) (v interface{}, warn, err error) {
	m, warn, err := Decode(b)
	if err != nil {
		return nil, warn, err
	}
	return m, warn, nil
}

func init() {
	qfg5.RegisterFormat(Format{})
}
