// Package anm decodes ANM animations.
//
// An animation holds one track per submesh of the model it animates. Each
// track is a sequence of keyframes ("blocks"), each a translation and a
// row-major 3x3 rotation.
package anm

import (
	"fmt"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/internal/cursor"
)

// Accepted values of the leading signature.
const (
	MagicVOX8 = 0x564f5838
	MagicTRIM = 0x5452494d
)

const (
	headerSize = 36
	nameSize   = 16
	blockSize  = 8 + 12*4

	// maxAnims bounds the number of tracks, which is the number of submeshes
	// of a model.
	maxAnims = 1 << 16
)

// Block is one keyframe of a track.
type Block struct {
	Translation [3]float32
	// Rotation is a 3x3 matrix in row-major order.
	Rotation [9]float32
}

// Anim is the sequence of keyframes for one submesh.
type Anim struct {
	Blocks []Block
}

// Track is a decoded ANM file.
type Track struct {
	Magic uint32
	Name  string
	Delay uint32
	// Anims holds one entry per submesh of the animated model.
	Anims []Anim
}

// Decode decodes an ANM file. The whole buffer must be consumed; trailing
// bytes are an error.
func Decode(b []byte) (*Track, error) {
	t := &Track{}
	r := cursor.New(b)

	var hsize, numAnims, numBlocks uint32
	r.Number(&t.Magic)
	if t.Magic != MagicVOX8 && t.Magic != MagicTRIM {
		r.Check(errors.FieldError{Kind: errors.ErrMagic, Field: "signature", Actual: t.Magic})
	}
	r.Number(&hsize)
	r.Expect("header size", headerSize, int64(hsize))
	r.String(nameSize, "name", &t.Name)
	r.Number(&numAnims)
	r.Number(&numBlocks)
	r.Number(&t.Delay)
	if numAnims > maxAnims {
		r.Check(errors.FieldError{Kind: errors.ErrUnsupported, Field: "anim count", Expected: int64(maxAnims), Actual: numAnims})
	}
	if r.Need(int64(numAnims) * int64(numBlocks) * blockSize) {
		return nil, r.Err()
	}

	t.Anims = make([]Anim, numAnims)
	for i := range t.Anims {
		blocks := make([]Block, numBlocks)
		for j := range blocks {
			var guard [2]uint32
			r.Number(&guard)
			r.Expect(fmt.Sprintf("anim %d block %d guard a", i, j), 1, int64(guard[0]))
			r.Expect(fmt.Sprintf("anim %d block %d guard b", i, j), 0, int64(guard[1]))
			if r.Number(&blocks[j]) {
				return nil, r.Err()
			}
		}
		t.Anims[i].Blocks = blocks
	}
	if r.ExpectEnd() {
		return nil, r.Err()
	}
	return t, nil
}

// CheckModel verifies that the track animates a model with the given number
// of submeshes.
func (t *Track) CheckModel(submeshes int) error {
	return errors.Expect("anim count", int64(submeshes), int64(len(t.Anims)))
}

// Format implements qfg5.Format for ANM files.
type Format struct{}

func (Format) Name() string {
	return "anm"
}

func (Format) Decode(b []byte) (v interface{}, warn, err error) {
	t, err := Decode(b)
	if err != nil {
		return nil, nil, err
	}
	return t, nil, nil
}

func init() {
	qfg5.RegisterFormat(Format{})
}
