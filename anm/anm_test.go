package anm

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/qfg5tools/qfg5/errors"
)

type options struct {
	magic      uint32
	headerSize uint32
	guard      [2]uint32
	trailing   []byte
}

func build(numAnims, numBlocks int, o options) []byte {
	if o.magic == 0 {
		o.magic = MagicTRIM
	}
	if o.headerSize == 0 {
		o.headerSize = headerSize
	}
	if o.guard == ([2]uint32{}) {
		o.guard = [2]uint32{1, 0}
	}
	var buf bytes.Buffer
	var name [nameSize]byte
	copy(name[:], "walk")
	binary.Write(&buf, binary.LittleEndian, o.magic)
	binary.Write(&buf, binary.LittleEndian, o.headerSize)
	buf.Write(name[:])
	binary.Write(&buf, binary.LittleEndian, [3]uint32{uint32(numAnims), uint32(numBlocks), 66})
	for i := 0; i < numAnims; i++ {
		for j := 0; j < numBlocks; j++ {
			binary.Write(&buf, binary.LittleEndian, o.guard)
			blk := Block{
				Translation: [3]float32{float32(i), float32(j), 0.5},
				Rotation:    [9]float32{1, 0, 0, 0, 1, 0, 0, 0, 1},
			}
			binary.Write(&buf, binary.LittleEndian, blk)
		}
	}
	buf.Write(o.trailing)
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	for _, magic := range []uint32{MagicVOX8, MagicTRIM} {
		tr, err := Decode(build(2, 3, options{magic: magic}))
		if err != nil {
			t.Fatal(err)
		}
		if tr.Name != "walk" || tr.Delay != 66 || tr.Magic != magic {
			t.Errorf("unexpected header %q %d 0x%x", tr.Name, tr.Delay, tr.Magic)
		}
		if len(tr.Anims) != 2 {
			t.Fatalf("expected 2 anims, got %d", len(tr.Anims))
		}
		for i, a := range tr.Anims {
			if len(a.Blocks) != 3 {
				t.Fatalf("anim %d: expected 3 blocks, got %d", i, len(a.Blocks))
			}
			blk := a.Blocks[2]
			if blk.Translation != [3]float32{float32(i), 2, 0.5} {
				t.Errorf("anim %d: unexpected translation %v", i, blk.Translation)
			}
			if blk.Rotation[4] != 1 || blk.Rotation[1] != 0 {
				t.Errorf("anim %d: unexpected rotation %v", i, blk.Rotation)
			}
		}
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
		kind error
	}{
		{"magic", build(1, 1, options{magic: 0x12345678}), errors.ErrMagic},
		{"header size", build(1, 1, options{headerSize: 40}), errors.ErrCrossCheck},
		{"guard a", build(1, 1, options{guard: [2]uint32{2, 0}}), errors.ErrCrossCheck},
		{"guard b", build(1, 1, options{guard: [2]uint32{1, 1}}), errors.ErrCrossCheck},
		{"trailing", build(1, 1, options{trailing: []byte{0}}), errors.ErrTrailing},
		{"truncated", build(2, 2, options{})[:100], errors.ErrTruncated},
	}
	for _, tt := range tests {
		if _, err := Decode(tt.b); !errors.Is(err, tt.kind) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.kind, err)
		}
	}
}

func TestCheckModel(t *testing.T) {
	tr, err := Decode(build(3, 1, options{}))
	if err != nil {
		t.Fatal(err)
	}
	if err := tr.CheckModel(3); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := tr.CheckModel(2); !errors.Is(err, errors.ErrCrossCheck) {
		t.Errorf("expected ErrCrossCheck, got %v", err)
	}
}

func TestDecodeNoAnims(t *testing.T) {
	// Blocks per track are irrelevant when there are no tracks.
	tr, err := Decode(build(0, 5, options{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(tr.Anims) != 0 {
		t.Errorf("expected no anims, got %d", len(tr.Anims))
	}
}
