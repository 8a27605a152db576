package gra

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
)

type collection struct {
	x, y, width, height, delay uint32
	frames                     [][]byte
}

func le(buf *bytes.Buffer, vs ...interface{}) {
	for _, v := range vs {
		binary.Write(buf, binary.LittleEndian, v)
	}
}

func build(mode ColorMode, palette []uint16, collections []collection) []byte {
	var buf bytes.Buffer
	le(&buf, uint32(mode), uint32(len(collections)))
	pal := make([]uint16, qfg5.PaletteSize)
	copy(pal, palette)
	le(&buf, pal)

	headerEnd := buf.Len() + 4*len(collections)
	var body bytes.Buffer
	offsets := make([]uint32, len(collections))
	for i, c := range collections {
		base := headerEnd + body.Len()
		offsets[i] = uint32(base)
		var col bytes.Buffer
		le(&col, c.x, c.y, c.width, c.height, uint32(len(c.frames)), c.delay, uint32(0))
		frameStart := col.Len() + 4*len(c.frames)
		var data bytes.Buffer
		for _, f := range c.frames {
			le(&col, uint32(frameStart+data.Len()))
			data.Write(f)
		}
		col.Write(data.Bytes())
		body.Write(col.Bytes())
	}
	le(&buf, offsets)
	buf.Write(body.Bytes())
	return buf.Bytes()
}

func TestDecodeRaw(t *testing.T) {
	pixels := []byte{0, 1, 2, 3, 4, 5}
	b := build(ModeRaw, []uint16{0x0000, 0x7fff}, []collection{
		{x: 10, y: 20, width: 3, height: 2, delay: 5, frames: [][]byte{pixels}},
	})
	a, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if a.Palette[0] != (qfg5.Color{R: 0, G: 0, B: 0}) {
		t.Errorf("palette entry 0: expected black, got %v", a.Palette[0])
	}
	if a.Palette[1] != (qfg5.Color{R: 255, G: 255, B: 255}) {
		t.Errorf("palette entry 1: expected white, got %v", a.Palette[1])
	}
	if len(a.Collections) != 1 {
		t.Fatalf("expected 1 collection, got %d", len(a.Collections))
	}
	c := a.Collections[0]
	if c.X != 10 || c.Y != 20 || c.Width != 3 || c.Height != 2 || c.FrameDelay != 5 {
		t.Errorf("unexpected collection header %+v", c)
	}
	if len(c.Sprites) != 1 {
		t.Fatalf("expected 1 sprite, got %d", len(c.Sprites))
	}
	if !bytes.Equal(c.Sprites[0].Pixels, pixels) {
		t.Errorf("unexpected pixels %v", c.Sprites[0].Pixels)
	}
}

func TestDecodeRLE(t *testing.T) {
	b := build(ModeRLE, nil, []collection{
		{width: 2, height: 2, frames: [][]byte{{4, 7}, {0xfc, 1, 2, 3, 4}}},
		{width: 1, height: 3, frames: [][]byte{{3, 9}}},
	})
	a, err := Decode(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Collections) != 2 {
		t.Fatalf("expected 2 collections, got %d", len(a.Collections))
	}
	want := [][][]byte{
		{{7, 7, 7, 7}, {1, 2, 3, 4}},
		{{9, 9, 9}},
	}
	for i, c := range a.Collections {
		if len(c.Sprites) != len(want[i]) {
			t.Fatalf("collection %d: expected %d sprites, got %d", i, len(want[i]), len(c.Sprites))
		}
		for j, s := range c.Sprites {
			if !bytes.Equal(s.Pixels, want[i][j]) {
				t.Errorf("collection %d sprite %d: unexpected pixels %v", i, j, s.Pixels)
			}
		}
	}
}

func TestDecodeUnsupportedMode(t *testing.T) {
	b := build(1, nil, []collection{{width: 1, height: 1, frames: [][]byte{{0}}}})
	_, err := Decode(b)
	if !errors.Is(err, errors.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	b := build(ModeRaw, nil, []collection{{width: 4, height: 4, frames: [][]byte{make([]byte, 16)}}})
	for _, n := range []int{4, 100, len(b) - 1} {
		if _, err := Decode(b[:n]); !errors.Is(err, errors.ErrTruncated) {
			t.Errorf("length %d: expected ErrTruncated, got %v", n, err)
		}
	}
}
