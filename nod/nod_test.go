package nod

import (
	"testing"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
)

func build(version byte) []byte {
	b := make([]byte, paletteOffset+256*entrySize)
	b[versionOffset] = version
	for i := 0; i < 256; i++ {
		o := paletteOffset + i*entrySize
		b[o], b[o+1], b[o+2], b[o+3] = byte(i), byte(255-i), byte(i/2), 0xaa
	}
	return b
}

func TestDecode(t *testing.T) {
	tab, err := Decode(build(VersionRetail))
	if err != nil {
		t.Fatal(err)
	}
	if tab.Version != VersionRetail {
		t.Errorf("expected version %d, got %d", VersionRetail, tab.Version)
	}
	for _, i := range []int{0, 1, 128, 255} {
		want := qfg5.Color{R: byte(i), G: byte(255 - i), B: byte(i / 2)}
		if tab.Palette[i] != want {
			t.Errorf("entry %d: expected %v, got %v", i, want, tab.Palette[i])
		}
	}
}

func TestDecodeWithoutFinalPadding(t *testing.T) {
	b := build(VersionDemo)
	if _, err := Decode(b[:len(b)-1]); err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(b[:len(b)-2]); !errors.Is(err, errors.ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}
