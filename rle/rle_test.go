package rle

import (
	"bytes"
	"testing"
)

// literal encodes b as a sequence of literal runs.
func literal(b []byte) []byte {
	var out []byte
	for len(b) > 0 {
		n := len(b)
		if n > 128 {
			n = 128
		}
		out = append(out, byte(256-n))
		out = append(out, b[:n]...)
		b = b[n:]
	}
	return out
}

func TestDecodeLiteral(t *testing.T) {
	for _, size := range []int{1, 2, 127, 128, 129, 300, 1024} {
		want := make([]byte, size)
		for i := range want {
			want[i] = byte(i*7 + 3)
		}
		got := make([]byte, size)
		if n := Decode(got, literal(want)); n != size {
			t.Errorf("size %d: expected %d bytes written, got %d", size, size, n)
		}
		if !bytes.Equal(got, want) {
			t.Errorf("size %d: literal runs not reproduced", size)
		}
	}
}

func TestDecodeRepeat(t *testing.T) {
	for _, count := range []int{1, 2, 64, 127} {
		got := make([]byte, count)
		if n := Decode(got, []byte{byte(count), 0xab}); n != count {
			t.Errorf("count %d: expected %d bytes written, got %d", count, count, n)
		}
		if !bytes.Equal(got, bytes.Repeat([]byte{0xab}, count)) {
			t.Errorf("count %d: unexpected output %v", count, got)
		}
	}
}

func TestDecodeMixed(t *testing.T) {
	src := []byte{3, 'a', 0xfe, 'b', 'c', 0, 2, 'd'}
	got := make([]byte, 7)
	if n := Decode(got, src); n != 7 {
		t.Fatalf("expected 7 bytes written, got %d", n)
	}
	if string(got) != "aaabcdd" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestDecodeStopsWhenFull(t *testing.T) {
	got := make([]byte, 4)
	n := Decode(got, []byte{10, 'x', 0xfd, 'a', 'b', 'c'})
	if n != 4 {
		t.Fatalf("expected 4 bytes written, got %d", n)
	}
	if string(got) != "xxxx" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	got := bytes.Repeat([]byte{0xee}, 6)
	n := Decode(got, []byte{2, 'a', 0xfc, 'b'})
	if n != 3 {
		t.Fatalf("expected 3 bytes written, got %d", n)
	}
	if !bytes.Equal(got, []byte{'a', 'a', 'b', 0xee, 0xee, 0xee}) {
		t.Errorf("unexpected output %v", got)
	}
	if n := Decode(got, []byte{5}); n != 0 {
		t.Errorf("dangling repeat: expected 0 bytes written, got %d", n)
	}
}

func TestDecodeSize(t *testing.T) {
	got := DecodeSize([]byte{4, 9}, 6)
	if !bytes.Equal(got, []byte{9, 9, 9, 9, 0, 0}) {
		t.Errorf("unexpected output %v", got)
	}
}
