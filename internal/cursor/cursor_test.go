package cursor

import (
	"testing"

	"github.com/qfg5tools/qfg5/errors"
)

func TestReaderNumbers(t *testing.T) {
	r := New([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x00, 0x00, 0x80, 0x3f})
	var a uint16
	var b uint32
	var c float32
	if r.Number(&a) || r.Number(&b) || r.Number(&c) {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if a != 0x0201 {
		t.Errorf("a: expected 0x0201, got 0x%x", a)
	}
	if b != 0x06050403 {
		t.Errorf("b: expected 0x06050403, got 0x%x", b)
	}
	if c != 1 {
		t.Errorf("c: expected 1, got %v", c)
	}
	if r.Pos() != 10 {
		t.Errorf("pos: expected 10, got %d", r.Pos())
	}
	if r.ExpectEnd() {
		t.Errorf("unexpected trailing error: %v", r.Err())
	}
}

func TestReaderSeek(t *testing.T) {
	r := New([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	if r.Seek(6) {
		t.Fatal(r.Err())
	}
	var v uint16
	if r.Number(&v) {
		t.Fatal(r.Err())
	}
	if v != 0x0706 {
		t.Errorf("expected 0x0706, got 0x%x", v)
	}
	if r.Seek(2) || r.Skip(1) {
		t.Fatal(r.Err())
	}
	var b [1]byte
	if r.Bytes(b[:]) {
		t.Fatal(r.Err())
	}
	if b[0] != 3 {
		t.Errorf("expected 3, got %d", b[0])
	}
	if got := r.Remaining(); len(got) != 4 || got[0] != 4 {
		t.Errorf("unexpected remaining bytes %v", got)
	}
}

func TestReaderTruncated(t *testing.T) {
	r := New([]byte{1, 2, 3})
	var v uint32
	if !r.Number(&v) {
		t.Fatal("expected failure")
	}
	err := r.Err()
	if !errors.Is(err, errors.ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
	var de errors.DataError
	if !errors.As(err, &de) || de.Offset != 0 {
		t.Errorf("expected data error at 0, got %v", err)
	}
	// Failure is sticky.
	var b byte
	if !r.Number(&b) {
		t.Error("expected sticky failure")
	}
	if r.Err() != err {
		t.Error("expected first error to be kept")
	}
}

func TestReaderSeekOutOfRange(t *testing.T) {
	r := New(make([]byte, 4))
	if r.Seek(4) {
		t.Fatalf("seek to end should succeed: %v", r.Err())
	}
	if !r.Seek(5) {
		t.Fatal("expected failure")
	}
	if !errors.Is(r.Err(), errors.ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", r.Err())
	}
}

func TestReaderExpect(t *testing.T) {
	r := New([]byte{0x7c, 0, 0, 0})
	var v uint32
	r.Number(&v)
	if r.Expect("vlist_addr", 0x7c, int64(v)) {
		t.Fatal(r.Err())
	}
	if !r.Expect("r1", 0x88, 0x89) {
		t.Fatal("expected failure")
	}
	var fe errors.FieldError
	if !errors.As(r.Err(), &fe) {
		t.Fatalf("expected FieldError, got %v", r.Err())
	}
	if fe.Field != "r1" || fe.Expected != int64(0x88) || fe.Actual != int64(0x89) {
		t.Errorf("unexpected field error %+v", fe)
	}
	if !errors.Is(r.Err(), errors.ErrCrossCheck) {
		t.Errorf("expected ErrCrossCheck, got %v", r.Err())
	}
}

func TestReaderExpectEnd(t *testing.T) {
	r := New([]byte{1, 2})
	var b byte
	r.Number(&b)
	if !r.ExpectEnd() {
		t.Fatal("expected trailing data failure")
	}
	if !errors.Is(r.Err(), errors.ErrTrailing) {
		t.Errorf("expected ErrTrailing, got %v", r.Err())
	}
}

func TestReaderString(t *testing.T) {
	r := New([]byte{'a', 'b', 0, 'x', 0xff, 0xfe})
	var s string
	if r.String(4, "name", &s) {
		t.Fatal(r.Err())
	}
	if s != "ab" {
		t.Errorf("expected %q, got %q", "ab", s)
	}
	r = New([]byte{0xff, 0xfe})
	if !r.String(2, "name", &s) {
		t.Fatal("expected failure")
	}
	if !errors.Is(r.Err(), errors.ErrText) {
		t.Errorf("expected ErrText, got %v", r.Err())
	}
}

type mode uint32

type record struct {
	A uint16
	_ uint16
	B float32
	C [2]uint8
}

func TestReaderComposite(t *testing.T) {
	r := New([]byte{
		2, 0, 0, 0, // named uint32
		0x34, 0x12, 0xff, 0xff, 0, 0, 0x80, 0x3f, 9, 8, // struct with a blank field
		1, 2, 3, // array
		5, 0, 6, 0, // slice
		7,
	})
	var m mode
	var rec record
	var arr [3]uint8
	sl := make([]uint16, 2)
	if r.Number(&m) || r.Number(&rec) || r.Number(&arr) || r.Number(sl) {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if m != 2 {
		t.Errorf("named: expected 2, got %d", m)
	}
	if rec.A != 0x1234 || rec.B != 1 || rec.C != [2]uint8{9, 8} {
		t.Errorf("struct: unexpected %+v", rec)
	}
	if arr != [3]uint8{1, 2, 3} {
		t.Errorf("array: unexpected %v", arr)
	}
	if sl[0] != 5 || sl[1] != 6 {
		t.Errorf("slice: unexpected %v", sl)
	}
	if r.Pos() != 21 {
		t.Errorf("pos: expected 21, got %d", r.Pos())
	}
	var b byte
	if r.Number(&b) || b != 7 {
		t.Errorf("expected 7 after composite reads, got %d (%v)", b, r.Err())
	}
	if r.ExpectEnd() {
		t.Error(r.Err())
	}
}

func TestReaderCompositeTruncated(t *testing.T) {
	r := New(make([]byte, 9))
	var rec record
	if !r.Number(&rec) {
		t.Fatal("expected failure")
	}
	if !errors.Is(r.Err(), errors.ErrTruncated) {
		t.Errorf("expected ErrTruncated, got %v", r.Err())
	}
	if r.Pos() != 0 {
		t.Errorf("expected nothing consumed, pos %d", r.Pos())
	}
}

func TestReaderInvalidType(t *testing.T) {
	r := New(make([]byte, 8))
	var s string
	if !r.Number(&s) {
		t.Fatal("expected failure for a value without a fixed size")
	}
}
