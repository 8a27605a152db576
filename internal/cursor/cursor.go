// Package cursor implements a seekable little-endian reader over a byte
// buffer. Every resource decoder is built on it.
//
// Failure is sticky: after the first failed call, every following call reports
// failure, and Err returns the first error, wrapped in an errors.DataError that
// carries the offset where decoding stopped.
package cursor

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/anaminus/parse"
	"github.com/qfg5tools/qfg5/errors"
)

// Reader reads fields from a fixed buffer.
type Reader struct {
	buf  []byte
	base int64
	fr   *parse.BinaryReader
	err  error
}

// New returns a Reader positioned at the start of b.
func New(b []byte) *Reader {
	r := &Reader{buf: b}
	r.reset(0)
	return r
}

func (r *Reader) reset(off int64) {
	r.base = off
	r.fr = parse.NewBinaryReader(bytes.NewReader(r.buf[off:]))
}

// Pos returns the current offset from the start of the buffer.
func (r *Reader) Pos() int64 {
	return r.base + r.fr.N()
}

// Len returns the length of the buffer.
func (r *Reader) Len() int64 {
	return int64(len(r.buf))
}

// Err returns the first error that occurred, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Fail records err at the current position. It always returns true, so that
// it can be used directly as a failed result.
func (r *Reader) Fail(err error) (failed bool) {
	if r.err == nil {
		if err == nil {
			err = errors.New("unknown failure")
		}
		r.err = errors.DataError{Offset: r.Pos(), Cause: err}
	}
	return true
}

// Check records err if it is not nil.
func (r *Reader) Check(err error) (failed bool) {
	if r.err != nil {
		return true
	}
	if err != nil {
		return r.Fail(err)
	}
	return false
}

// Expect fails with an ErrCrossCheck FieldError when got differs from want.
func (r *Reader) Expect(field string, want, got int64) (failed bool) {
	return r.Check(errors.Expect(field, want, got))
}

// ExpectEnd fails with ErrTrailing when unread bytes remain.
func (r *Reader) ExpectEnd() (failed bool) {
	if r.err != nil {
		return true
	}
	if r.Pos() != r.Len() {
		return r.Fail(errors.FieldError{
			Kind:     errors.ErrTrailing,
			Field:    "end of data",
			Expected: r.Len(),
			Actual:   r.Pos(),
		})
	}
	return false
}

// Need fails with ErrTruncated unless n more bytes can be read.
func (r *Reader) Need(n int64) (failed bool) {
	if r.err != nil {
		return true
	}
	if avail := r.Len() - r.Pos(); n < 0 || n > avail {
		return r.Fail(errors.FieldError{
			Kind:     errors.ErrTruncated,
			Field:    "read length",
			Expected: n,
			Actual:   avail,
		})
	}
	return false
}

// Number reads a fixed-size little-endian value into the value pointed to by
// data. Pointers to primitive numbers are read directly; structs, arrays,
// slices and named types go through encoding/binary.
func (r *Reader) Number(data interface{}) (failed bool) {
	n := binary.Size(data)
	if n < 0 {
		return r.Fail(fmt.Errorf("cannot read value of type %T", data))
	}
	if r.Need(int64(n)) {
		return true
	}
	if n == 0 {
		return false
	}
	if parse.NumberSize(data) != 0 {
		if r.fr.Number(data) {
			return r.Fail(r.fr.Err())
		}
		return false
	}
	b := make([]byte, n)
	if r.fr.Bytes(b) {
		return r.Fail(r.fr.Err())
	}
	if err := binary.Read(bytes.NewReader(b), binary.LittleEndian, data); err != nil {
		return r.Fail(err)
	}
	return false
}

// Bytes fills p with the next len(p) bytes.
func (r *Reader) Bytes(p []byte) (failed bool) {
	if r.Need(int64(len(p))) {
		return true
	}
	if r.fr.Bytes(p) {
		return r.Fail(r.fr.Err())
	}
	return false
}

// Seek moves to the absolute offset off. Seeking to the end of the buffer is
// allowed.
func (r *Reader) Seek(off int64) (failed bool) {
	if r.err != nil {
		return true
	}
	if off < 0 || off > r.Len() {
		return r.Fail(errors.FieldError{
			Kind:     errors.ErrTruncated,
			Field:    "seek offset",
			Expected: r.Len(),
			Actual:   off,
		})
	}
	r.reset(off)
	return false
}

// Skip advances by n bytes.
func (r *Reader) Skip(n int64) (failed bool) {
	if r.Need(n) {
		return true
	}
	return r.Seek(r.Pos() + n)
}

// Remaining returns the unread part of the buffer without consuming it. The
// returned slice aliases the buffer.
func (r *Reader) Remaining() []byte {
	if r.err != nil {
		return nil
	}
	return r.buf[r.Pos():]
}

// String reads a fixed-size field of n bytes holding UTF-8 text padded with
// NUL bytes. The text ends at the first NUL.
func (r *Reader) String(n int, field string, s *string) (failed bool) {
	b := make([]byte, n)
	if r.Bytes(b) {
		return true
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if !utf8.Valid(b) {
		return r.Fail(errors.FieldError{Kind: errors.ErrText, Field: field, Actual: fmt.Sprintf("%q", b)})
	}
	*s = string(b)
	return false
}
