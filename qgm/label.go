package qgm

import (
	"fmt"

	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/internal/cursor"
)

// LabelSize is the number of characters of a label.
const LabelSize = 12

// Label is a fixed-width identifier used to cross-reference messages.
type Label [LabelSize]byte

// String returns the characters of the label. Bytes are interpreted as
// ISO 8859-1, so every byte maps to one character.
func (l Label) String() string {
	return latin1(l[:])
}

// readLabel reads a label record: twelve characters and a terminating NUL.
func readLabel(r *cursor.Reader, field string) (l Label, failed bool) {
	var rec [LabelSize + 1]byte
	if r.Bytes(rec[:]) {
		return l, true
	}
	if rec[LabelSize] != 0 {
		return l, r.Fail(errors.FieldError{
			Kind:     errors.ErrUnsupported,
			Field:    field + " terminator",
			Expected: int64(0),
			Actual:   int64(rec[LabelSize]),
		})
	}
	copy(l[:], rec[:LabelSize])
	return l, false
}

// ErrRange indicates a value that does not fit in the requested number of
// base-36 digits.
var ErrRange = errors.New("value out of range")

const digits36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// EncodeDigit returns the base-36 digit for v, which must be in [0, 35].
func EncodeDigit(v int) (c byte, ok bool) {
	if v < 0 || v >= len(digits36) {
		return 0, false
	}
	return digits36[v], true
}

// DecodeDigit returns the value of the base-36 digit c. Lowercase letters are
// accepted.
func DecodeDigit(c byte) (v int, ok bool) {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0'), true
	case 'A' <= c && c <= 'Z':
		return int(c-'A') + 10, true
	case 'a' <= c && c <= 'z':
		return int(c-'a') + 10, true
	}
	return 0, false
}

// EncodeBase36 formats v as exactly n base-36 digits, padded with zeros.
func EncodeBase36(v, n int) (string, error) {
	limit := 1
	for i := 0; i < n && limit <= v; i++ {
		limit *= 36
	}
	if v < 0 || v >= limit {
		return "", fmt.Errorf("%w: %d in %d base-36 digits", ErrRange, v, n)
	}
	b := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		b[i], _ = EncodeDigit(v % 36)
		v /= 36
	}
	return string(b), nil
}

// Encode returns the label of m in its compact form: the file id as three
// digits, the first and second identifiers as two digits each, a dot, the
// third identifier as two digits and the fourth as one.
func (f *File) Encode(m *Message) (string, error) {
	parts := []struct {
		v, n int
	}{
		{int(f.ID), 3},
		{int(m.ID[0]), 2},
		{int(m.ID[1]), 2},
		{int(m.ID[2]), 2},
		{int(m.ID[3]), 1},
	}
	var s string
	for i, p := range parts {
		d, err := EncodeBase36(p.v, p.n)
		if err != nil {
			return "", err
		}
		if i == 3 {
			s += "."
		}
		s += d
	}
	return s, nil
}
