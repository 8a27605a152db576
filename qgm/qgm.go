// Package qgm decodes QGM dialogue files.
//
// A QGM file is a table of messages. Each message carries identifiers, an
// optional label, the labels of its dialogue options, and its text. Text may
// be obfuscated with a simple word cipher, see Demangle.
package qgm

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"unicode/utf8"

	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/internal/cursor"
	"golang.org/x/text/encoding/charmap"
)

// Magic is the signature of a QGM file.
const Magic = 0x51474d20

// FlagMangled marks a message whose text is obfuscated.
const FlagMangled = 0x4

const mangleKey = 0xf1acc1d

// Message is a single entry of a dialogue file.
type Message struct {
	ID        [4]uint16
	SpeakerID uint16
	MessageID uint16
	Flags     uint16
	// Label is nil when the message has no label.
	Label   *Label
	Options []Label
	Text    string
}

// Mangled returns whether the text of the message was obfuscated.
func (m *Message) Mangled() bool {
	return m.Flags&FlagMangled != 0
}

// File is a decoded QGM file.
type File struct {
	Version  uint32
	ID       uint16
	Messages []Message
}

type fileHeader struct {
	Magic   uint32
	Version uint32
	Count   uint32
	_       uint16
	FileID  uint16
}

type messageHeader struct {
	ID         [4]uint16
	SpeakerID  uint16
	_          [3]uint16
	NumOptions uint16
	Flags      uint16
	_          uint16
	MessageID  uint16
	TextLength uint16
	TextFlags  uint16
	LabelFlag  uint16
	_          uint16
}

// Decode decodes a QGM file.
func Decode(b []byte) (*File, error) {
	r := cursor.New(b)
	var h fileHeader
	if r.Number(&h) {
		return nil, r.Err()
	}
	if h.Magic != Magic {
		r.Check(errors.FieldError{Kind: errors.ErrMagic, Field: "signature", Expected: int64(Magic), Actual: h.Magic})
		return nil, r.Err()
	}
	// Every message occupies at least its 32-byte header and 4-byte trailer.
	if r.Need(int64(h.Count) * 36) {
		return nil, r.Err()
	}

	f := &File{Version: h.Version, ID: h.FileID}
	f.Messages = make([]Message, 0, h.Count)
	for i := 0; i < int(h.Count); i++ {
		m, failed := readMessage(r)
		if failed {
			return nil, fmt.Errorf("message %d: %w", i, r.Err())
		}
		f.Messages = append(f.Messages, m)
	}
	return f, nil
}

func readMessage(r *cursor.Reader) (m Message, failed bool) {
	var h messageHeader
	if r.Number(&h) {
		return m, true
	}
	m.ID = h.ID
	m.SpeakerID = h.SpeakerID
	m.MessageID = h.MessageID
	m.Flags = h.Flags

	if h.LabelFlag != 0 {
		l, failed := readLabel(r, "message label")
		if failed {
			return m, true
		}
		m.Label = &l
	}
	m.Options = make([]Label, 0, h.NumOptions)
	for i := 0; i < int(h.NumOptions); i++ {
		l, failed := readLabel(r, fmt.Sprintf("option %d label", i))
		if failed {
			return m, true
		}
		m.Options = append(m.Options, l)
	}

	text := make([]byte, h.TextLength)
	var trailer uint32
	r.Bytes(text)
	r.Number(&trailer)
	if r.Err() != nil {
		return m, true
	}
	if m.Mangled() {
		m.Text = latin1(Demangle(text))
	} else {
		if !utf8.Valid(text) {
			return m, r.Fail(errors.FieldError{Kind: errors.ErrText, Field: "message text", Actual: fmt.Sprintf("%q", text)})
		}
		m.Text = string(text)
	}
	return m, false
}

// Demangle reverses the text obfuscation. Each complete little-endian 32-bit
// word is XORed with a key and rotated right by 15 bits. Remaining bytes are
// inverted.
func Demangle(b []byte) []byte {
	out := make([]byte, len(b))
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		v := binary.LittleEndian.Uint32(b[i:])
		v = bits.RotateLeft32(v^mangleKey, -15)
		binary.LittleEndian.PutUint32(out[i:], v)
	}
	for i := n; i < len(b); i++ {
		out[i] = ^b[i]
	}
	return out
}

// Mangle applies the text obfuscation reversed by Demangle.
func Mangle(b []byte) []byte {
	out := make([]byte, len(b))
	n := len(b) &^ 3
	for i := 0; i < n; i += 4 {
		v := binary.LittleEndian.Uint32(b[i:])
		v = bits.RotateLeft32(v, 15) ^ mangleKey
		binary.LittleEndian.PutUint32(out[i:], v)
	}
	for i := n; i < len(b); i++ {
		out[i] = ^b[i]
	}
	return out
}

func latin1(b []byte) string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// Every byte is defined in ISO 8859-1.
		panic(err)
	}
	return string(s)
}

// Format implements qfg5.Format for QGM files.
type Format struct{}

func (Format) Name() string {
	return "qgm"
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
