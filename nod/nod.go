// Package nod decodes the palette table embedded in NOD resources.
package nod

import (
	"github.com/qfg5tools/qfg5"
	"github.com/qfg5tools/qfg5/internal/cursor"
)

const (
	versionOffset = 6
	paletteOffset = 168
	// Each palette entry occupies four bytes, of which the first three hold
	// red, green and blue.
	entrySize = 4
)

// Known values of Table.Version.
const (
	VersionDemo   = 0
	VersionRetail = 4
)

// Table is the decoded palette table of a NOD resource.
type Table struct {
	Version uint8
	Palette qfg5.Palette
}

// Decode decodes the palette table of a NOD resource.
func Decode(b []byte) (*Table, error) {
	var t Table
	r := cursor.New(b)
	r.Seek(versionOffset)
	r.Number(&t.Version)
	r.Seek(paletteOffset)
	var entry [entrySize]byte
	for i := range t.Palette {
		if i == len(t.Palette)-1 {
			// The last entry may omit its padding byte.
			if r.Bytes(entry[:3]) {
				break
			}
		} else if r.Bytes(entry[:]) {
			break
		}
		t.Palette[i] = qfg5.Color{R: entry[0], G: entry[1], B: entry[2]}
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Format implements qfg5.Format for NOD resources.
type Format struct{}

func (Format) Name() string {
	return "nod"
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
