// The qfg5 package holds the types shared by the resource decoders of a 1990s
// adventure game engine, along with a registry of the decoders themselves.
//
// Each resource format is handled by its own sub-package: "spk" for archives,
// "img" for raster and background images, "nod" for palette tables, "gra" for
// sprite atlases, "qgf" for bitmap fonts, "mdl" for mesh models, "anm" for
// animations, "qgm" for dialogue and "rgd" for region graphs. Every decoder
// takes a complete buffer and returns a fully validated structure, or an error
// that wraps one of the kinds defined by the "errors" package.
//
// Decoders that stand on their own register themselves with RegisterFormat
// when imported, so that tools can decode a resource by its file extension.
package qfg5

import (
	"sort"
	"strings"
	"sync"
)

// Format decodes one kind of resource.
type Format interface {
	// Name returns the lowercase file extension of the format, without a
	// leading dot.
	Name() string

	// Decode decodes a complete resource. Non-fatal diagnostics are returned
	// in warn.
	Decode(b []byte) (v interface{}, warn, err error)
}

var formats struct {
	sync.RWMutex
	m map[string]Format
}

// RegisterFormat makes a format available by name. Registering a name twice
// replaces the earlier format.
func RegisterFormat(f Format) {
	formats.Lock()
	defer formats.Unlock()
	if formats.m == nil {
		formats.m = map[string]Format{}
	}
	formats.m[strings.ToLower(f.Name())] = f
}

// LookupFormat returns the format registered for name, which may be given
// with or without a leading dot, in any case.
func LookupFormat(name string) (f Format, ok bool) {
	formats.RLock()
	defer formats.RUnlock()
	f, ok = formats.m[strings.ToLower(strings.TrimPrefix(name, "."))]
	return f, ok
}

// Formats returns the names of all registered formats, sorted.
func Formats() []string {
	formats.RLock()
	defer formats.RUnlock()
	names := make([]string, 0, len(formats.m))
	for name := range formats.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
