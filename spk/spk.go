// Package spk implements a reader for SPK archives.
//
// An SPK archive is laid out like a ZIP file with its directory at the end:
// a sequence of items, each preceded by a local header, followed by a central
// directory and a 22-byte end-of-directory record. Only uncompressed items are
// supported.
package spk

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/qfg5tools/qfg5/errors"
	"github.com/qfg5tools/qfg5/internal/cursor"
)

const (
	// Size of the end-of-directory record.
	trailerSize = 0x16
	// Size of the local header that precedes each item, excluding its file
	// name.
	localHeaderSize = 0x42

	pkMagic = 0x4b50
	pkID    = 0x0705
)

// Entry describes an item of an archive.
type Entry struct {
	// Name is the path of the item within the archive.
	Name string
	// Offset is the absolute position of the item's data.
	Offset int64
	// Length is the size of the item's data.
	Length int64
}

// Archive is an open SPK archive.
type Archive struct {
	r       io.ReaderAt
	closer  io.Closer
	entries []Entry
}

// Open reads the directory of an archive of the given size from r. The
// returned warning lists entries whose names could not be decoded.
func Open(r io.ReaderAt, size int64) (a *Archive, warn, err error) {
	if r == nil {
		return nil, nil, errors.New("nil reader")
	}
	if size < trailerSize {
		return nil, nil, errors.DataError{Offset: 0, Cause: errors.FieldError{
			Kind:     errors.ErrTruncated,
			Field:    "archive size",
			Expected: int64(trailerSize),
			Actual:   size,
		}}
	}

	trailer := make([]byte, trailerSize)
	if _, err := r.ReadAt(trailer, size-trailerSize); err != nil {
		return nil, nil, fmt.Errorf("read end-of-directory record: %w", err)
	}
	dirOffset, localStart, count, err := readTrailer(trailer, size)
	if err != nil {
		return nil, nil, err
	}

	dir := make([]byte, size-trailerSize-dirOffset)
	if _, err := r.ReadAt(dir, dirOffset); err != nil {
		return nil, nil, fmt.Errorf("read central directory: %w", err)
	}
	entries, warn, err := readDirectory(dir, dirOffset, localStart, count)
	if err != nil {
		return nil, warn, err
	}
	for _, e := range entries {
		if e.Offset+e.Length > size {
			return nil, warn, errors.FieldError{
				Kind:     errors.ErrTruncated,
				Field:    fmt.Sprintf("entry %q end", e.Name),
				Expected: size,
				Actual:   e.Offset + e.Length,
			}
		}
	}
	return &Archive{r: r, entries: entries}, warn, nil
}

// OpenFile opens the archive at path. The archive owns the file until Close
// is called.
func OpenFile(path string) (a *Archive, warn, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat archive: %w", err)
	}
	a, warn, err = Open(f, st.Size())
	if err != nil {
		f.Close()
		return nil, warn, err
	}
	a.closer = f
	return a, warn, nil
}

// Close releases the file opened by OpenFile. It does nothing for archives
// created with Open.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	err := a.closer.Close()
	a.closer = nil
	return err
}

func readTrailer(b []byte, size int64) (dirOffset, localStart int64, count uint16, err error) {
	r := cursor.New(b)
	var magic, id, countDup uint16
	var a, s uint32
	r.Number(&magic)
	if magic != pkMagic {
		r.Check(errors.FieldError{Kind: errors.ErrMagic, Field: "pk magic", Expected: int64(pkMagic), Actual: int64(magic)})
	}
	r.Number(&id)
	if id != pkID {
		r.Check(errors.FieldError{Kind: errors.ErrMagic, Field: "pk id", Expected: int64(pkID), Actual: int64(id)})
	}
	r.Skip(4)
	r.Number(&count)
	r.Number(&countDup)
	r.Expect("duplicate entry count", int64(count), int64(countDup))
	r.Number(&a)
	r.Number(&s)
	if err := r.Err(); err != nil {
		return 0, 0, 0, trailerError(err, size)
	}

	dirOffset = size - int64(a) - trailerSize
	localStart = dirOffset - int64(s)
	if dirOffset < 0 || localStart < 0 {
		return 0, 0, 0, errors.FieldError{
			Kind:     errors.ErrCrossCheck,
			Field:    "local file start",
			Expected: "non-negative offset",
			Actual:   localStart,
		}
	}
	return dirOffset, localStart, count, nil
}

// trailerError rebases the offset of an error in the end-of-directory record
// to the archive.
func trailerError(err error, size int64) error {
	var de errors.DataError
	if errors.As(err, &de) {
		de.Offset += size - trailerSize
		return de
	}
	return err
}

func readDirectory(b []byte, base, localStart int64, count uint16) (entries []Entry, warn, err error) {
	var warns errors.Errors
	r := cursor.New(b)
	entries = make([]Entry, 0, count)
	for i := 0; i < int(count); i++ {
		var compressed, uncompressed, nameLen, location uint32
		r.Skip(20)
		r.Number(&compressed)
		r.Number(&uncompressed)
		if compressed != uncompressed {
			r.Check(errors.FieldError{
				Kind:     errors.ErrUnsupported,
				Field:    fmt.Sprintf("entry %d compressed size", i),
				Expected: int64(uncompressed),
				Actual:   int64(compressed),
			})
		}
		r.Number(&nameLen)
		r.Skip(10)
		r.Number(&location)
		if r.Need(int64(nameLen)) {
			break
		}
		name := make([]byte, nameLen)
		if r.Bytes(name) {
			break
		}

		e := Entry{
			Name:   string(name),
			Offset: localStart + int64(location) + localHeaderSize + int64(nameLen),
			Length: int64(uncompressed),
		}
		if !utf8.Valid(name) {
			e.Name = fmt.Sprintf("<corrupt-%d>", i)
			warns = append(warns, errors.FieldError{
				Kind:   errors.ErrText,
				Field:  fmt.Sprintf("entry %d name", i),
				Actual: fmt.Sprintf("%q", name),
			})
		}
		entries = append(entries, e)
	}
	if err := r.Err(); err != nil {
		var de errors.DataError
		if errors.As(err, &de) {
			de.Offset += base
			err = de
		}
		return nil, warns.Return(), err
	}
	return entries, warns.Return(), nil
}

// Entries returns the items of the archive, in directory order.
func (a *Archive) Entries() []Entry {
	return a.entries
}

// Lookup returns the entry with the given name. Names are compared without
// regard to case or the direction of path separators.
func (a *Archive) Lookup(name string) (e Entry, ok bool) {
	name = normalize(name)
	for _, e := range a.entries {
		if normalize(e.Name) == name {
			return e, true
		}
	}
	return Entry{}, false
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "\\", "/"))
}

// ReadEntry reads the data of e. ReadEntry does not depend on any shared
// position, so it may be called concurrently.
func (a *Archive) ReadEntry(e Entry) ([]byte, error) {
	buf := make([]byte, e.Length)
	n, err := a.r.ReadAt(buf, e.Offset)
	if n == len(buf) {
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("read entry %q: %w", e.Name, err)
}
