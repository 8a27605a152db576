// The errors package provides additional error primitives, along with the
// error kinds shared by every resource decoder.
package errors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

func New(text string) error {
	return errors.New(text)
}

func Unwrap(err error) error {
	return errors.Unwrap(err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

var (
	// Indicates a wrong leading signature or version constant.
	ErrMagic = errors.New("magic mismatch")
	// Indicates an offset or length field that disagrees with the value
	// computed from other fields.
	ErrCrossCheck = errors.New("structural cross-check failed")
	// Indicates a mode or encoding form that is not implemented.
	ErrUnsupported = errors.New("unsupported variant")
	// Indicates fewer bytes than a field declares.
	ErrTruncated = errors.New("truncated input")
	// Indicates invalid UTF-8 in text that is not obfuscated.
	ErrText = errors.New("text decode failed")
	// Indicates bytes beyond the expected structure.
	ErrTrailing = errors.New("trailing data")
)

// FieldError reports a field whose value violates a structural assumption.
type FieldError struct {
	// Kind is one of the Err* values of this package.
	Kind error
	// Field names the offending field.
	Field string
	// Expected is the value the field should have had. It is omitted from
	// the message when nil.
	Expected interface{}
	// Actual is the value that was read.
	Actual interface{}
}

func (err FieldError) Error() string {
	var s strings.Builder
	if err.Kind != nil {
		s.WriteString(err.Kind.Error())
		s.WriteString(": ")
	}
	s.WriteString(err.Field)
	if err.Expected != nil {
		fmt.Fprintf(&s, ": expected %s, got %s", formatValue(err.Expected), formatValue(err.Actual))
	} else {
		fmt.Fprintf(&s, ": %s", formatValue(err.Actual))
	}
	return s.String()
}

func (err FieldError) Unwrap() error {
	return err.Kind
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case int64:
		if v < 0 {
			return strconv.FormatInt(v, 10)
		}
		return fmt.Sprintf("%d (0x%x)", v, v)
	case int:
		return formatValue(int64(v))
	case uint32:
		return formatValue(int64(v))
	case uint16:
		return formatValue(int64(v))
	default:
		return fmt.Sprint(v)
	}
}

// Expect returns a FieldError of kind ErrCrossCheck when got differs from
// want, and nil otherwise.
func Expect(field string, want, got int64) error {
	if want == got {
		return nil
	}
	return FieldError{Kind: ErrCrossCheck, Field: field, Expected: want, Actual: got}
}

// DataError wraps an error that occurred while decoding byte data.
type DataError struct {
	// Offset is the byte offset where the error occurred.
	Offset int64

	Cause error
}

func (err DataError) Error() string {
	var s strings.Builder
	s.WriteString("data error")
	if err.Offset >= 0 {
		s.WriteString(" at ")
		s.Write(strconv.AppendInt(nil, err.Offset, 10))
	}
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// Errors is a list of errors.
type Errors []error

// Errors formats the list by separating each message with a newline. Each
// produced line, including lines within messages, is prefixed with a tab.
func (errs Errors) Error() string {
	switch len(errs) {
	case 0:
		return "no errors"
	case 1:
		return errs[0].Error()
	default:
		var buf strings.Builder
		buf.WriteString("multiple errors:")
		for _, err := range errs {
			buf.WriteString("\n\t")
			msg := err.Error()
			msg = strings.ReplaceAll(msg, "\n", "\n\t")
			buf.WriteString(msg)
		}
		return buf.String()
	}
}

// Unwrap returns the errors of the list, so that Is and As match any of them.
func (errs Errors) Unwrap() []error {
	return errs
}

// Append returns errs with each err appended to it. Arguments that are nil are
// skipped.
func (errs Errors) Append(err ...error) Errors {
	for _, err := range err {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Return prepares errs to be returned by a function by returning nil if errs is
// empty.
func (errs Errors) Return() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Union receives a number of errors and combines them into one Errors. Any errs
// that are Errors are concatenated directly. Returns nil if all errs are nil or
// empty.
func Union(errs ...error) error {
	var e Errors
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
			continue
		case Errors:
			for _, err := range err {
				if err != nil {
					e = append(e, err)
				}
			}
		default:
			e = append(e, err)
		}
	}
	return e.Return()
}
