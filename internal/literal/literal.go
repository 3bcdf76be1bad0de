// Package literal renders typed Go values as inline SQL literals.
//
// Rendering rules:
//
//	string, Char, uuid.UUID, ~string kinds  → 'value'   (embedded as-is, no escaping)
//	time.Time                               → formatted with the date format, unquoted
//	Date                                    → parsed, then formatted like time.Time
//	nil, nil pointer                        → NULL
//	pointer                                 → rendering of the pointed-to value
//	anything else                           → fmt default text, unquoted
//
// Quote characters inside text values are NOT escaped. Callers that do not
// control their input should compose statements in parameterized mode.
package literal

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
)

// DefaultDateFormat is used when a Formatter has no DateFormat.
const DefaultDateFormat = "yyyy-MM-dd"

// Char is a single character value. It renders quoted, unlike a bare rune,
// which is an int32 and renders as a number.
type Char rune

// Date is a textual date that is parsed before rendering.
type Date string

// ErrFormat matches every *FormatError via errors.Is.
var ErrFormat = errors.New("format error")

// FormatError reports a value that cannot be rendered under its type's rule.
type FormatError struct {
	Value  any
	Format string
	Err    error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Format != "" {
		return fmt.Sprintf("format %v (%T) with %q: %v", e.Value, e.Value, e.Format, e.Err)
	}
	return fmt.Sprintf("format %v (%T): %v", e.Value, e.Value, e.Err)
}

// Unwrap returns the underlying cause.
func (e *FormatError) Unwrap() error { return e.Err }

// Is reports whether target is ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// IsFormatError returns true if err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// Formatter renders values with a configurable date format.
// The zero value uses DefaultDateFormat.
//
// DateFormat accepts three pattern styles:
//
//	yyyy-MM-dd HH:mm:ss   custom date pattern letters
//	%Y-%m-%d %H:%M:%S     strftime directives
//	2006-01-02 15:04:05   Go reference layout
type Formatter struct {
	DateFormat string
}

// Format renders v with the default date format.
func Format(v any) (string, error) {
	return Formatter{}.Format(v)
}

// Format renders v as an SQL literal.
func (f Formatter) Format(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return quote(val), nil
	case Char:
		return quote(string(rune(val))), nil
	case uuid.UUID:
		return quote(val.String()), nil
	case time.Time:
		return f.formatTime(val)
	case Date:
		t, err := ParseDate(string(val))
		if err != nil {
			return "", &FormatError{Value: v, Format: f.dateFormat(), Err: err}
		}
		return f.formatTime(t)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", nil
		}
		return f.Format(rv.Elem().Interface())
	case reflect.String:
		return quote(rv.String()), nil
	}
	return fmt.Sprint(v), nil
}

// Bind converts v to a value for a bound statement parameter. Char becomes
// a one-character string and Date is parsed to time.Time; everything else
// is passed through for the driver to convert.
func Bind(v any) (any, error) {
	switch val := v.(type) {
	case Char:
		return string(rune(val)), nil
	case Date:
		t, err := ParseDate(string(val))
		if err != nil {
			return nil, &FormatError{Value: v, Err: err}
		}
		return t, nil
	}
	return v, nil
}

// Pattern renders a value for a LIKE pattern slot. It is the quoted form
// used by the pattern-match predicates.
func Pattern(p string) string {
	return quote(p)
}

func quote(s string) string {
	return "'" + s + "'"
}

func (f Formatter) dateFormat() string {
	if p := strings.TrimSpace(f.DateFormat); p != "" {
		return p
	}
	return DefaultDateFormat
}

func (f Formatter) formatTime(t time.Time) (string, error) {
	pattern := f.dateFormat()
	switch {
	case strings.Contains(pattern, "%"):
		return strftime.Format(pattern, t), nil
	case strings.Contains(pattern, "2006"):
		return t.Format(pattern), nil
	}
	out, err := formatCustom(pattern, t)
	if err != nil {
		return "", &FormatError{Value: t, Format: pattern, Err: err}
	}
	return out, nil
}

// dateLayouts are tried in order by ParseDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// ParseDate parses a textual date in one of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}
