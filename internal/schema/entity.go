package schema

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Field describes one member of an entity.
type Field struct {
	Name   string // Declared field name
	Column string // Column override (empty = use Name)
}

// Entity describes a logical record type and its column mapping.
//
// An Entity is immutable once constructed and safe to share between
// build sessions.
type Entity struct {
	name   string
	table  string
	fields map[string]Field
	order  []string
}

// Option configures an Entity during construction.
type Option func(*Entity)

// WithTable overrides the table name of the entity.
func WithTable(table string) Option {
	return func(e *Entity) {
		e.table = table
	}
}

// WithField declares a field without a column override.
func WithField(name string) Option {
	return func(e *Entity) {
		e.declare(Field{Name: name})
	}
}

// WithColumn declares a field and overrides its column name.
// Declaring the same field again replaces the previous override.
func WithColumn(field, column string) Option {
	return func(e *Entity) {
		e.declare(Field{Name: field, Column: column})
	}
}

// NewEntity creates an entity with the given logical name.
//
// An entity without declared fields accepts any simple field reference.
// Once at least one field is declared, references to undeclared fields
// fail to resolve.
func NewEntity(name string, opts ...Option) *Entity {
	e := &Entity{
		name:   normalize(name),
		fields: make(map[string]Field),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Describe builds an entity from the exported fields of struct type T.
// The entity name is the Go type name. Column and table overrides come
// from opts only.
func Describe[T any](opts ...Option) (*Entity, error) {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, &ResolutionError{
			Entity: rt.String(),
			Reason: fmt.Sprintf("expected a struct type, got %s", rt.Kind()),
		}
	}

	declared := make([]Option, 0, rt.NumField()+len(opts))
	for _, sf := range reflect.VisibleFields(rt) {
		if sf.Anonymous || !sf.IsExported() {
			continue
		}
		declared = append(declared, WithField(sf.Name))
	}
	// Overrides go last so they replace the plain declarations.
	declared = append(declared, opts...)

	return NewEntity(rt.Name(), declared...), nil
}

func (e *Entity) declare(f Field) {
	f.Name = normalize(f.Name)
	f.Column = normalize(f.Column)
	if _, ok := e.fields[f.Name]; !ok {
		e.order = append(e.order, f.Name)
	}
	e.fields[f.Name] = f
}

// Name returns the logical entity name.
func (e *Entity) Name() string { return e.name }

// Table returns the table override, or "" if none was given.
func (e *Entity) Table() string { return e.table }

// Fields returns the declared fields in declaration order.
func (e *Entity) Fields() []Field {
	out := make([]Field, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.fields[name])
	}
	return out
}

// Field returns the declared field with the given name.
func (e *Entity) Field(name string) (Field, bool) {
	f, ok := e.fields[normalize(name)]
	return f, ok
}

// ResolveColumn maps a field reference to a delimited column identifier.
//
// The column override is used verbatim when present, otherwise the field
// name. The result is wrapped in [ ] unless already delimited.
func (e *Entity) ResolveColumn(field string) (string, error) {
	ref := normalize(field)
	if reason := checkReference(ref); reason != "" {
		return "", &ResolutionError{Entity: e.name, Field: field, Reason: reason}
	}

	f, declared := e.fields[ref]
	if !declared {
		if len(e.fields) > 0 {
			return "", &ResolutionError{Entity: e.name, Field: field, Reason: "not a declared field"}
		}
		f = Field{Name: ref}
	}

	name := f.Name
	if f.Column != "" {
		name = f.Column
	}
	if reason := checkIdentifier(name); reason != "" {
		return "", &ResolutionError{Entity: e.name, Field: field, Reason: reason}
	}
	return Delimit(name), nil
}

// ResolveTable maps the entity to a delimited table identifier using the
// same override rule as ResolveColumn.
func (e *Entity) ResolveTable() (string, error) {
	name := e.name
	if e.table != "" {
		name = normalize(e.table)
	}
	if reason := checkIdentifier(name); reason != "" {
		return "", &ResolutionError{Entity: e.name, Reason: reason}
	}
	return Delimit(name), nil
}

// Delimit wraps name in square brackets, adding each bracket only if that
// side is not already delimited.
func Delimit(name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "[") {
		name = "[" + name
	}
	if !strings.HasSuffix(name, "]") {
		name += "]"
	}
	return name
}

// normalize trims and NFC-normalizes a name so that visually identical
// references resolve to the same field.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// checkReference validates a field reference: a single, non-empty member
// name. It returns "" when the reference is valid.
func checkReference(ref string) string {
	if ref == "" {
		return "empty field reference"
	}
	if strings.Contains(ref, ".") {
		return "not a simple member (member access)"
	}
	if strings.IndexFunc(ref, unicode.IsSpace) >= 0 {
		return "not a simple member (contains whitespace)"
	}
	return checkIdentifier(ref)
}

// checkIdentifier validates a name that is about to be delimited.
func checkIdentifier(name string) string {
	if strings.Trim(name, "[]") == "" {
		return "empty identifier"
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return "identifier contains control characters"
	}
	return ""
}
