package predicate

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/querygen/internal/literal"
	"github.com/roach88/querygen/internal/schema"
)

// BindMarker stands in for a bound value in parameterized mode. It cannot
// occur in a resolved identifier, so querysql can rewrite it safely.
const BindMarker = "\x00"

// Option configures a Builder.
type Option func(*config)

type config struct {
	params    bool
	formatter literal.Formatter
}

// WithPlaceholders makes the Builder emit BindMarker instead of literals and
// collect the values in Args.
func WithPlaceholders() Option {
	return func(c *config) { c.params = true }
}

// WithDateFormat sets the pattern used to render time values.
// See literal.Formatter for the accepted pattern styles.
func WithDateFormat(pattern string) Option {
	return func(c *config) { c.formatter.DateFormat = pattern }
}

// Builder accumulates the fragments of one predicate.
//
// The zero value is not usable; create one with New. A Builder is owned by a
// single build session and is not safe for concurrent use.
type Builder struct {
	entity *schema.Entity
	cfg    config
	lower  cases.Caser // folds LIKE search strings

	parts []string
	args  []any
	err   error
}

// New starts a build session against entity.
func New(entity *schema.Entity, opts ...Option) *Builder {
	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{entity: entity, cfg: cfg, lower: cases.Lower(language.Und)}
}

// Entity returns the entity the Builder resolves fields against.
func (b *Builder) Entity() *schema.Entity { return b.entity }

// Parameterized reports whether the Builder was created WithPlaceholders.
func (b *Builder) Parameterized() bool { return b.cfg.params }

// Err returns the first error raised by an operation, if any.
func (b *Builder) Err() error { return b.err }

// Args returns the bound values in marker order. Empty unless the Builder
// is parameterized.
func (b *Builder) Args() []any {
	if len(b.args) == 0 {
		return nil
	}
	out := make([]any, len(b.args))
	copy(out, b.args)
	return out
}

// Clause returns the validated clause text.
func (b *Builder) Clause() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return Validate(strings.Join(b.parts, " "))
}

// And appends the AND connector.
func (b *Builder) And() *Builder { return b.connector("AND") }

// Or appends the OR connector.
func (b *Builder) Or() *Builder { return b.connector("OR") }

// Not appends the NOT operator. It negates the fragment that follows.
func (b *Builder) Not() *Builder { return b.connector("NOT") }

// EqualsTo appends (col = value).
func (b *Builder) EqualsTo(field string, value any) *Builder {
	return b.compare(field, "=", value)
}

// NotEqualsTo appends (col <> value).
func (b *Builder) NotEqualsTo(field string, value any) *Builder {
	return b.compare(field, "<>", value)
}

// GreaterThan appends (col > value).
func (b *Builder) GreaterThan(field string, value any) *Builder {
	return b.compare(field, ">", value)
}

// GreaterOrEqual appends (col >= value).
func (b *Builder) GreaterOrEqual(field string, value any) *Builder {
	return b.compare(field, ">=", value)
}

// LessThan appends (col < value).
func (b *Builder) LessThan(field string, value any) *Builder {
	return b.compare(field, "<", value)
}

// LessOrEqual appends (col <= value).
func (b *Builder) LessOrEqual(field string, value any) *Builder {
	return b.compare(field, "<=", value)
}

// In appends (col IN (v1, v2, ...)). At least one value is required.
func (b *Builder) In(field string, values ...any) *Builder {
	if b.err != nil {
		return b
	}
	col, ok := b.column(field)
	if !ok {
		return b
	}
	if len(values) == 0 {
		b.err = fmt.Errorf("%s: %w", col, ErrEmptyIn)
		return b
	}

	lits := make([]string, 0, len(values))
	for _, v := range values {
		lit, ok := b.value(v)
		if !ok {
			return b
		}
		lits = append(lits, lit)
	}
	return b.push("(" + col + " IN (" + strings.Join(lits, ", ") + "))")
}

// IsNull appends (col IS NULL ).
func (b *Builder) IsNull(field string) *Builder {
	return b.nullCheck(field, "IS NULL")
}

// IsNotNull appends (col IS NOT NULL ).
func (b *Builder) IsNotNull(field string) *Builder {
	return b.nullCheck(field, "IS NOT NULL")
}

// Between appends (col BETWEEN low AND high). The bounds are emitted in the
// order given; low > high is not an error.
func (b *Builder) Between(field string, low, high any) *Builder {
	if b.err != nil {
		return b
	}
	col, ok := b.column(field)
	if !ok {
		return b
	}
	lo, ok := b.value(low)
	if !ok {
		return b
	}
	hi, ok := b.value(high)
	if !ok {
		return b
	}
	return b.push("(" + col + " BETWEEN " + lo + " AND " + hi + ")")
}

// StartsWith appends a case-insensitive prefix match.
func (b *Builder) StartsWith(field, s string) *Builder {
	return b.like(field, s, "", "%")
}

// EndsWith appends a case-insensitive suffix match.
func (b *Builder) EndsWith(field, s string) *Builder {
	return b.like(field, s, "%", "")
}

// Contains appends a case-insensitive substring match.
func (b *Builder) Contains(field, s string) *Builder {
	return b.like(field, s, "%", "%")
}

// GroupConditions appends the clause built by fn, wrapped in parentheses.
//
// fn receives a child Builder with the same entity and options. Its return
// value is ignored. An empty group renders as (1=1); errors raised inside
// the group, including a dangling connector, become the parent's error.
func (b *Builder) GroupConditions(fn func(*Builder) *Builder) *Builder {
	if b.err != nil {
		return b
	}

	child := &Builder{entity: b.entity, cfg: b.cfg, lower: b.lower}
	fn(child)

	inner, err := child.Clause()
	if err != nil {
		b.err = err
		return b
	}
	b.args = append(b.args, child.args...)
	return b.push("(" + inner + ")")
}

func (b *Builder) connector(op string) *Builder {
	if b.err != nil {
		return b
	}
	return b.push(op)
}

func (b *Builder) compare(field, op string, value any) *Builder {
	if b.err != nil {
		return b
	}
	col, ok := b.column(field)
	if !ok {
		return b
	}
	lit, ok := b.value(value)
	if !ok {
		return b
	}
	return b.push("(" + col + " " + op + " " + lit + ")")
}

func (b *Builder) nullCheck(field, test string) *Builder {
	if b.err != nil {
		return b
	}
	col, ok := b.column(field)
	if !ok {
		return b
	}
	return b.push("(" + col + " " + test + " )")
}

func (b *Builder) like(field, s, before, after string) *Builder {
	if b.err != nil {
		return b
	}
	col, ok := b.column(field)
	if !ok {
		return b
	}

	pattern := before + b.lower.String(strings.TrimSpace(s)) + after
	lit := literal.Pattern(pattern)
	if b.cfg.params {
		lit = b.bind(pattern)
	}
	return b.push("(LTRIM(RTRIM(LOWER(" + col + "))) LIKE " + lit + " )")
}

// column resolves field, recording the error on failure.
func (b *Builder) column(field string) (string, bool) {
	if b.entity == nil {
		b.err = &schema.ResolutionError{Field: field, Reason: "builder has no entity"}
		return "", false
	}
	col, err := b.entity.ResolveColumn(field)
	if err != nil {
		b.err = err
		return "", false
	}
	return col, true
}

// value renders v as a literal or, in parameterized mode, a bind marker.
func (b *Builder) value(v any) (string, bool) {
	if b.cfg.params {
		bound, err := literal.Bind(v)
		if err != nil {
			b.err = err
			return "", false
		}
		return b.bind(bound), true
	}

	lit, err := b.cfg.formatter.Format(v)
	if err != nil {
		b.err = err
		return "", false
	}
	return lit, true
}

func (b *Builder) bind(v any) string {
	b.args = append(b.args, v)
	return BindMarker
}

func (b *Builder) push(fragment string) *Builder {
	b.parts = append(b.parts, fragment)
	return b
}
