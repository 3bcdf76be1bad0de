package scenario

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/roach88/querygen/internal/literal"
	"github.com/roach88/querygen/internal/predicate"
	"github.com/roach88/querygen/internal/querysql"
	"github.com/roach88/querygen/internal/schema"
)

// Run replays the scenario's steps on a fresh Builder for its entity and
// composes the statement.
func Run(reg *schema.Registry, s *Scenario) (querysql.Statement, error) {
	if reg == nil {
		return querysql.Statement{}, fmt.Errorf("scenario %s: no mapping registry", s.Name)
	}
	entity, ok := reg.Lookup(s.Entity)
	if !ok {
		return querysql.Statement{}, &schema.ResolutionError{Entity: s.Entity, Reason: "entity not found in mappings"}
	}

	opts := []predicate.Option{predicate.WithDateFormat(s.DateFormat)}
	style := querysql.PlaceholderQuestion
	if s.Placeholders != "" {
		p, err := querysql.ParsePlaceholder(s.Placeholders)
		if err != nil {
			return querysql.Statement{}, fmt.Errorf("scenario %s: %w", s.Name, err)
		}
		style = p
		opts = append(opts, predicate.WithPlaceholders())
	}

	b := predicate.New(entity, opts...)
	if err := apply(b, s.Where); err != nil {
		return querysql.Statement{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	stmt, err := querysql.Compose(b, querysql.ComposeOptions{
		OnlyWhere:   s.OnlyWhere,
		Columns:     s.Columns,
		Placeholder: style,
	})
	if err != nil {
		return querysql.Statement{}, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	slog.Debug("scenario compiled", "scenario", s.Name, "entity", s.Entity, "steps", len(s.Where))
	return stmt, nil
}

// apply calls the Builder operation for each step. Operand conversion
// errors are returned directly; Builder errors stay sticky in b.
func apply(b *predicate.Builder, steps []Step) error {
	for i, step := range steps {
		if err := applyStep(b, step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
	}
	return nil
}

func applyStep(b *predicate.Builder, step Step) error {
	switch step.Op {
	case OpAnd:
		b.And()
	case OpOr:
		b.Or()
	case OpNot:
		b.Not()
	case OpIsNull:
		b.IsNull(step.Field)
	case OpIsNotNull:
		b.IsNotNull(step.Field)
	case OpStartsWith:
		b.StartsWith(step.Field, fmt.Sprint(step.Value))
	case OpEndsWith:
		b.EndsWith(step.Field, fmt.Sprint(step.Value))
	case OpContains:
		b.Contains(step.Field, fmt.Sprint(step.Value))
	case OpGroup:
		var inner error
		b.GroupConditions(func(g *predicate.Builder) *predicate.Builder {
			inner = apply(g, step.Steps)
			return g
		})
		return inner
	case OpIn:
		values := make([]any, 0, len(step.Values))
		for _, raw := range step.Values {
			v, err := convertOperand(raw, step.Type)
			if err != nil {
				return err
			}
			values = append(values, v)
		}
		b.In(step.Field, values...)
	case OpBetween:
		low, err := convertOperand(step.Low, step.Type)
		if err != nil {
			return err
		}
		high, err := convertOperand(step.High, step.Type)
		if err != nil {
			return err
		}
		b.Between(step.Field, low, high)
	default:
		v, err := convertOperand(step.Value, step.Type)
		if err != nil {
			return err
		}
		return compare(b, step.Op, step.Field, v)
	}
	return nil
}

func compare(b *predicate.Builder, op, field string, v any) error {
	switch op {
	case OpEquals:
		b.EqualsTo(field, v)
	case OpNotEquals:
		b.NotEqualsTo(field, v)
	case OpGreaterThan:
		b.GreaterThan(field, v)
	case OpGreaterOrEqual:
		b.GreaterOrEqual(field, v)
	case OpLessThan:
		b.LessThan(field, v)
	case OpLessOrEqual:
		b.LessOrEqual(field, v)
	default:
		return fmt.Errorf("unknown op %q", op)
	}
	return nil
}

// convertOperand converts a decoded YAML scalar according to the step's type hint.
func convertOperand(raw any, typ string) (any, error) {
	switch typ {
	case "":
		return raw, nil
	case "date":
		switch v := raw.(type) {
		case time.Time:
			return v, nil
		case string:
			return literal.Date(v), nil
		}
	case "char":
		if s, ok := raw.(string); ok && utf8.RuneCountInString(s) == 1 {
			r, _ := utf8.DecodeRuneInString(s)
			return literal.Char(r), nil
		}
		return nil, fmt.Errorf("char value must be a single character, got %v", raw)
	case "uuid":
		if s, ok := raw.(string); ok {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, fmt.Errorf("uuid value %q: %w", s, err)
			}
			return id, nil
		}
	default:
		return nil, fmt.Errorf("unknown value type %q", typ)
	}
	return nil, fmt.Errorf("%s value must be a string, got %T", typ, raw)
}
