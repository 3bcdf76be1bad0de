// Package querysql composes WHERE clauses and SELECT statements from a
// predicate.Builder.
package querysql

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/querygen/internal/predicate"
	"github.com/roach88/querygen/internal/schema"
)

// Placeholder is the bind parameter style written in parameterized
// statements.
type Placeholder string

const (
	PlaceholderQuestion Placeholder = "question" // ?     (SQLite, MySQL)
	PlaceholderDollar   Placeholder = "dollar"   // $1    (PostgreSQL)
	PlaceholderColon    Placeholder = "colon"    // :1    (Oracle)
	PlaceholderAtP      Placeholder = "atp"      // @p1   (SQL Server)
)

// ParsePlaceholder maps a style name to a Placeholder. An empty name is
// PlaceholderQuestion.
func ParsePlaceholder(name string) (Placeholder, error) {
	switch p := Placeholder(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return PlaceholderQuestion, nil
	case PlaceholderQuestion, PlaceholderDollar, PlaceholderColon, PlaceholderAtP:
		return p, nil
	default:
		return "", fmt.Errorf("unknown placeholder style %q (want question, dollar, colon or atp)", name)
	}
}

// marker returns the placeholder text for the n-th bound value, 1-based.
func (p Placeholder) marker(n int) string {
	switch p {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(n)
	case PlaceholderColon:
		return ":" + strconv.Itoa(n)
	case PlaceholderAtP:
		return "@p" + strconv.Itoa(n)
	default:
		return "?"
	}
}

// ComposeOptions selects the statement shape.
type ComposeOptions struct {
	// OnlyWhere emits just "WHERE <clause>".
	OnlyWhere bool

	// Columns are field references for the SELECT list, in order.
	// Empty means *.
	Columns []string

	// Placeholder is the bind style for a parameterized Builder.
	// Ignored otherwise. Empty means PlaceholderQuestion.
	Placeholder Placeholder
}

// Statement is a composed statement and its bound values.
type Statement struct {
	SQL string

	// Args are the bound values in placeholder order. Nil unless the
	// Builder was parameterized.
	Args []any
}

// Compose validates the Builder's clause and composes the statement:
//
//	WHERE <clause>                                   (OnlyWhere)
//	SELECT <cols> FROM <table> WHERE <clause>        (otherwise)
//
// The Builder ends its build session here and must not be reused.
func Compose(b *predicate.Builder, opts ComposeOptions) (Statement, error) {
	if b == nil {
		return Statement{}, errors.New("compose: nil builder")
	}

	clause, err := b.Clause()
	if err != nil {
		return Statement{}, fmt.Errorf("compose: %w", err)
	}

	var sql string
	if opts.OnlyWhere {
		sql = "WHERE " + clause
	} else {
		head, err := selectFrom(b.Entity(), opts.Columns)
		if err != nil {
			return Statement{}, fmt.Errorf("compose: %w", err)
		}
		sql = head + " WHERE " + clause
	}

	args := b.Args()
	if b.Parameterized() {
		sql, err = rewriteMarkers(sql, opts.Placeholder, len(args))
		if err != nil {
			return Statement{}, fmt.Errorf("compose: %w", err)
		}
	}

	slog.Debug("statement composed", "sql", sql, "args", len(args))
	return Statement{SQL: sql, Args: args}, nil
}

// selectFrom builds "SELECT <cols> FROM <table>".
func selectFrom(entity *schema.Entity, columns []string) (string, error) {
	if entity == nil {
		return "", &schema.ResolutionError{Reason: "no entity to select from"}
	}

	table, err := entity.ResolveTable()
	if err != nil {
		return "", err
	}

	list := "*"
	if len(columns) > 0 {
		resolved := make([]string, 0, len(columns))
		for _, c := range columns {
			col, err := entity.ResolveColumn(c)
			if err != nil {
				return "", err
			}
			resolved = append(resolved, col)
		}
		list = strings.Join(resolved, ",")
	}

	return "SELECT " + list + " FROM " + table, nil
}

// rewriteMarkers replaces each predicate.BindMarker with the placeholder
// for its position. The marker count must match the bound values.
func rewriteMarkers(sql string, style Placeholder, want int) (string, error) {
	if style == "" {
		style = PlaceholderQuestion
	}
	if _, err := ParsePlaceholder(string(style)); err != nil {
		return "", err
	}

	pieces := strings.Split(sql, predicate.BindMarker)
	if got := len(pieces) - 1; got != want {
		return "", fmt.Errorf("statement has %d bind markers for %d values", got, want)
	}

	var out strings.Builder
	out.WriteString(pieces[0])
	for i, piece := range pieces[1:] {
		out.WriteString(style.marker(i + 1))
		out.WriteString(piece)
	}
	return out.String(), nil
}
