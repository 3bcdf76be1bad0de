package sqlcheck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/querygen/internal/querysql"
	"github.com/roach88/querygen/internal/schema"
)

// Error kinds reported in CheckError.Kind.
const (
	KindUnknownColumn = "unknown_column"
	KindUnknownTable  = "unknown_table"
	KindSyntax        = "syntax"
)

// CheckError reports a statement that SQLite refused to prepare.
type CheckError struct {
	// Kind classifies the failure; see the Kind constants.
	Kind string

	// SQL is the statement text that was prepared.
	SQL string

	// Err is the driver error.
	Err error
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %v (statement: %s)", e.Kind, e.Err, e.SQL)
}

// Unwrap returns the driver error.
func (e *CheckError) Unwrap() error { return e.Err }

// IsCheckError returns true if err is or wraps a *CheckError.
func IsCheckError(err error) bool {
	var ce *CheckError
	return errors.As(err, &ce)
}

// Checker prepares statements against an in-memory SQLite database whose
// tables mirror a set of entities. Statements are never executed.
type Checker struct {
	db *sql.DB
}

// Open creates an in-memory database with one table per distinct resolved
// table name. Entities mapped to the same table contribute their columns to
// it. Entities without declared fields are skipped: their columns are not
// known.
func Open(ctx context.Context, entities []*schema.Entity) (*Checker, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := createTables(ctx, db, entities); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute %q: %w", "PRAGMA query_only = ON", err)
	}

	return &Checker{db: db}, nil
}

// Close closes the database.
func (c *Checker) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Check prepares stmt. A bare WHERE clause is checked as
// SELECT * FROM <entity table> WHERE ....
func (c *Checker) Check(ctx context.Context, entity *schema.Entity, stmt querysql.Statement) error {
	text := strings.TrimSpace(stmt.SQL)
	if strings.HasPrefix(text, "WHERE ") || text == "WHERE" {
		if entity == nil {
			return fmt.Errorf("check: a bare WHERE clause needs an entity")
		}
		table, err := entity.ResolveTable()
		if err != nil {
			return err
		}
		text = "SELECT * FROM " + table + " " + text
	}

	prepared, err := c.db.PrepareContext(ctx, text)
	if err != nil {
		return &CheckError{Kind: classify(err), SQL: text, Err: err}
	}
	defer prepared.Close()

	slog.Debug("statement checked", "sql", text)
	return nil
}

func classify(err error) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "no such column"):
		return KindUnknownColumn
	case strings.Contains(msg, "no such table"):
		return KindUnknownTable
	default:
		return KindSyntax
	}
}

// createTables creates one untyped table per resolved table name.
func createTables(ctx context.Context, db *sql.DB, entities []*schema.Entity) error {
	var order []string
	columns := make(map[string][]string)
	seen := make(map[string]bool)

	for _, e := range entities {
		if len(e.Fields()) == 0 {
			slog.Warn("entity has no declared fields, skipping table", "entity", e.Name())
			continue
		}
		table, err := e.ResolveTable()
		if err != nil {
			return err
		}
		if _, ok := columns[table]; !ok {
			order = append(order, table)
			columns[table] = nil
		}
		for _, f := range e.Fields() {
			col, err := e.ResolveColumn(f.Name)
			if err != nil {
				return err
			}
			key := table + "." + col
			if seen[key] {
				continue
			}
			seen[key] = true
			columns[table] = append(columns[table], col)
		}
	}

	for _, table := range order {
		ddl := fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(columns[table], ", "))
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}
