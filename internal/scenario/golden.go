package scenario

import (
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/querygen/internal/literal"
	"github.com/roach88/querygen/internal/querysql"
	"github.com/roach88/querygen/internal/schema"
)

// Snapshot renders a statement for golden comparison: the SQL on the first
// line, then one "-- arg N: <literal>" line per bound value.
func Snapshot(stmt querysql.Statement) ([]byte, error) {
	var b strings.Builder
	b.WriteString(stmt.SQL)
	b.WriteString("\n")
	for i, arg := range stmt.Args {
		lit, err := literal.Format(arg)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "-- arg %d: %s\n", i+1, lit)
	}
	return []byte(b.String()), nil
}

// RunWithGolden runs a scenario and compares its statement against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/scenario -update
func RunWithGolden(t *testing.T, reg *schema.Registry, s *Scenario) error {
	t.Helper()

	stmt, err := Run(reg, s)
	if err != nil {
		return err
	}
	return AssertGolden(t, s.Name, stmt)
}

// AssertGolden compares an already composed statement against
// testdata/golden/{name}.golden.
func AssertGolden(t *testing.T, name string, stmt querysql.Statement) error {
	t.Helper()

	snapshot, err := Snapshot(stmt)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
