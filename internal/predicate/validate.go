package predicate

import (
	"errors"
	"fmt"
	"strings"
)

// AlwaysTrue is the clause emitted for an empty build session.
const AlwaysTrue = "1=1"

// ErrDanglingOperator matches every *DanglingOperatorError via errors.Is.
var ErrDanglingOperator = errors.New("dangling operator")

// ErrEmptyIn is returned when In is called without values.
var ErrEmptyIn = errors.New("IN requires at least one value")

// DanglingOperatorError reports a clause that ends in a boolean connector
// with nothing attached to it.
type DanglingOperatorError struct {
	// Operator is the trailing connector: AND, OR or NOT.
	Operator string

	// Clause is the trimmed clause text.
	Clause string
}

// Error implements the error interface.
func (e *DanglingOperatorError) Error() string {
	return fmt.Sprintf("clause ends with dangling %s: %q", e.Operator, e.Clause)
}

// Is reports whether target is ErrDanglingOperator.
func (e *DanglingOperatorError) Is(target error) bool {
	return target == ErrDanglingOperator
}

// IsDanglingOperatorError returns true if err is or wraps a
// *DanglingOperatorError.
func IsDanglingOperatorError(err error) bool {
	var de *DanglingOperatorError
	return errors.As(err, &de)
}

// connectors are matched case-sensitively against the last token.
var connectors = map[string]bool{
	"AND": true,
	"OR":  true,
	"NOT": true,
}

// Validate checks accumulated clause text before it is emitted.
//
// Returns the trimmed text, AlwaysTrue for empty text, or a
// *DanglingOperatorError when the last token is AND, OR or NOT.
func Validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return AlwaysTrue, nil
	}

	tokens := strings.Fields(trimmed)
	if last := tokens[len(tokens)-1]; connectors[last] {
		return "", &DanglingOperatorError{Operator: last, Clause: trimmed}
	}
	return trimmed, nil
}
