package predicate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name string
		text string
		want string
	}{
		{"empty", "", "1=1"},
		{"blank", "  \t ", "1=1"},
		{"trimmed", "  ([a] = 1)  ", "([a] = 1)"},
		{"lowercase connector is not a connector", "([a] = 1) and", "([a] = 1) and"},
		{"connector inside a token", "([a] = 1) BRAND", "([a] = 1) BRAND"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Validate(tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidate_Dangling(t *testing.T) {
	for _, op := range []string{"AND", "OR", "NOT"} {
		t.Run(op, func(t *testing.T) {
			_, err := Validate("([a] = 1) " + op + "  ")
			require.Error(t, err)
			assert.True(t, IsDanglingOperatorError(err))
			assert.True(t, errors.Is(err, ErrDanglingOperator))

			var de *DanglingOperatorError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, op, de.Operator)
		})
	}

	_, err := Validate("NOT")
	assert.True(t, IsDanglingOperatorError(err))
}
