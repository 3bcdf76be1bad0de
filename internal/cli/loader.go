package cli

import (
	"errors"
	"fmt"

	"github.com/roach88/querygen/internal/literal"
	"github.com/roach88/querygen/internal/predicate"
	"github.com/roach88/querygen/internal/scenario"
	"github.com/roach88/querygen/internal/schema"
	"github.com/roach88/querygen/internal/sqlcheck"
)

// Error codes for CLI output. Mapping load codes (E001-E006, E101-E102)
// come from the schema package.
const (
	ErrCodeGeneric     = schema.ErrCodeGeneric
	ErrCodeWriteFailed = "E007" // File write error

	ErrCodeResolution = "E201" // Field or entity reference did not resolve
	ErrCodeFormat     = "E202" // Value could not be rendered
	ErrCodeDangling   = "E203" // Clause ends in AND, OR or NOT
	ErrCodeEmptyIn    = "E204" // IN without values

	ErrCodeScenario = "E301" // Scenario file unreadable or invalid
	ErrCodeCheck    = "E401" // SQLite refused the statement
)

// errorCode classifies err into a CLI error code and message.
func errorCode(err error) (string, string) {
	var loadErr *schema.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var checkErr *sqlcheck.CheckError
	switch {
	case errors.As(err, &checkErr):
		return ErrCodeCheck, err.Error()
	case schema.IsResolutionError(err):
		return ErrCodeResolution, err.Error()
	case literal.IsFormatError(err):
		return ErrCodeFormat, err.Error()
	case predicate.IsDanglingOperatorError(err):
		return ErrCodeDangling, err.Error()
	case errors.Is(err, predicate.ErrEmptyIn):
		return ErrCodeEmptyIn, err.Error()
	}
	return ErrCodeGeneric, err.Error()
}

// loadMappings loads mapping files in fail-fast mode and returns the first
// error as-is.
func loadMappings(path string) (*schema.Registry, error) {
	reg, errs := schema.Load(path, schema.LoadModeFailFast)
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return reg, nil
}

// loadSession loads the mapping registry and one scenario file. Failures
// are command errors: the inputs themselves are unusable.
func loadSession(formatter *OutputFormatter, mappingPath, scenarioPath string) (*schema.Registry, *scenario.Scenario, error) {
	if mappingPath == "" {
		return nil, nil, outputCommandError(formatter, ErrCodeGeneric, "--mapping is required", nil)
	}

	reg, err := loadMappings(mappingPath)
	if err != nil {
		code, message := errorCode(err)
		return nil, nil, outputCommandError(formatter, code, message, nil)
	}
	formatter.VerboseLog("Loaded %d entit(ies) from %s", reg.Len(), mappingPath)

	s, err := scenario.LoadScenario(scenarioPath)
	if err != nil {
		return nil, nil, outputCommandError(formatter, ErrCodeScenario, err.Error(), nil)
	}
	formatter.VerboseLog("Loaded scenario %s (%d step(s))", s.Name, len(s.Where))

	return reg, s, nil
}

// outputCommandError writes one error and returns exit code 2.
func outputCommandError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputFailure writes one error and returns exit code 1.
func outputFailure(formatter *OutputFormatter, err error) error {
	code, message := errorCode(err)
	_ = formatter.Error(code, message, nil)
	return WrapExitError(ExitFailure, code, err)
}
