package schema

import (
	"errors"
	"fmt"

	"cuelang.org/go/cue/token"
)

// ErrResolution matches every *ResolutionError via errors.Is.
var ErrResolution = errors.New("resolution error")

// ResolutionError reports a field or entity reference that cannot be mapped
// to an identifier.
type ResolutionError struct {
	// Entity is the logical entity name.
	Entity string

	// Field is the offending field reference. Empty for table resolution.
	Field string

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("resolve entity %q: %s", e.Entity, e.Reason)
	}
	return fmt.Sprintf("resolve %q.%q: %s", e.Entity, e.Field, e.Reason)
}

// Is reports whether target is ErrResolution.
func (e *ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

// IsResolutionError returns true if err is or wraps a *ResolutionError.
func IsResolutionError(err error) bool {
	var re *ResolutionError
	return errors.As(err, &re)
}

// Load error codes. The CLI reports these verbatim.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeScanError    = "E002" // Directory scan error
	ErrCodeNoFiles      = "E003" // No mapping files found
	ErrCodeLoadFailed   = "E004" // CUE or YAML decode failed
	ErrCodeNotFound     = "E005" // Path not found
	ErrCodeBuildFailed  = "E006" // CUE build failed
	ErrCodeInvalidEntry = "E101" // Mapping entry failed validation
	ErrCodeDuplicate    = "E102" // Entity declared twice
)

// LoadError represents an error that occurred while loading mapping files.
type LoadError struct {
	Code    string
	Message string
	File    string    // Mapping file, if known
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s: %s", e.File, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}
