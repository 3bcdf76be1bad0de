package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/querygen/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Entities []EntitySummary   `json:"entities,omitempty"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
}

// EntitySummary describes one loaded entity with its resolved identifiers.
type EntitySummary struct {
	Name    string            `json:"name"`
	Table   string            `json:"table"`
	Columns map[string]string `json:"columns,omitempty"` // field -> column
}

// ValidationIssue is one problem found in the mapping files.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <mapping-path>",
		Short: "Validate mapping files",
		Long: `Load CUE and YAML mapping files, check every entity and field entry,
and list the resolved table and column identifiers.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	reg, loadErrors := schema.Load(path, schema.LoadModeCollectAll)

	// Nothing could be read: bad path or no mapping files.
	if reg == nil && len(loadErrors) > 0 {
		code, message := errorCode(loadErrors[0])
		return outputCommandError(formatter, code, message, nil)
	}

	var issues []ValidationIssue
	for _, err := range loadErrors {
		issues = append(issues, toIssue(err))
	}

	entities, resolveIssues := summarize(reg, formatter)
	issues = append(issues, resolveIssues...)

	if len(issues) > 0 {
		return outputValidationErrors(formatter, entities, issues)
	}
	return outputValidateSuccess(formatter, entities)
}

// summarize resolves every entity's table and columns.
func summarize(reg *schema.Registry, formatter *OutputFormatter) ([]EntitySummary, []ValidationIssue) {
	var entities []EntitySummary
	var issues []ValidationIssue

	for _, e := range reg.Entities() {
		formatter.VerboseLog("Validating entity: %s", e.Name())

		table, err := e.ResolveTable()
		if err != nil {
			issues = append(issues, toIssue(err))
			continue
		}
		summary := EntitySummary{Name: e.Name(), Table: table}

		for _, f := range e.Fields() {
			col, err := e.ResolveColumn(f.Name)
			if err != nil {
				issues = append(issues, toIssue(err))
				continue
			}
			if summary.Columns == nil {
				summary.Columns = make(map[string]string)
			}
			summary.Columns[f.Name] = col
		}
		entities = append(entities, summary)
	}
	return entities, issues
}

func toIssue(err error) ValidationIssue {
	code, message := errorCode(err)
	issue := ValidationIssue{Code: code, Message: message}

	var loadErr *schema.LoadError
	if errors.As(err, &loadErr) {
		issue.File = loadErr.File
		if loadErr.Pos.IsValid() {
			issue.File = loadErr.Pos.Filename()
			issue.Line = loadErr.Pos.Line()
		}
	}
	return issue
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, entities []EntitySummary) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Entities: entities})
	}

	fmt.Fprintf(formatter.Writer, "✓ %d entit(ies) valid\n\n", len(entities))
	for _, e := range entities {
		fmt.Fprintf(formatter.Writer, "  %s → %s (%d field(s))\n", e.Name, e.Table, len(e.Columns))
	}
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, entities []EntitySummary, issues []ValidationIssue) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:    false,
				Entities: entities,
				Errors:   issues,
			},
			Error: &CLIError{
				Code:    issues[0].Code,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		switch {
		case issue.Line > 0:
			fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
		case issue.File != "":
			fmt.Fprintln(formatter.Writer, issue.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", issue.Code, issue.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
