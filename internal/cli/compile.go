package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/querygen/internal/querysql"
	"github.com/roach88/querygen/internal/scenario"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Mapping      string // mapping file or directory
	Placeholders string // overrides the scenario's placeholder style
	Output       string // output file path
}

// CompilationResult is the JSON payload of compile and check.
type CompilationResult struct {
	Scenario string `json:"scenario"`
	Entity   string `json:"entity"`
	SQL      string `json:"sql"`
	Args     []any  `json:"args,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <scenario.yaml>",
		Short: "Compile a scenario to a SQL statement",
		Long: `Compile a scenario file to a WHERE clause or SELECT statement.

Entities are resolved from the CUE or YAML mapping files given with
--mapping. Nothing is executed.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Mapping, "mapping", "m", "", "mapping file or directory (required)")
	cmd.Flags().StringVar(&opts.Placeholders, "placeholders", "", "bind values with this style: question|dollar|colon|atp")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, scenarioPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	reg, s, err := loadSession(formatter, opts.Mapping, scenarioPath)
	if err != nil {
		return err
	}
	if opts.Placeholders != "" {
		if _, err := querysql.ParsePlaceholder(opts.Placeholders); err != nil {
			return outputCommandError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		s.Placeholders = opts.Placeholders
	}

	stmt, err := scenario.Run(reg, s)
	if err != nil {
		return outputFailure(formatter, err)
	}

	if opts.Output != "" {
		if err := writeStatement(stmt, opts.Output); err != nil {
			return outputCommandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
		formatter.VerboseLog("Wrote statement to %s", opts.Output)
	}

	return outputStatement(formatter, s, stmt)
}

// outputStatement prints the statement and any bound values.
func outputStatement(formatter *OutputFormatter, s *scenario.Scenario, stmt querysql.Statement) error {
	if formatter.Format == "json" {
		return formatter.Success(CompilationResult{
			Scenario: s.Name,
			Entity:   s.Entity,
			SQL:      stmt.SQL,
			Args:     stmt.Args,
		})
	}

	snapshot, err := scenario.Snapshot(stmt)
	if err != nil {
		return outputFailure(formatter, err)
	}
	_, err = formatter.Writer.Write(snapshot)
	return err
}

// writeStatement writes the statement in golden-file form.
func writeStatement(stmt querysql.Statement, filename string) error {
	data, err := scenario.Snapshot(stmt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}
