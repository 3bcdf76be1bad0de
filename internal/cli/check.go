package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/querygen/internal/scenario"
	"github.com/roach88/querygen/internal/sqlcheck"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Mapping string // mapping file or directory
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <scenario.yaml>",
		Short: "Compile a scenario and prepare it against SQLite",
		Long: `Compile a scenario, then prepare the statement against an in-memory
SQLite database whose tables mirror the mapped entities. The statement
is never executed.

Exit codes:
  0 - Statement prepared
  1 - Statement could not be built or was rejected by SQLite
  2 - Command error (invalid paths, bad mapping or scenario)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Mapping, "mapping", "m", "", "mapping file or directory (required)")

	return cmd
}

func runCheck(opts *CheckOptions, scenarioPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	reg, s, err := loadSession(formatter, opts.Mapping, scenarioPath)
	if err != nil {
		return err
	}

	stmt, err := scenario.Run(reg, s)
	if err != nil {
		return outputFailure(formatter, err)
	}

	checker, err := sqlcheck.Open(ctx, reg.Entities())
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("opening check database: %v", err), nil)
	}
	defer checker.Close()

	entity, _ := reg.Lookup(s.Entity)
	if err := checker.Check(ctx, entity, stmt); err != nil {
		return outputFailure(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(CompilationResult{
			Scenario: s.Name,
			Entity:   s.Entity,
			SQL:      stmt.SQL,
			Args:     stmt.Args,
		})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s\n  %s\n", s.Name, stmt.SQL)
	return nil
}
