package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/querygen/internal/scenario"
	"github.com/roach88/querygen/internal/schema"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Mapping string // mapping file or directory
	Update  bool   // regenerate golden files
	Filter  string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Compile scenarios and compare against golden files",
		Long: `Compile every scenario file in a directory and compare each statement
with golden/<name>.golden next to the scenario.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, bad mapping)

Examples:
  querygen test ./scenarios --mapping ./mappings
  querygen test ./scenarios -m ./mappings --filter "person_*"
  querygen test ./scenarios -m ./mappings --update`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Mapping, "mapping", "m", "", "mapping file or directory (required)")
	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Mapping == "" {
		return outputCommandError(formatter, ErrCodeGeneric, "--mapping is required", nil)
	}
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("scenarios directory not found: %s", scenariosDir), nil)
	}

	reg, err := loadMappings(opts.Mapping)
	if err != nil {
		code, message := errorCode(err)
		return outputCommandError(formatter, code, message, nil)
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("failed to find scenarios: %v", err), nil)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, file := range scenarioFiles {
		formatter.VerboseLog("Running %s", file)
		res := runScenario(reg, file, opts)
		if opts.Format != "json" {
			printScenarioResult(cmd, res, opts.Update)
		}

		result.Scenarios = append(result.Scenarios, res)
		if res.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario compiles one scenario and compares or updates its golden file.
func runScenario(reg *schema.Registry, file string, opts *TestOptions) ScenarioResult {
	fail := func(name, format string, args ...any) ScenarioResult {
		return ScenarioResult{Name: name, Errors: []string{fmt.Sprintf(format, args...)}}
	}

	s, err := scenario.LoadScenario(file)
	if err != nil {
		return fail(filepath.Base(file), "failed to load scenario: %v", err)
	}

	stmt, err := scenario.Run(reg, s)
	if err != nil {
		code, message := errorCode(err)
		return fail(s.Name, "%s: %s", code, message)
	}

	current, err := scenario.Snapshot(stmt)
	if err != nil {
		return fail(s.Name, "failed to render statement: %v", err)
	}

	goldenPath := goldenFilePath(file)
	if opts.Update {
		if err := updateGoldenFile(goldenPath, current); err != nil {
			return fail(s.Name, "failed to update golden file: %v", err)
		}
		return ScenarioResult{Name: s.Name, Pass: true}
	}

	golden, err := os.ReadFile(goldenPath)
	if os.IsNotExist(err) {
		return fail(s.Name, "golden file missing: %s (run with --update to create)", goldenPath)
	}
	if err != nil {
		return fail(s.Name, "failed to read golden file: %v", err)
	}

	if !bytes.Equal(golden, current) {
		return fail(s.Name, "statement does not match golden file (run with --update to regenerate)")
	}
	return ScenarioResult{Name: s.Name, Pass: true}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func updateGoldenFile(goldenPath string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(goldenPath), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(goldenPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func printScenarioResult(cmd *cobra.Command, res ScenarioResult, updated bool) {
	w := cmd.OutOrStdout()
	switch {
	case res.Pass && updated:
		fmt.Fprintf(w, "✓ %s (golden updated)\n", res.Name)
	case res.Pass:
		fmt.Fprintf(w, "✓ %s\n", res.Name)
	default:
		fmt.Fprintf(w, "✗ %s\n", res.Name)
		for _, e := range res.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
