package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personMapping = `
entities:
  - name: Person
    table: PersonDetails
    fields:
      - name: Id
      - name: Firstname
      - name: Lastname
      - name: DOB
        column: BirthDate
      - name: City
`

const byCityScenario = `
name: by_city
entity: Person
where:
  - op: equals
    field: City
    value: Paris
  - op: and
  - op: between
    field: Id
    low: 1
    high: 10
`

const unknownFieldScenario = `
name: unknown_field
entity: Person
where:
  - op: equals
    field: Nickname
    value: Bob
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

// writeSession lays out a mapping file and a scenario and returns both paths.
func writeSession(t *testing.T, scenarioYAML string) (mapping, scenarioFile string) {
	t.Helper()
	dir := t.TempDir()
	mapping = writeFile(t, dir, "mappings/person.yaml", personMapping)
	scenarioFile = writeFile(t, dir, "scenarios/scenario.yaml", scenarioYAML)
	return mapping, scenarioFile
}

func executeCompile(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCompileScenario(t *testing.T) {
	mapping, scenarioFile := writeSession(t, byCityScenario)

	out, err := executeCompile(t, "text", scenarioFile, "--mapping", mapping)
	require.NoError(t, err)

	assert.Contains(t, out, "SELECT * FROM [PersonDetails]")
	assert.Contains(t, out, "([City] = 'Paris')")
	assert.Contains(t, out, "([Id] BETWEEN 1 AND 10)")
	assert.NotContains(t, out, "-- arg")
}

func TestCompileScenarioJSON(t *testing.T) {
	mapping, scenarioFile := writeSession(t, byCityScenario)

	out, err := executeCompile(t, "json", scenarioFile, "-m", mapping)
	require.NoError(t, err)

	var resp struct {
		Status string            `json:"status"`
		Data   CompilationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "by_city", resp.Data.Scenario)
	assert.Equal(t, "Person", resp.Data.Entity)
	assert.Contains(t, resp.Data.SQL, "([City] = 'Paris')")
	assert.Empty(t, resp.Data.Args)
}

func TestCompilePlaceholderOverride(t *testing.T) {
	mapping, scenarioFile := writeSession(t, byCityScenario)

	out, err := executeCompile(t, "text", scenarioFile, "-m", mapping, "--placeholders", "dollar")
	require.NoError(t, err)

	assert.Contains(t, out, "([City] = $1) AND ([Id] BETWEEN $2 AND $3)")
	assert.Contains(t, out, "-- arg 1: 'Paris'")
	assert.Contains(t, out, "-- arg 2: 1")
	assert.Contains(t, out, "-- arg 3: 10")
}

func TestCompileUnknownPlaceholder(t *testing.T) {
	mapping, scenarioFile := writeSession(t, byCityScenario)

	_, err := executeCompile(t, "text", scenarioFile, "-m", mapping, "--placeholders", "percent")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCompileOutputToFile(t *testing.T) {
	mapping, scenarioFile := writeSession(t, byCityScenario)
	outputFile := filepath.Join(t.TempDir(), "by_city.sql")

	_, err := executeCompile(t, "text", scenarioFile, "-m", mapping, "--output", outputFile)
	require.NoError(t, err)

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "([City] = 'Paris')")
}

func TestCompileMissingMapping(t *testing.T) {
	_, scenarioFile := writeSession(t, byCityScenario)

	out, err := executeCompile(t, "text", scenarioFile)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "--mapping is required")
}

func TestCompileNonExistentMapping(t *testing.T) {
	_, scenarioFile := writeSession(t, byCityScenario)

	out, err := executeCompile(t, "text", scenarioFile, "-m", "/nonexistent/mappings")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestCompileInvalidScenario(t *testing.T) {
	mapping, scenarioFile := writeSession(t, "name: broken\nwhere:\n  - op: sideways\n")

	out, err := executeCompile(t, "text", scenarioFile, "-m", mapping)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E301]")
}

func TestCompileUnknownField(t *testing.T) {
	mapping, scenarioFile := writeSession(t, unknownFieldScenario)

	out, err := executeCompile(t, "text", scenarioFile, "-m", mapping)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E201]")
	assert.Contains(t, out, "Nickname")
}

func TestCompileUnknownFieldJSON(t *testing.T) {
	mapping, scenarioFile := writeSession(t, unknownFieldScenario)

	out, err := executeCompile(t, "json", scenarioFile, "-m", mapping)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeResolution, resp.Error.Code)
}

func TestCompileDanglingOperator(t *testing.T) {
	mapping, scenarioFile := writeSession(t, `
name: dangling
entity: Person
where:
  - op: is_null
    field: City
  - op: or
`)

	out, err := executeCompile(t, "text", scenarioFile, "-m", mapping)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E203]")
}

func TestErrorCode(t *testing.T) {
	mapping, _ := writeSession(t, byCityScenario)
	reg, err := loadMappings(mapping)
	require.NoError(t, err)

	_, err = loadMappings(filepath.Join(t.TempDir(), "missing"))
	code, _ := errorCode(err)
	assert.Equal(t, "E005", code)

	person, ok := reg.Lookup("Person")
	require.True(t, ok)
	_, err = person.ResolveColumn("Nickname")
	code, _ = errorCode(err)
	assert.Equal(t, ErrCodeResolution, code)

	code, msg := errorCode(assert.AnError)
	assert.Equal(t, ErrCodeGeneric, code)
	assert.Equal(t, assert.AnError.Error(), msg)
}
