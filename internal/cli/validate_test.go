package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ordersMapping = `
entities:
  - name: Order
    table: SalesOrders
    fields:
      - name: Id
      - name: Total
        column: GrandTotal
`

func executeValidate(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateMappings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "person.yaml", personMapping)
	writeFile(t, dir, "orders.yaml", ordersMapping)

	out, err := executeValidate(t, "text", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ 2 entit(ies) valid")
	assert.Contains(t, out, "Order → [SalesOrders] (2 field(s))")
	assert.Contains(t, out, "Person → [PersonDetails] (5 field(s))")
}

func TestValidateMappingsJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "person.yaml", personMapping)

	out, err := executeValidate(t, "json", dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Entities, 1)

	person := resp.Data.Entities[0]
	assert.Equal(t, "Person", person.Name)
	assert.Equal(t, "[PersonDetails]", person.Table)
	assert.Equal(t, "[BirthDate]", person.Columns["DOB"])
	assert.Equal(t, "[City]", person.Columns["City"])
}

func TestValidateSingleFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "orders.yaml", ordersMapping)

	out, err := executeValidate(t, "text", p)
	require.NoError(t, err)
	assert.Contains(t, out, "Order → [SalesOrders]")
}

func TestValidateNonExistentPath(t *testing.T) {
	out, err := executeValidate(t, "text", "/nonexistent/mappings")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E005")
	assert.Contains(t, out, "not found")
}

func TestValidateEmptyDirectory(t *testing.T) {
	out, err := executeValidate(t, "text", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "E003")
	assert.Contains(t, out, "no mapping files found")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_person.yaml", personMapping)
	writeFile(t, dir, "b_person_again.yaml", personMapping)
	writeFile(t, dir, "c_broken.yaml", `
entities:
  - name: "First Name"
`)
	writeFile(t, dir, "d_orders.yaml", ordersMapping)

	out, err := executeValidate(t, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 error(s)")

	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, "E102")
	assert.Contains(t, out, "b_person_again.yaml")
	assert.Contains(t, out, "E004")
	assert.Contains(t, out, "c_broken.yaml")
}

func TestValidateCollectsAllErrorsJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a_person.yaml", personMapping)
	writeFile(t, dir, "b_person_again.yaml", personMapping)
	writeFile(t, dir, "c_orders.yaml", ordersMapping)

	out, err := executeValidate(t, "json", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, "E102", resp.Data.Errors[0].Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E102", resp.Error.Code)

	// The entities that did load are still listed.
	assert.Len(t, resp.Data.Entities, 2)
}

func TestValidateVerboseOutput(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "person.yaml", personMapping)

	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(buf)
	cmd.SetErr(errBuf)
	cmd.SetArgs([]string{dir})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, errBuf.String(), "Validating entity: Person")
	assert.NotContains(t, buf.String(), "Validating entity")
}
