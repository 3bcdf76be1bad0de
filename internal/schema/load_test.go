package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const personCUE = `
entity: Person: {
	table: "PersonDetails"
	fields: {
		Id: {}
		Firstname: {}
		Lastname: {}
		DOB: column: "BirthDate"
		City: {}
	}
}
`

const ordersYAML = `
entities:
  - name: Order
    table: SalesOrders
    fields:
      - name: Id
      - name: Total
        column: GrandTotal
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "person.cue", personCUE)
	writeFile(t, dir, "orders.yaml", ordersYAML)

	reg, errs := Load(dir, LoadModeCollectAll)
	require.Empty(t, errs)
	require.NotNil(t, reg)
	assert.Equal(t, 2, reg.Len())

	person, ok := reg.Lookup("Person")
	require.True(t, ok)
	col, err := person.ResolveColumn("DOB")
	require.NoError(t, err)
	assert.Equal(t, "[BirthDate]", col)
	table, err := person.ResolveTable()
	require.NoError(t, err)
	assert.Equal(t, "[PersonDetails]", table)

	order, ok := reg.Lookup("Order")
	require.True(t, ok)
	col, err = order.ResolveColumn("Total")
	require.NoError(t, err)
	assert.Equal(t, "[GrandTotal]", col)
}

func TestLoad_SingleCUEFile(t *testing.T) {
	p := writeFile(t, t.TempDir(), "person.cue", personCUE)

	reg, errs := Load(p, LoadModeFailFast)
	require.Empty(t, errs)

	person, ok := reg.Lookup("Person")
	require.True(t, ok)
	var names []string
	for _, f := range person.Fields() {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Id", "Firstname", "Lastname", "DOB", "City"}, names)
}

func TestLoad_NotFound(t *testing.T) {
	reg, errs := Load("/nonexistent/mapping/path", LoadModeCollectAll)
	assert.Nil(t, reg)
	require.Len(t, errs, 1)

	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Equal(t, ErrCodeNotFound, le.Code)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	reg, errs := Load(t.TempDir(), LoadModeCollectAll)
	assert.Nil(t, reg)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeNoFiles)
}

func TestLoad_CollectAllVsFailFast(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", `
entities:
  - name: Bad.Name
  - name: Good
`)
	writeFile(t, dir, "b.yaml", `
entities:
  - name: Good
`)

	reg, errs := Load(dir, LoadModeFailFast)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeLoadFailed)
	assert.Equal(t, 0, reg.Len())

	reg, errs = Load(dir, LoadModeCollectAll)
	assert.Len(t, errs, 1)
	_, ok := reg.Lookup("Good")
	assert.True(t, ok)
}

func TestLoad_DuplicateAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", ordersYAML)
	writeFile(t, dir, "b.yml", ordersYAML)

	reg, errs := Load(dir, LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeDuplicate)
	assert.Equal(t, 1, reg.Len())
}

func TestDecodeYAML_Validation(t *testing.T) {
	testCases := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "no entities",
			doc:     "entities: []\n",
			wantErr: "Entities",
		},
		{
			name:    "missing entity name",
			doc:     "entities:\n  - table: T\n",
			wantErr: "required",
		},
		{
			name:    "field with member access",
			doc:     "entities:\n  - name: P\n    fields:\n      - name: a.b\n",
			wantErr: "member",
		},
		{
			name:    "unknown key",
			doc:     "entities:\n  - name: P\n    tabel: T\n",
			wantErr: "tabel",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeYAML([]byte(tc.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_CUEBuildError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.cue", `entity: Person: table: 1 & "x"`)

	_, errs := Load(dir, LoadModeCollectAll)
	require.NotEmpty(t, errs)

	var le *LoadError
	require.ErrorAs(t, errs[0], &le)
	assert.Contains(t, []string{ErrCodeLoadFailed, ErrCodeBuildFailed, ErrCodeInvalidEntry}, le.Code)
}

func TestLoad_CUETableNotString(t *testing.T) {
	p := writeFile(t, t.TempDir(), "bad.cue", `entity: Person: table: 42`)

	_, errs := Load(p, LoadModeCollectAll)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), ErrCodeInvalidEntry)
}
