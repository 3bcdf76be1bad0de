package querysql

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/querygen/internal/literal"
	"github.com/roach88/querygen/internal/predicate"
	"github.com/roach88/querygen/internal/schema"
)

func person() *schema.Entity {
	return schema.NewEntity("Person",
		schema.WithTable("PersonDetails"),
		schema.WithField("Id"),
		schema.WithField("Firstname"),
		schema.WithField("Lastname"),
		schema.WithColumn("DOB", "BirthDate"),
		schema.WithField("City"),
	)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestCompose_PersonDetails(t *testing.T) {
	b := predicate.New(person()).
		StartsWith("Firstname", "P").
		And().
		EndsWith("Lastname", "N")

	stmt, err := Compose(b, ComposeOptions{Columns: []string{"City", "Firstname"}})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT [City],[Firstname] FROM [PersonDetails] WHERE (LTRIM(RTRIM(LOWER([Firstname]))) LIKE 'p%' ) AND (LTRIM(RTRIM(LOWER([Lastname]))) LIKE '%n' )",
		collapse(stmt.SQL))
	assert.Nil(t, stmt.Args)
}

func TestCompose_EmptyOnlyWhere(t *testing.T) {
	stmt, err := Compose(predicate.New(person()), ComposeOptions{OnlyWhere: true})
	require.NoError(t, err)
	assert.Equal(t, "WHERE 1=1", collapse(stmt.SQL))
}

func TestCompose_SelectStar(t *testing.T) {
	stmt, err := Compose(predicate.New(person()).IsNotNull("DOB"), ComposeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM [PersonDetails] WHERE ([BirthDate] IS NOT NULL )", collapse(stmt.SQL))
}

func TestCompose_ColumnOverrideInSelectList(t *testing.T) {
	stmt, err := Compose(predicate.New(person()), ComposeOptions{Columns: []string{"DOB", "Id"}})
	require.NoError(t, err)
	assert.Equal(t, "SELECT [BirthDate],[Id] FROM [PersonDetails] WHERE 1=1", collapse(stmt.SQL))
}

func TestCompose_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		build *predicate.Builder
		opts  ComposeOptions
		check func(error) bool
	}{
		{
			name:  "dangling connector",
			build: predicate.New(person()).IsNull("City").Or(),
			opts:  ComposeOptions{OnlyWhere: true},
			check: predicate.IsDanglingOperatorError,
		},
		{
			name:  "unknown column in select list",
			build: predicate.New(person()),
			opts:  ComposeOptions{Columns: []string{"City", "Age"}},
			check: schema.IsResolutionError,
		},
		{
			name:  "unknown field in predicate",
			build: predicate.New(person()).EqualsTo("Age", 3),
			opts:  ComposeOptions{},
			check: schema.IsResolutionError,
		},
		{
			name:  "unparsable date",
			build: predicate.New(person()).EqualsTo("DOB", literal.Date("soon")),
			opts:  ComposeOptions{},
			check: literal.IsFormatError,
		},
		{
			name:  "select without entity",
			build: predicate.New(nil),
			opts:  ComposeOptions{},
			check: schema.IsResolutionError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Compose(tc.build, tc.opts)
			require.Error(t, err)
			assert.True(t, tc.check(err), "unexpected error: %v", err)
		})
	}

	_, err := Compose(nil, ComposeOptions{})
	assert.Error(t, err)
}

func TestCompose_Placeholders(t *testing.T) {
	build := func() *predicate.Builder {
		return predicate.New(person(), predicate.WithPlaceholders()).
			EqualsTo("City", "Paris").
			And().
			Between("Id", 1, 10)
	}

	testCases := []struct {
		style Placeholder
		want  string
	}{
		{"", "WHERE ([City] = ?) AND ([Id] BETWEEN ? AND ?)"},
		{PlaceholderQuestion, "WHERE ([City] = ?) AND ([Id] BETWEEN ? AND ?)"},
		{PlaceholderDollar, "WHERE ([City] = $1) AND ([Id] BETWEEN $2 AND $3)"},
		{PlaceholderColon, "WHERE ([City] = :1) AND ([Id] BETWEEN :2 AND :3)"},
		{PlaceholderAtP, "WHERE ([City] = @p1) AND ([Id] BETWEEN @p2 AND @p3)"},
	}

	for _, tc := range testCases {
		t.Run(string(tc.style), func(t *testing.T) {
			stmt, err := Compose(build(), ComposeOptions{OnlyWhere: true, Placeholder: tc.style})
			require.NoError(t, err)
			assert.Equal(t, tc.want, collapse(stmt.SQL))
			assert.Equal(t, []any{"Paris", 1, 10}, stmt.Args)
		})
	}
}

func TestCompose_PlaceholderIgnoredForInlineBuilder(t *testing.T) {
	stmt, err := Compose(predicate.New(person()).EqualsTo("Id", 4),
		ComposeOptions{OnlyWhere: true, Placeholder: PlaceholderDollar})
	require.NoError(t, err)
	assert.Equal(t, "WHERE ([Id] = 4)", collapse(stmt.SQL))
}

func TestCompose_UnknownPlaceholder(t *testing.T) {
	b := predicate.New(person(), predicate.WithPlaceholders()).EqualsTo("Id", 4)
	_, err := Compose(b, ComposeOptions{OnlyWhere: true, Placeholder: "percent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "percent")
}

func TestParsePlaceholder(t *testing.T) {
	p, err := ParsePlaceholder("")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderQuestion, p)

	p, err = ParsePlaceholder(" Dollar ")
	require.NoError(t, err)
	assert.Equal(t, PlaceholderDollar, p)

	_, err = ParsePlaceholder("named")
	assert.Error(t, err)
}
