package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userTable() *Table {
	return &Table{
		Name: "users",
		Columns: []Column{
			{Name: "id", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: TypeText, NotNull: true, Unique: true},
			{Name: "age", Type: TypeInteger},
			{Name: "profile", Type: TypeJSON},
		},
	}
}

func TestTableValidate(t *testing.T) {
	t.Parallel()

	tbl := userTable()
	require.NoError(t, tbl.Validate())

	// AutoIncrement raises NotNull.
	id, ok := tbl.Column("id")
	require.True(t, ok)
	assert.True(t, id.NotNull)

	assert.Equal(t, []string{"id", "name", "age", "profile"}, tbl.ColumnNames())
	assert.Equal(t, []string{"id"}, tbl.PrimaryKey())
	ac, ok := tbl.AutoIncrement()
	require.True(t, ok)
	assert.Equal(t, "id", ac.Name)
}

func TestTableValidateInvariants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		table *Table
	}{
		{
			name:  "empty table name",
			table: &Table{Columns: []Column{{Name: "id", Type: TypeInteger}}},
		},
		{
			name:  "no columns",
			table: &Table{Name: "users"},
		},
		{
			name: "invalid column name",
			table: &Table{Name: "users", Columns: []Column{
				{Name: "1bad", Type: TypeInteger},
			}},
		},
		{
			name: "duplicate column",
			table: &Table{Name: "users", Columns: []Column{
				{Name: "id", Type: TypeInteger},
				{Name: "id", Type: TypeText},
			}},
		},
		{
			name: "unknown data type",
			table: &Table{Name: "users", Columns: []Column{
				{Name: "id"},
			}},
		},
		{
			name: "autoincrement without primary key",
			table: &Table{Name: "users", Columns: []Column{
				{Name: "id", Type: TypeInteger, AutoIncrement: true},
			}},
		},
		{
			name: "autoincrement on non-integer",
			table: &Table{Name: "users", Columns: []Column{
				{Name: "id", Type: TypeText, PrimaryKey: true, AutoIncrement: true},
			}},
		},
		{
			name: "two autoincrement columns",
			table: &Table{Name: "users", Columns: []Column{
				{Name: "a", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true},
				{Name: "b", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true},
			}},
		},
		{
			name: "autoincrement with composite key",
			table: &Table{Name: "users", Columns: []Column{
				{Name: "a", Type: TypeInteger, PrimaryKey: true, AutoIncrement: true},
				{Name: "b", Type: TypeInteger, PrimaryKey: true},
			}},
		},
		{
			name: "default of the wrong type",
			table: &Table{Name: "users", Columns: []Column{
				{Name: "age", Type: TypeInteger, Default: "young"},
			}},
		},
		{
			name: "index over unknown column",
			table: &Table{
				Name:    "users",
				Columns: []Column{{Name: "id", Type: TypeInteger}},
				Indexes: []Index{{Columns: []string{"missing"}}},
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.table.Validate()
			require.Error(t, err)
			assert.True(t, IsValidationError(err) || IsIndexConflict(err))
		})
	}
}

func TestCompositePrimaryKey(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Name: "members",
		Columns: []Column{
			{Name: "group_id", Type: TypeInteger, PrimaryKey: true},
			{Name: "user_id", Type: TypeInteger, PrimaryKey: true},
			{Name: "role", Type: TypeText},
		},
	}
	require.NoError(t, tbl.Validate())
	assert.Equal(t, []string{"group_id", "user_id"}, tbl.PrimaryKey())
}

func TestIndexNaming(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Name: "posts",
		Columns: []Column{
			{Name: "author", Type: TypeText},
			{Name: "slug", Type: TypeText},
		},
		Indexes: []Index{
			{Columns: []string{"author", "slug"}, Unique: true},
			{Columns: []string{"author"}},
		},
	}
	require.NoError(t, tbl.Validate())
	assert.Equal(t, "posts_author_slug_key", tbl.Indexes[0].Name)
	assert.Equal(t, "posts_author_idx", tbl.Indexes[1].Name)
}

func TestAllIndexesIncludesImplicitUnique(t *testing.T) {
	t.Parallel()

	tbl := userTable()
	require.NoError(t, tbl.Validate())
	indexes := tbl.allIndexes()
	require.Len(t, indexes, 1)
	assert.Equal(t, "users_name_key", indexes[0].Name)
	assert.True(t, indexes[0].Unique)
	assert.Equal(t, []string{"name"}, indexes[0].Columns)
}

func TestIndexNameCollision(t *testing.T) {
	t.Parallel()

	tbl := &Table{
		Name: "posts",
		Columns: []Column{
			{Name: "a", Type: TypeText},
			{Name: "b", Type: TypeText},
		},
		Indexes: []Index{
			{Name: "posts_x", Columns: []string{"a"}},
			{Name: "posts_x", Columns: []string{"b"}},
		},
	}
	err := tbl.Validate()
	require.Error(t, err)
	assert.True(t, IsIndexConflict(err))
}

func TestParseType(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]DataType{
		"integer":  TypeInteger,
		"real":     TypeReal,
		"float":    TypeReal,
		"text":     TypeText,
		"string":   TypeText,
		"blob":     TypeBlob,
		"bool":     TypeBool,
		"boolean":  TypeBool,
		"date":     TypeDate,
		"datetime": TypeDateTime,
		"json":     TypeJSON,
		"object":   TypeObject,
		"array":    TypeArray,
		"number":   TypeNumber,
	} {
		got, err := ParseType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseType("uuid")
	assert.Error(t, err)
	_, err = ParseType("invalid")
	assert.Error(t, err)
}

func TestColumnTypes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "INTEGER", TypeInteger.ColumnType())
	assert.Equal(t, "REAL", TypeNumber.ColumnType())
	assert.Equal(t, "TEXT", TypeJSON.ColumnType())
	assert.Equal(t, "BOOLEAN", TypeBool.ColumnType())
	assert.True(t, TypeObject.Serialized())
	assert.True(t, TypeArray.Serialized())
	assert.False(t, TypeText.Serialized())
}
