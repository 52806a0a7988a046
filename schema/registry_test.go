package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryPlanCreate(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ch, err := r.Plan(userTable())
	require.NoError(t, err)
	assert.True(t, ch.CreateTable)
	assert.Empty(t, ch.AddColumns)
	require.Len(t, ch.AddIndexes, 1)
	assert.Equal(t, "users_name_key", ch.AddIndexes[0].Name)

	// Plan never mutates: the table is still unknown.
	_, err = r.Table("users")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	r.Commit(ch)
	got, err := r.Table("users")
	require.NoError(t, err)
	assert.Equal(t, "users", got.Name)
	assert.Equal(t, []string{"users"}, r.TableNames())
}

func TestRegistryIdempotentRedefinition(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ch, err := r.Plan(userTable())
	require.NoError(t, err)
	r.Commit(ch)

	ch, err = r.Plan(userTable())
	require.NoError(t, err)
	assert.True(t, ch.IsZero())
}

func TestRegistryAdditiveRedefinition(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ch, err := r.Plan(userTable())
	require.NoError(t, err)
	r.Commit(ch)

	next := userTable()
	next.Columns = append(next.Columns, Column{Name: "bio", Type: TypeText})
	next.Indexes = append(next.Indexes, Index{Columns: []string{"age"}})

	ch, err = r.Plan(next)
	require.NoError(t, err)
	assert.False(t, ch.CreateTable)
	require.Len(t, ch.AddColumns, 1)
	assert.Equal(t, "bio", ch.AddColumns[0].Name)
	require.Len(t, ch.AddIndexes, 1)
	assert.Equal(t, "users_age_idx", ch.AddIndexes[0].Name)
	r.Commit(ch)

	got, err := r.Table("users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "age", "profile", "bio"}, got.ColumnNames())
}

func TestRegistryConflictingRedefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Table)
	}{
		{
			name: "column removed",
			mutate: func(t *Table) {
				t.Columns = t.Columns[:len(t.Columns)-1]
			},
		},
		{
			name: "column type changed",
			mutate: func(t *Table) {
				c, _ := t.Column("age")
				c.Type = TypeText
			},
		},
		{
			name: "new primary key column",
			mutate: func(t *Table) {
				t.Columns = append(t.Columns, Column{Name: "tenant", Type: TypeInteger, PrimaryKey: true})
			},
		},
		{
			name: "new not-null column without default",
			mutate: func(t *Table) {
				t.Columns = append(t.Columns, Column{Name: "email", Type: TypeText, NotNull: true})
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := NewRegistry()
			ch, err := r.Plan(userTable())
			require.NoError(t, err)
			r.Commit(ch)

			next := userTable()
			tt.mutate(next)
			_, err = r.Plan(next)
			require.Error(t, err)
			assert.True(t, IsConflict(err))

			// The registered shape is untouched.
			got, err := r.Table("users")
			require.NoError(t, err)
			assert.Equal(t, []string{"id", "name", "age", "profile"}, got.ColumnNames())
		})
	}
}

func TestRegistryNotNullWithDefaultIsAdditive(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ch, err := r.Plan(userTable())
	require.NoError(t, err)
	r.Commit(ch)

	next := userTable()
	next.Columns = append(next.Columns, Column{Name: "active", Type: TypeBool, NotNull: true, Default: true})
	ch, err = r.Plan(next)
	require.NoError(t, err)
	require.Len(t, ch.AddColumns, 1)
	assert.Equal(t, "active", ch.AddColumns[0].Name)
}

func TestRegistryPlanIndex(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ch, err := r.Plan(userTable())
	require.NoError(t, err)
	r.Commit(ch)

	// New index.
	ch, err = r.PlanIndex("users", Index{Columns: []string{"age"}})
	require.NoError(t, err)
	require.Len(t, ch.AddIndexes, 1)
	assert.Equal(t, "users_age_idx", ch.AddIndexes[0].Name)
	r.Commit(ch)

	// Same shape again is a no-op.
	ch, err = r.PlanIndex("users", Index{Columns: []string{"age"}})
	require.NoError(t, err)
	assert.True(t, ch.IsZero())

	// Name reuse with a different shape fails.
	_, err = r.PlanIndex("users", Index{Name: "users_age_idx", Columns: []string{"age"}, Unique: true})
	require.Error(t, err)
	assert.True(t, IsIndexConflict(err))

	// Unknown table.
	_, err = r.PlanIndex("ghosts", Index{Columns: []string{"age"}})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestRegistryRedefinitionKeepsExistingIndexes(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	ch, err := r.Plan(userTable())
	require.NoError(t, err)
	r.Commit(ch)
	ch, err = r.PlanIndex("users", Index{Columns: []string{"age"}})
	require.NoError(t, err)
	r.Commit(ch)

	// Redefining without naming the index does not drop it.
	ch, err = r.Plan(userTable())
	require.NoError(t, err)
	assert.True(t, ch.IsZero())
	r.Commit(ch)

	got, err := r.Table("users")
	require.NoError(t, err)
	names := make([]string, 0, len(got.Indexes))
	for _, idx := range got.Indexes {
		names = append(names, idx.Name)
	}
	assert.Contains(t, names, "users_age_idx")
}
