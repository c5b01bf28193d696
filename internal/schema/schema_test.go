package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

func TestColumns(t *testing.T) {
	tests := []struct {
		name           string
		compat         bool
		includeDeleter bool
		want           []string
	}{
		{name: "default names", want: []string{"creator_id", "modifier_id"}},
		{name: "default names with deleter", includeDeleter: true, want: []string{"creator_id", "modifier_id", "deleter_id"}},
		{name: "compatibility names", compat: true, want: []string{"created_by_id", "updated_by_id"}},
		{name: "compatibility names with deleter", compat: true, includeDeleter: true, want: []string{"created_by_id", "updated_by_id", "deleted_by_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := Columns(tt.compat, tt.includeDeleter)
			var names []string
			for _, c := range cols {
				names = append(names, c.Name)
				assert.Equal(t, Integer, c.Type)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestColumnsFor(t *testing.T) {
	cfg := types.TypeConfig{Creator: "creator_name", Modifier: "modifier_name", Deleter: "deleter_name"}
	cols := Retype(ColumnsFor(cfg, false), Text)
	assert.Equal(t, []Column{{Name: "creator_name", Type: Text}, {Name: "modifier_name", Type: Text}}, cols)
}

func TestDefinitionsAndDDL(t *testing.T) {
	cols := Columns(false, true)
	assert.Equal(t, []string{"creator_id INTEGER", "modifier_id INTEGER", "deleter_id INTEGER"}, Definitions(SQLite, cols))
	assert.Equal(t, []string{
		"ALTER TABLE posts ADD COLUMN created_by_id BIGINT;",
		"ALTER TABLE posts ADD COLUMN updated_by_id BIGINT;",
	}, AddColumnsDDL(Postgres, "posts", Columns(true, false)))
}

func TestDialect(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "$1, $2, $3", d.Placeholders(1, 3))
	assert.Equal(t, "?, ?", SQLite.Placeholders(4, 2))

	_, err = DialectFor("oracle")
	assert.ErrorIs(t, err, types.ErrBackendUnknown)
}
