package sqlite

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/userstamp/internal/schema"
	"github.com/mesh-intelligence/userstamp/internal/stamping"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// setupMockPostgres attaches a backend to a sqlmock database using the
// postgres dialect.
func setupMockPostgres(t *testing.T) (*Backend, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	for _, def := range tableDefs {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + def.name + " (")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	b := NewBackend(stamping.New())
	b.mu.Lock()
	err = b.attachDB(context.Background(), db, schema.Postgres)
	b.mu.Unlock()
	require.NoError(t, err)

	t.Cleanup(func() {
		mock.ExpectClose()
		assert.NoError(t, b.Detach())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return b, mock
}

func TestCreateTableSQL(t *testing.T) {
	s := stamping.New()
	tests := []struct {
		def tableDef
		want string
	}{
		{
			def: tableDefs[0],
			want: "CREATE TABLE IF NOT EXISTS users (\n" +
				"\tid BIGSERIAL PRIMARY KEY,\n" +
				"\tname TEXT,\n" +
				"\tcreated_at TEXT,\n" +
				"\tupdated_at TEXT,\n" +
				"\tcreator_id BIGINT,\n" +
				"\tmodifier_id BIGINT\n" +
				")",
		},
		{
			def: tableDefs[3],
			want: "CREATE TABLE IF NOT EXISTS comments (\n" +
				"\tid TEXT PRIMARY KEY,\n" +
				"\tpost_id TEXT,\n" +
				"\tcomment TEXT,\n" +
				"\tcreated_at TEXT,\n" +
				"\tupdated_at TEXT,\n" +
				"\tdeleted_at TEXT,\n" +
				"\tcreated_by_id BIGINT,\n" +
				"\tupdated_by_id BIGINT,\n" +
				"\tdeleted_by_id BIGINT\n" +
				")",
		},
		{
			def: tableDefs[4],
			want: "CREATE TABLE IF NOT EXISTS pings (\n" +
				"\tid TEXT PRIMARY KEY,\n" +
				"\tpost_id TEXT,\n" +
				"\tping TEXT,\n" +
				"\tcreated_at TEXT,\n" +
				"\tupdated_at TEXT,\n" +
				"\tcreator_name TEXT,\n" +
				"\tmodifier_name TEXT\n" +
				")",
		},
	}
	for _, tt := range tests {
		t.Run(tt.def.name, func(t *testing.T) {
			proto := tt.def.proto()
			m, err := newMapping(proto)
			require.NoError(t, err)
			cfg, err := s.Register(proto, tt.def.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, createTableSQL(schema.Postgres, tt.def.name, m, cfg, tt.def.stampType))
		})
	}
}

func TestPostgresInsertStampsArguments(t *testing.T) {
	b, mock := setupMockPostgres(t)
	posts := mustTable(t, b, types.PostsTable)

	mock.ExpectExec(regexp.QuoteMeta(
		"INSERT INTO posts (id, title, creator_id, modifier_id, deleter_id, created_at, updated_at, deleted_at) " +
			"VALUES ($1, $2, $3, $4, $5, $6, $7, $8)")).
		WithArgs(sqlmock.AnyArg(), "hello", int64(7), int64(7), nil, sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := posts.Set(asPerson(context.Background(), 7), "", &types.Post{Title: "hello"})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestPostgresInsertReturnsGeneratedID(t *testing.T) {
	b, mock := setupMockPostgres(t)
	users := mustTable(t, b, types.UsersTable)

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO users (name, creator_id, modifier_id, created_at, updated_at) " +
			"VALUES ($1, $2, $3, $4, $5) RETURNING id")).
		WithArgs("zeus", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	u := &types.User{Name: "zeus"}
	id, err := users.Set(context.Background(), "", u)
	require.NoError(t, err)
	assert.Equal(t, "12", id)
	assert.Equal(t, int64(12), u.ID)
}

func TestPostgresSoftDeleteIsOneUpdate(t *testing.T) {
	b, mock := setupMockPostgres(t)
	posts := mustTable(t, b, types.PostsTable)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, title, creator_id, modifier_id, deleter_id, created_at, updated_at, deleted_at FROM posts WHERE id = $1")).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "creator_id", "modifier_id", "deleter_id", "created_at", "updated_at", "deleted_at"}).
			AddRow("p1", "t", int64(7), int64(9), nil, "2026-01-02T03:04:05Z", "2026-01-02T03:04:05Z", nil))
	mock.ExpectExec(regexp.QuoteMeta(
		"UPDATE posts SET title = $1, modifier_id = $2, deleter_id = $3, updated_at = $4, deleted_at = $5 WHERE id = $6")).
		WithArgs("t", int64(9), int64(11), sqlmock.AnyArg(), sqlmock.AnyArg(), "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, posts.Delete(asPerson(context.Background(), 11), "p1"))
}

func TestPostgresFetchFilter(t *testing.T) {
	b, mock := setupMockPostgres(t)
	comments := mustTable(t, b, types.CommentsTable)

	mock.ExpectQuery(regexp.QuoteMeta(
		"SELECT id, post_id, comment, created_by_id, updated_by_id, deleted_by_id, created_at, updated_at, deleted_at " +
			"FROM comments WHERE created_by_id = $1 AND deleted_at IS NULL ORDER BY id LIMIT 5")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "post_id", "comment", "created_by_id", "updated_by_id", "deleted_by_id", "created_at", "updated_at", "deleted_at"}).
			AddRow("c1", "p1", "first", int64(3), int64(3), nil, "2026-01-02T03:04:05Z", "2026-01-02T03:04:05Z", nil))

	rows, err := comments.Fetch(context.Background(), types.Filter{"created_by_id": types.IntID(3), types.FilterLimit: 5})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	c := rows[0].(*types.Comment)
	assert.Equal(t, types.IntID(3), c.CreatedByID)
	assert.True(t, c.DeletedByID.IsZero())
}
