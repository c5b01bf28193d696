// Package schema emits the column definitions a migration needs so that the
// stamp columns it creates match the names the stamper writes to.
package schema

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/userstamp/internal/stamping"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// ColumnType is a portable column type.
type ColumnType int

const (
	Integer ColumnType = iota
	Text
)

// Column is a nullable stamp column.
type Column struct {
	Name string
	Type ColumnType
}

// Columns returns the creator and modifier columns, and the deleter column
// when includeDeleter is set, named by the defaults for compat.
func Columns(compat, includeDeleter bool) []Column {
	creator, modifier, deleter := stamping.DefaultColumns(compat)
	return build(creator, modifier, deleter, includeDeleter)
}

// ColumnsFor returns the stamp columns of a registered type configuration.
func ColumnsFor(cfg types.TypeConfig, includeDeleter bool) []Column {
	return build(cfg.Creator, cfg.Modifier, cfg.Deleter, includeDeleter)
}

func build(creator, modifier, deleter string, includeDeleter bool) []Column {
	cols := []Column{{Name: creator, Type: Integer}, {Name: modifier, Type: Integer}}
	if includeDeleter {
		cols = append(cols, Column{Name: deleter, Type: Integer})
	}
	return cols
}

// Retype returns a copy of cols with every column set to t.
func Retype(cols []Column, t ColumnType) []Column {
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = Column{Name: c.Name, Type: t}
	}
	return out
}

// Definitions renders cols as column fragments for a CREATE TABLE statement.
func Definitions(d Dialect, cols []Column) []string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = c.Name + " " + d.SQLType(c.Type)
	}
	return defs
}

// AddColumnsDDL renders one ALTER TABLE statement per column.
func AddColumnsDDL(d Dialect, table string, cols []Column) []string {
	stmts := make([]string, len(cols))
	for i, def := range Definitions(d, cols) {
		stmts[i] = fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", table, def)
	}
	return stmts
}

// Dialect captures the SQL differences between the supported backends.
type Dialect struct {
	Name          string
	Driver        string
	AutoIncrement string // primary key definition for integer identifiers
	integer       string
	text          string
	numbered      bool // $1-style placeholders
}

// Supported dialects.
var (
	SQLite = Dialect{
		Name:          types.BackendSQLite,
		Driver:        "sqlite",
		AutoIncrement: "INTEGER PRIMARY KEY AUTOINCREMENT",
		integer:       "INTEGER",
		text:          "TEXT",
	}
	Postgres = Dialect{
		Name:          types.BackendPostgres,
		Driver:        "postgres",
		AutoIncrement: "BIGSERIAL PRIMARY KEY",
		integer:       "BIGINT",
		text:          "TEXT",
		numbered:      true,
	}
)

// DialectFor returns the dialect of a backend name.
func DialectFor(backend string) (Dialect, error) {
	switch backend {
	case types.BackendSQLite:
		return SQLite, nil
	case types.BackendPostgres:
		return Postgres, nil
	}
	return Dialect{}, fmt.Errorf("dialect %q: %w", backend, types.ErrBackendUnknown)
}

// SQLType returns the column type name in this dialect.
func (d Dialect) SQLType(t ColumnType) string {
	if t == Text {
		return d.text
	}
	return d.integer
}

// Placeholder returns the bind placeholder for the n-th argument, counting from 1.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Placeholders returns count comma-separated placeholders starting at start.
func (d Dialect) Placeholders(start, count int) string {
	ph := make([]string, count)
	for i := range ph {
		ph[i] = d.Placeholder(start + i)
	}
	return strings.Join(ph, ", ")
}
