package sqlite

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/mesh-intelligence/userstamp/internal/schema"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

var (
	timeType    = reflect.TypeOf(time.Time{})
	timePtrType = reflect.TypeOf((*time.Time)(nil))
	actorIDType = reflect.TypeOf(types.ActorID{})
)

// Column names the backend maintains itself.
const (
	idColumn        = "id"
	createdAtColumn = "created_at"
	updatedAtColumn = "updated_at"
	deletedAtColumn = "deleted_at"
)

// column is a struct field persisted in a table column.
type column struct {
	name  string
	index []int
	typ   reflect.Type
}

// mapping binds an entity struct to the columns of its table. Only fields
// with a db tag are persisted.
type mapping struct {
	typ    reflect.Type
	cols   []*column
	byName map[string]*column
	id     *column
	autoID bool // integer identifiers assigned by the database
}

func newMapping(proto any) (*mapping, error) {
	pt := reflect.TypeOf(proto)
	if pt == nil || pt.Kind() != reflect.Pointer || pt.Elem().Kind() != reflect.Struct {
		return nil, types.ErrNotStruct
	}
	m := &mapping{typ: pt.Elem(), byName: make(map[string]*column)}
	for i := 0; i < m.typ.NumField(); i++ {
		f := m.typ.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		if !f.IsExported() || name == "" || name == "-" {
			continue
		}
		c := &column{name: name, index: f.Index, typ: f.Type}
		m.cols = append(m.cols, c)
		m.byName[name] = c
	}
	id, ok := m.byName[idColumn]
	if !ok {
		return nil, fmt.Errorf("%s has no %s column: %w", m.typ.Name(), idColumn, types.ErrInvalidData)
	}
	switch id.typ.Kind() {
	case reflect.Int, reflect.Int64:
		m.autoID = true
	case reflect.String:
	default:
		return nil, fmt.Errorf("%s id must be an integer or a string: %w", m.typ.Name(), types.ErrInvalidData)
	}
	m.id = id
	return m, nil
}

// names returns the column names of cols.
func names(cols []*column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

// columnType is the portable type used to create c.
func (c *column) columnType() schema.ColumnType {
	switch {
	case c.typ == actorIDType:
		return schema.Integer
	case c.typ == timeType, c.typ == timePtrType:
		return schema.Text
	}
	switch c.typ.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Bool:
		return schema.Integer
	}
	return schema.Text
}

// arg returns the driver argument for c in sv. Times are stored as
// RFC 3339 text so that both dialects read them back the same way.
func (c *column) arg(sv reflect.Value) any {
	fv := sv.FieldByIndex(c.index)
	switch v := fv.Interface().(type) {
	case time.Time:
		return formatTime(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return formatTime(*v)
	}
	return fv.Interface()
}

// dest returns a scan destination writing into c in sv.
func (c *column) dest(sv reflect.Value) any {
	return fieldScanner{field: sv.FieldByIndex(c.index)}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(src any) (time.Time, error) {
	switch v := src.(type) {
	case time.Time:
		return v, nil
	case string:
		return time.Parse(time.RFC3339Nano, v)
	case []byte:
		return time.Parse(time.RFC3339Nano, string(v))
	}
	return time.Time{}, fmt.Errorf("time column holds %T: %w", src, types.ErrInvalidData)
}

// fieldScanner adapts a struct field to sql.Scanner. NULL scans to the
// field's zero value.
type fieldScanner struct {
	field reflect.Value
}

func (f fieldScanner) Scan(src any) error {
	if sc, ok := f.field.Addr().Interface().(sql.Scanner); ok {
		return sc.Scan(src)
	}
	if src == nil {
		f.field.SetZero()
		return nil
	}
	switch f.field.Type() {
	case timeType:
		t, err := parseTime(src)
		if err != nil {
			return err
		}
		f.field.Set(reflect.ValueOf(t))
		return nil
	case timePtrType:
		t, err := parseTime(src)
		if err != nil {
			return err
		}
		f.field.Set(reflect.ValueOf(&t))
		return nil
	}
	switch f.field.Kind() {
	case reflect.String:
		var ns sql.NullString
		if err := ns.Scan(src); err != nil {
			return err
		}
		f.field.SetString(ns.String)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n sql.NullInt64
		if err := n.Scan(src); err != nil {
			return err
		}
		f.field.SetInt(n.Int64)
		return nil
	case reflect.Bool:
		var b sql.NullBool
		if err := b.Scan(src); err != nil {
			return err
		}
		f.field.SetBool(b.Bool)
		return nil
	}
	return fmt.Errorf("column of type %s: %w", f.field.Type(), types.ErrInvalidData)
}
