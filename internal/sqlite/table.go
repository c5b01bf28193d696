package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// Compile-time interface check.
var _ types.Table = (*table)(nil)

// table implements types.Table for one standard table. Rows are hydrated
// into the entity struct through its mapping.
type table struct {
	backend *Backend
	name    string
	def     tableDef
	m       *mapping
	cfg     types.TypeConfig
}

// New returns a pointer to a zero entity of this table's type.
func (t *table) New() any { return t.def.proto() }

// Get retrieves an entity by ID, including soft-deleted ones.
// Returns ErrInvalidID if id is malformed, ErrNotFound if not found.
func (t *table) Get(ctx context.Context, id string) (any, error) {
	key, err := t.key(id)
	if err != nil {
		return nil, err
	}
	db, err := t.conn()
	if err != nil {
		return nil, err
	}
	return t.get(ctx, db, key)
}

// Set creates or updates an entity. Inserts run the stamper's BeforeInsert
// hook and updates its BeforeUpdate hook. Returns the entity ID.
func (t *table) Set(ctx context.Context, id string, data any) (string, error) {
	sv, ok := t.value(data)
	if !ok {
		return "", types.ErrInvalidData
	}
	db, err := t.conn()
	if err != nil {
		return "", err
	}

	if id == "" {
		id = t.idString(sv)
	}
	if id == "" {
		return t.insert(ctx, db, data, sv)
	}
	key, err := t.key(id)
	if err != nil {
		return "", err
	}
	t.setID(sv, key)

	var one int
	err = db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT 1 FROM %s WHERE %s = %s", t.name, idColumn, t.backend.dialect.Placeholder(1)), key,
	).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return t.insert(ctx, db, data, sv)
	case err != nil:
		return "", fmt.Errorf("checking %s %s: %w", t.name, id, err)
	}

	t.setTime(sv, updatedAtColumn, t.backend.now())
	t.backend.stamper.BeforeUpdate(ctx, data)
	if err := t.update(ctx, db, sv, key); err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes an entity by ID. Soft-deletable entities are marked deleted
// by the stamper and written back with a single update; other entities are
// removed. Returns ErrNotFound if no live entity has that ID.
func (t *table) Delete(ctx context.Context, id string) error {
	key, err := t.key(id)
	if err != nil {
		return err
	}
	db, err := t.conn()
	if err != nil {
		return err
	}
	rec, err := t.get(ctx, db, key)
	if err != nil {
		return err
	}
	if sd, ok := rec.(types.SoftDeletable); ok && sd.IsDeleted() {
		return types.ErrNotFound
	}

	log := t.backend.log.WithFields(logrus.Fields{"table": t.name, "id": id})
	if t.backend.stamper.MarkDeleted(ctx, rec) {
		sv, _ := t.value(rec)
		if err := t.update(ctx, db, sv, key); err != nil {
			return err
		}
		log.Debug("soft deleted")
		return nil
	}

	res, err := db.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = %s", t.name, idColumn, t.backend.dialect.Placeholder(1)), key)
	if err != nil {
		return fmt.Errorf("deleting %s %s: %w", t.name, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return types.ErrNotFound
	}
	log.Debug("deleted")
	return nil
}

// Fetch returns entities matching the filter, ordered by ID. Filter keys are
// column names compared for equality, plus FilterLimit and
// FilterWithDeleted. Returns ErrInvalidFilter for unknown keys.
func (t *table) Fetch(ctx context.Context, filter types.Filter) ([]any, error) {
	db, err := t.conn()
	if err != nil {
		return nil, err
	}

	var (
		where       []string
		args        []any
		limit       int64
		withDeleted bool
	)
	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		v := filter[key]
		switch key {
		case types.FilterLimit:
			n, ok := toInt64(v)
			if !ok || n < 0 {
				return nil, fmt.Errorf("limit %v: %w", v, types.ErrInvalidFilter)
			}
			limit = n
		case types.FilterWithDeleted:
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("with_deleted %v: %w", v, types.ErrInvalidFilter)
			}
			withDeleted = b
		default:
			if _, ok := t.m.byName[key]; !ok {
				return nil, fmt.Errorf("column %s: %w", key, types.ErrInvalidFilter)
			}
			args = append(args, v)
			where = append(where, key+" = "+t.backend.dialect.Placeholder(len(args)))
		}
	}
	if _, ok := t.m.byName[deletedAtColumn]; ok && !withDeleted {
		where = append(where, deletedAtColumn+" IS NULL")
	}

	query := t.selectSQL()
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY " + idColumn
	if limit > 0 {
		query += " LIMIT " + strconv.FormatInt(limit, 10)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", t.name, err)
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		rec := t.New()
		if err := rows.Scan(t.dests(rec)...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", t.name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", t.name, err)
	}
	if out == nil {
		out = []any{}
	}
	return out, nil
}

// conn returns the database handle, or ErrCupboardDetached.
func (t *table) conn() (*sql.DB, error) {
	t.backend.mu.RLock()
	defer t.backend.mu.RUnlock()
	if !t.backend.attached || t.backend.db == nil {
		return nil, types.ErrCupboardDetached
	}
	return t.backend.db, nil
}

func (t *table) get(ctx context.Context, db *sql.DB, key any) (any, error) {
	rec := t.New()
	err := db.QueryRowContext(ctx,
		t.selectSQL()+" WHERE "+idColumn+" = "+t.backend.dialect.Placeholder(1), key,
	).Scan(t.dests(rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s %v: %w", t.name, key, err)
	}
	return rec, nil
}

func (t *table) insert(ctx context.Context, db *sql.DB, data any, sv reflect.Value) (string, error) {
	now := t.backend.now()
	generated := false
	if !t.m.autoID && t.idString(sv) == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating UUID v7: %w", err)
		}
		t.setID(sv, id.String())
	} else if t.m.autoID && t.idString(sv) == "" {
		generated = true
	}
	t.setTime(sv, createdAtColumn, now)
	t.setTime(sv, updatedAtColumn, now)
	t.backend.stamper.BeforeInsert(ctx, data)

	var cols []*column
	for _, c := range t.m.cols {
		if c == t.m.id && generated {
			continue
		}
		cols = append(cols, c)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(names(cols), ", "), t.backend.dialect.Placeholders(1, len(cols)))
	args := t.args(sv, cols)

	if generated {
		var id int64
		if err := db.QueryRowContext(ctx, query+" RETURNING "+idColumn, args...).Scan(&id); err != nil {
			return "", fmt.Errorf("inserting %s: %w", t.name, err)
		}
		t.setID(sv, id)
	} else if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("inserting %s: %w", t.name, err)
	}
	return t.idString(sv), nil
}

// update writes every column except the ID, created_at and the creator
// attribute, which are only written on insert.
func (t *table) update(ctx context.Context, db *sql.DB, sv reflect.Value, key any) error {
	var (
		cols []*column
		sets []string
	)
	for _, c := range t.m.cols {
		if c == t.m.id || c.name == createdAtColumn || c.name == t.cfg.Creator {
			continue
		}
		cols = append(cols, c)
		sets = append(sets, c.name+" = "+t.backend.dialect.Placeholder(len(cols)))
	}
	args := append(t.args(sv, cols), key)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		t.name, strings.Join(sets, ", "), idColumn, t.backend.dialect.Placeholder(len(args)))
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("updating %s %v: %w", t.name, key, err)
	}
	return nil
}

func (t *table) selectSQL() string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(names(t.m.cols), ", "), t.name)
}

func (t *table) args(sv reflect.Value, cols []*column) []any {
	args := make([]any, len(cols))
	for i, c := range cols {
		args[i] = c.arg(sv)
	}
	return args
}

func (t *table) dests(rec any) []any {
	sv := reflect.ValueOf(rec).Elem()
	dests := make([]any, len(t.m.cols))
	for i, c := range t.m.cols {
		dests[i] = c.dest(sv)
	}
	return dests
}

// value returns the struct behind data when it is a non-nil pointer to the
// table's entity type.
func (t *table) value(data any) (reflect.Value, bool) {
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != t.m.typ {
		return reflect.Value{}, false
	}
	return rv.Elem(), true
}

// key converts an ID string to the table's key type.
func (t *table) key(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	if !t.m.autoID {
		return id, nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n <= 0 {
		return nil, types.ErrInvalidID
	}
	return n, nil
}

func (t *table) idString(sv reflect.Value) string {
	fv := sv.FieldByIndex(t.m.id.index)
	if t.m.autoID {
		if fv.Int() == 0 {
			return ""
		}
		return strconv.FormatInt(fv.Int(), 10)
	}
	return fv.String()
}

func (t *table) setID(sv reflect.Value, key any) {
	fv := sv.FieldByIndex(t.m.id.index)
	switch k := key.(type) {
	case int64:
		fv.SetInt(k)
	case string:
		fv.SetString(k)
	}
}

func (t *table) setTime(sv reflect.Value, name string, at time.Time) {
	c, ok := t.m.byName[name]
	if !ok || c.typ != timeType {
		return
	}
	sv.FieldByIndex(c.index).Set(reflect.ValueOf(at.UTC()))
}

// toInt64 accepts the integer forms a limit arrives in, including JSON numbers.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	}
	return 0, false
}
