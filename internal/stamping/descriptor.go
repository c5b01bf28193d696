package stamping

import (
	"database/sql"
	"reflect"
	"strings"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

var (
	actorIDType       = reflect.TypeOf(types.ActorID{})
	nullInt64Type     = reflect.TypeOf(sql.NullInt64{})
	nullStringType    = reflect.TypeOf(sql.NullString{})
	softDeletableType = reflect.TypeOf((*types.SoftDeletable)(nil)).Elem()
)

// slot is a writable stamp attribute of a record struct, located once at
// registration time.
type slot struct {
	column string
	index  []int
	typ    reflect.Type
}

// descriptor maps the stamp roles of one record type to struct fields.
type descriptor struct {
	typ        reflect.Type // struct type, not the pointer
	slots      map[types.Role]*slot
	softDelete bool
}

// newDescriptor reflects over proto, which must be a pointer to a struct,
// and locates the fields backing the attributes named in cfg. Attributes
// without a matching field of a supported type get no slot.
func newDescriptor(proto any, cfg types.TypeConfig) (*descriptor, error) {
	pt := reflect.TypeOf(proto)
	if pt == nil || pt.Kind() != reflect.Pointer || pt.Elem().Kind() != reflect.Struct {
		return nil, types.ErrNotStruct
	}
	d := &descriptor{
		typ:        pt.Elem(),
		slots:      make(map[types.Role]*slot),
		softDelete: pt.Implements(softDeletableType),
	}
	fields := columnFields(d.typ)
	for _, role := range types.Roles {
		column := cfg.Attribute(role)
		f, ok := fields[column]
		if !ok || !slotSupported(f.Type) {
			continue
		}
		d.slots[role] = &slot{column: column, index: f.Index, typ: f.Type}
	}
	return d, nil
}

// slot returns the slot for role, if the record type has one.
func (d *descriptor) slot(role types.Role) (*slot, bool) {
	s, ok := d.slots[role]
	return s, ok
}

// value returns the addressable struct value behind record, or false when
// record is not a non-nil pointer to the described type.
func (d *descriptor) value(record any) (reflect.Value, bool) {
	rv := reflect.ValueOf(record)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Type() != d.typ {
		return reflect.Value{}, false
	}
	return rv.Elem(), true
}

// columnFields indexes the exported fields of t by column name, descending
// into embedded structs. The column name is the first part of the db tag, or
// the snake-cased field name when there is no tag.
func columnFields(t reflect.Type) map[string]reflect.StructField {
	out := make(map[string]reflect.StructField)
	var walk func(t reflect.Type, index []int)
	walk = func(t reflect.Type, index []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			idx := append(append([]int(nil), index...), i)
			tag, hasTag := f.Tag.Lookup("db")
			name, _, _ := strings.Cut(tag, ",")
			if name == "-" {
				continue
			}
			if f.Anonymous && f.Type.Kind() == reflect.Struct && !hasTag {
				walk(f.Type, idx)
				continue
			}
			if !f.IsExported() {
				continue
			}
			if name == "" {
				name = snakeCase(f.Name)
			}
			if _, dup := out[name]; dup {
				continue
			}
			f.Index = idx
			out[name] = f
		}
	}
	walk(t, nil)
	return out
}

func slotSupported(t reflect.Type) bool {
	switch t {
	case actorIDType, nullInt64Type, nullStringType:
		return true
	}
	switch t.Kind() {
	case reflect.Pointer:
		return t.Elem() == actorIDType || scalarKind(t.Elem().Kind())
	case reflect.Interface:
		return t.NumMethod() == 0
	}
	return scalarKind(t.Kind())
}

func scalarKind(k reflect.Kind) bool {
	switch k {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

// set writes id into the slot of the struct value sv. It returns false and
// leaves the field untouched when id cannot be represented in the field's
// type, for example a name written to an integer column.
func (s *slot) set(sv reflect.Value, id types.ActorID) bool {
	fv := sv.FieldByIndex(s.index)
	switch s.typ {
	case actorIDType:
		fv.Set(reflect.ValueOf(id))
		return true
	case nullInt64Type:
		n, ok := id.Int64()
		if !ok {
			return false
		}
		fv.Set(reflect.ValueOf(sql.NullInt64{Int64: n, Valid: true}))
		return true
	case nullStringType:
		fv.Set(reflect.ValueOf(sql.NullString{String: id.String(), Valid: true}))
		return true
	}
	switch s.typ.Kind() {
	case reflect.Interface:
		fv.Set(reflect.ValueOf(id))
		return true
	case reflect.Pointer:
		elem := reflect.New(s.typ.Elem())
		if !setScalar(elem.Elem(), id) {
			return false
		}
		fv.Set(elem)
		return true
	}
	return setScalar(fv, id)
}

func setScalar(fv reflect.Value, id types.ActorID) bool {
	if fv.Type() == actorIDType {
		fv.Set(reflect.ValueOf(id))
		return true
	}
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(id.String())
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := id.Int64()
		if !ok || fv.OverflowInt(n) {
			return false
		}
		fv.SetInt(n)
		return true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := id.Int64()
		if !ok || n < 0 || fv.OverflowUint(uint64(n)) {
			return false
		}
		fv.SetUint(uint64(n))
		return true
	}
	return false
}

// get reads the identifier stored in the slot. Zero values, nil pointers,
// invalid nulls and empty strings count as unset.
func (s *slot) get(sv reflect.Value) (types.ActorID, bool) {
	fv := sv.FieldByIndex(s.index)
	switch s.typ {
	case actorIDType:
		id := fv.Interface().(types.ActorID)
		return id, !id.IsZero()
	case nullInt64Type:
		n := fv.Interface().(sql.NullInt64)
		return types.IntID(n.Int64), n.Valid
	case nullStringType:
		ns := fv.Interface().(sql.NullString)
		if !ns.Valid {
			return types.ActorID{}, false
		}
		id := types.ParseActorID(ns.String)
		return id, !id.IsZero()
	}
	switch s.typ.Kind() {
	case reflect.Interface:
		if fv.IsNil() {
			return types.ActorID{}, false
		}
		return ResolveActor(fv.Interface())
	case reflect.Pointer:
		if fv.IsNil() {
			return types.ActorID{}, false
		}
		return getScalar(fv.Elem())
	}
	return getScalar(fv)
}

func getScalar(fv reflect.Value) (types.ActorID, bool) {
	if fv.Type() == actorIDType {
		id := fv.Interface().(types.ActorID)
		return id, !id.IsZero()
	}
	switch fv.Kind() {
	case reflect.String:
		id := types.ParseActorID(fv.String())
		return id, !id.IsZero()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if fv.Int() == 0 {
			return types.ActorID{}, false
		}
		return types.IntID(fv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if fv.Uint() == 0 {
			return types.ActorID{}, false
		}
		return uintID(fv.Uint()), true
	}
	return types.ActorID{}, false
}
