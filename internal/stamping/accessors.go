package stamping

import (
	"context"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// Creator returns the actor that created record.
func (s *Stamper) Creator(ctx context.Context, record any) (any, bool) {
	return s.Associated(ctx, record, types.RoleCreator)
}

// Modifier returns the actor that last modified record.
func (s *Stamper) Modifier(ctx context.Context, record any) (any, bool) {
	return s.Associated(ctx, record, types.RoleModifier)
}

// Deleter returns the actor that deleted record.
func (s *Stamper) Deleter(ctx context.Context, record any) (any, bool) {
	return s.Associated(ctx, record, types.RoleDeleter)
}

// Associated looks up the actor stored in record's attribute for role using
// the finder of the type's actor type. It is evaluated on every call. An
// unregistered record type, a missing attribute, an unset identifier, an
// unknown actor type or a failed lookup all report absent.
func (s *Stamper) Associated(ctx context.Context, record any, role types.Role) (any, bool) {
	st, _, ok := s.lookupRecord(record)
	if !ok {
		return nil, false
	}
	id, ok := s.StampedID(record, role)
	if !ok {
		return nil, false
	}
	return s.registry.find(ctx, st.cfg.ActorType, id)
}

// StampedID returns the raw identifier stored in record's attribute for role.
func (s *Stamper) StampedID(record any, role types.Role) (types.ActorID, bool) {
	st, sv, ok := s.lookupRecord(record)
	if !ok {
		return types.ActorID{}, false
	}
	sl, ok := st.desc.slot(role)
	if !ok {
		return types.ActorID{}, false
	}
	return sl.get(sv)
}

// Lookup is Associated with a typed result. It reports absent when the
// finder returns a value of another type.
func Lookup[T any](ctx context.Context, s *Stamper, record any, role types.Role) (T, bool) {
	var zero T
	v, ok := s.Associated(ctx, record, role)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
