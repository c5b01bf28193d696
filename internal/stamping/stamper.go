// Package stamping records which actor created, last modified or deleted a
// record. A Stamper is plugged into a persistence host as its lifecycle
// Hooks; at each hook it resolves the current actor from a Registry and
// writes the actor's identifier into the attributes configured for the
// record's type.
//
// Stamping is best effort. A disabled type, a missing attribute, an unknown
// actor type or an unbound actor all skip the write silently, and no hook
// ever fails the surrounding save.
package stamping

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// Compile-time interface check.
var _ types.Stamper = (*Stamper)(nil)

// stampable is a registered record type.
type stampable struct {
	cfg     types.TypeConfig
	desc    *descriptor
	enabled atomic.Bool
}

// Stamper implements types.Stamper.
type Stamper struct {
	registry *Registry
	log      logrus.FieldLogger
	now      func() time.Time
	compat   atomic.Bool

	mu     sync.RWMutex
	byType map[reflect.Type]*stampable
	byName map[string]*stampable
}

// Option configures a Stamper.
type Option func(*Stamper)

// WithRegistry shares an existing actor Registry.
func WithRegistry(r *Registry) Option {
	return func(s *Stamper) { s.registry = r }
}

// WithLogger sets the logger used for skipped stamps and registrations.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Stamper) { s.log = l }
}

// WithClock sets the time source used when marking records deleted.
func WithClock(now func() time.Time) Option {
	return func(s *Stamper) { s.now = now }
}

// WithCompatibilityMode sets the initial compatibility flag.
func WithCompatibilityMode(on bool) Option {
	return func(s *Stamper) { s.compat.Store(on) }
}

// New returns a Stamper with no registered types.
func New(opts ...Option) *Stamper {
	s := &Stamper{
		now:    time.Now,
		byType: make(map[reflect.Type]*stampable),
		byName: make(map[string]*stampable),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.registry == nil {
		s.registry = NewRegistry()
	}
	if s.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		s.log = l
	}
	return s
}

// Registry returns the actor registry the Stamper resolves actors from.
func (s *Stamper) Registry() *Registry { return s.registry }

// RegisterActorType registers an actor type on the Stamper's registry.
func (s *Stamper) RegisterActorType(name string, find types.Finder) error {
	return s.registry.RegisterActorType(name, find)
}

// SetCompatibilityMode switches the default attribute names for types
// registered afterwards. Types already registered keep their names.
func (s *Stamper) SetCompatibilityMode(on bool) { s.compat.Store(on) }

// CompatibilityMode reports the current compatibility flag.
func (s *Stamper) CompatibilityMode() bool { return s.compat.Load() }

// Register configures the record type of proto for stamping. proto must be
// a pointer to a struct; the type is registered under its normalized struct
// name ("Post" as "post"). Stamping starts enabled.
func (s *Stamper) Register(proto any, opts types.TypeOptions) (types.TypeConfig, error) {
	pt := reflect.TypeOf(proto)
	if pt == nil || pt.Kind() != reflect.Pointer || pt.Elem().Kind() != reflect.Struct {
		return types.TypeConfig{}, types.ErrNotStruct
	}
	cfg := Resolve(pt.Elem().Name(), opts, s.compat.Load())
	if cfg.Name == "" {
		return types.TypeConfig{}, types.ErrInvalidName
	}
	desc, err := newDescriptor(proto, cfg)
	if err != nil {
		return types.TypeConfig{}, err
	}
	cfg.SoftDelete = desc.softDelete

	st := &stampable{cfg: cfg, desc: desc}
	st.enabled.Store(true)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byName[cfg.Name]; exists {
		return types.TypeConfig{}, fmt.Errorf("stampable type %s: %w", cfg.Name, types.ErrAlreadyRegistered)
	}
	s.byType[desc.typ] = st
	s.byName[cfg.Name] = st

	fields := logrus.Fields{"type": cfg.Name, "actor_type": cfg.ActorType}
	for _, role := range types.Roles {
		if sl, ok := desc.slot(role); ok {
			fields[string(role)] = sl.column
		}
	}
	s.log.WithFields(fields).Debug("registered stampable type")
	return cfg, nil
}

// Config returns the effective configuration of a registered type.
func (s *Stamper) Config(typeName string) (types.TypeConfig, bool) {
	st, ok := s.lookupName(typeName)
	if !ok {
		return types.TypeConfig{}, false
	}
	return st.cfg, true
}

func (s *Stamper) lookupName(typeName string) (*stampable, bool) {
	key, ok := normalizeName(typeName)
	if !ok {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.byName[key]
	return st, ok
}

func (s *Stamper) lookupRecord(record any) (*stampable, reflect.Value, bool) {
	t := reflect.TypeOf(record)
	if t == nil || t.Kind() != reflect.Pointer {
		return nil, reflect.Value{}, false
	}
	s.mu.RLock()
	st, ok := s.byType[t.Elem()]
	s.mu.RUnlock()
	if !ok {
		return nil, reflect.Value{}, false
	}
	sv, ok := st.desc.value(record)
	if !ok {
		return nil, reflect.Value{}, false
	}
	return st, sv, true
}

// BeforeInsert stamps the creator and then the modifier of a new record with
// the same current actor.
func (s *Stamper) BeforeInsert(ctx context.Context, record any) {
	s.stamp(ctx, record, types.RoleCreator, types.RoleModifier)
}

// BeforeUpdate stamps the modifier of an existing record.
func (s *Stamper) BeforeUpdate(ctx context.Context, record any) {
	s.stamp(ctx, record, types.RoleModifier)
}

// MarkDeleted stamps the deleter of a soft-deletable record and marks it
// deleted. It returns false, writing nothing, when the record is not
// soft-deletable; the host should then remove it physically. The deleted
// mark is applied even when the deleter stamp is skipped.
func (s *Stamper) MarkDeleted(ctx context.Context, record any) bool {
	sd, ok := record.(types.SoftDeletable)
	if !ok || isNil(record) {
		return false
	}
	s.stamp(ctx, record, types.RoleDeleter)
	sd.MarkDeleted(s.now())
	return true
}

// stamp writes the current actor into each role's attribute. The guards run
// in a fixed order and the first failing one ends the event for that role:
// stamping enabled, attribute present, actor resolvable. The actor is
// resolved at most once per event.
func (s *Stamper) stamp(ctx context.Context, record any, roles ...types.Role) {
	st, sv, ok := s.lookupRecord(record)
	if !ok {
		return
	}
	log := s.log.WithField("type", st.cfg.Name)
	if !st.enabled.Load() || suppressed(ctx, st.cfg.Name) {
		log.Debug("stamping disabled, skipping")
		return
	}

	var (
		actor    types.ActorID
		resolved bool
		written  []types.Role
	)
	for _, role := range roles {
		sl, ok := st.desc.slot(role)
		if !ok {
			log.WithField("role", role).Debug("no attribute for role, skipping")
			continue
		}
		if !resolved {
			id, ok := s.registry.Current(ctx, st.cfg.ActorType)
			if !ok {
				log.WithField("actor_type", st.cfg.ActorType).Debug("no current actor, skipping")
				return
			}
			actor, resolved = id, true
		}
		if !sl.set(sv, actor) {
			log.WithFields(logrus.Fields{"role": role, "column": sl.column, "actor": actor.String()}).
				Debug("actor id does not fit attribute, skipping")
			continue
		}
		written = append(written, role)
	}
	if len(written) > 0 {
		log.WithFields(logrus.Fields{"roles": written, "actor": actor.String()}).Debug("stamped")
	}
}
