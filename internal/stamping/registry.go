package stamping

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"sync"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// actorType is a registered kind of actor, such as "user" or "person".
type actorType struct {
	key  string
	name string
	find types.Finder
}

// Registry holds the known actor types and the process-wide current actor
// binding per actor type. Context bindings made with WithActor take
// precedence over the process-wide slots, so request handlers should prefer
// WithActor: the slots are shared by every goroutine in the process.
type Registry struct {
	mu      sync.RWMutex
	types   map[string]*actorType
	current map[string]any
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		types:   make(map[string]*actorType),
		current: make(map[string]any),
	}
}

// RegisterActorType makes an actor type resolvable. find may be nil, in which
// case association accessors for this type always report absent.
// Returns ErrInvalidName for an empty name and ErrAlreadyRegistered when the
// normalized name is taken.
func (r *Registry) RegisterActorType(name string, find types.Finder) error {
	key, ok := normalizeName(name)
	if !ok {
		return types.ErrInvalidName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[key]; exists {
		return fmt.Errorf("actor type %s: %w", key, types.ErrAlreadyRegistered)
	}
	r.types[key] = &actorType{key: key, name: displayName(key), find: find}
	return nil
}

// ActorTypeName resolves a type token ("people", "Person") to the display
// name of a registered actor type ("Person"). It returns false when no such
// type exists.
func (r *Registry) ActorTypeName(name string) (string, bool) {
	at, ok := r.lookupType(name)
	if !ok {
		return "", false
	}
	return at.name, true
}

func (r *Registry) lookupType(name string) (*actorType, bool) {
	key, ok := normalizeName(name)
	if !ok {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	at, ok := r.types[key]
	return at, ok
}

// SetCurrent binds v as the process-wide current actor for actorType,
// replacing any previous binding. v may be an Actor, an ActorID, an integer
// or a string; it is stored as given and resolved when a stamp is written.
// A nil v clears the binding.
func (r *Registry) SetCurrent(actorType string, v any) {
	key, ok := normalizeName(actorType)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if v == nil {
		delete(r.current, key)
		return
	}
	r.current[key] = v
}

// ClearCurrent removes the process-wide binding for actorType.
func (r *Registry) ClearCurrent(actorType string) {
	r.SetCurrent(actorType, nil)
}

// Current returns the identifier of the current actor for actorType.
// A binding on ctx wins over the process-wide slot. It returns false when
// the actor type is not registered, nothing is bound, or the bound value has
// no identifier yet.
func (r *Registry) Current(ctx context.Context, actorType string) (types.ActorID, bool) {
	at, ok := r.lookupType(actorType)
	if !ok {
		return types.ActorID{}, false
	}
	if v, ok := boundActor(ctx, at.key); ok {
		return ResolveActor(v)
	}
	r.mu.RLock()
	v, ok := r.current[at.key]
	r.mu.RUnlock()
	if !ok {
		return types.ActorID{}, false
	}
	return ResolveActor(v)
}

// find looks up the actor entity for id. Any failure reports absent.
func (r *Registry) find(ctx context.Context, actorType string, id types.ActorID) (any, bool) {
	at, ok := r.lookupType(actorType)
	if !ok || at.find == nil || id.IsZero() {
		return nil, false
	}
	entity, err := at.find(ctx, id)
	if err != nil || isNil(entity) {
		return nil, false
	}
	return entity, true
}

type actorKey struct{ actorType string }

// WithActor returns a context carrying v as the current actor for actorType.
// The binding is visible only to operations that receive the returned
// context.
func WithActor(ctx context.Context, actorType string, v any) context.Context {
	key, ok := normalizeName(actorType)
	if !ok {
		return ctx
	}
	return context.WithValue(ctx, actorKey{key}, v)
}

func boundActor(ctx context.Context, key string) (any, bool) {
	if ctx == nil {
		return nil, false
	}
	v := ctx.Value(actorKey{key})
	if v == nil {
		return nil, false
	}
	return v, true
}

// ResolveActor extracts an identifier from an actor reference. Actors yield
// their StampID, identifiers and integers are taken as they are, and
// non-empty strings become string identifiers. Anything else, including nil
// pointers, resolves to false.
func ResolveActor(v any) (types.ActorID, bool) {
	if isNil(v) {
		return types.ActorID{}, false
	}
	switch x := v.(type) {
	case types.ActorID:
		return x, !x.IsZero()
	case *types.ActorID:
		return *x, !x.IsZero()
	case types.Actor:
		id, ok := x.StampID()
		return id, ok && !id.IsZero()
	case int:
		return types.IntID(int64(x)), true
	case int8:
		return types.IntID(int64(x)), true
	case int16:
		return types.IntID(int64(x)), true
	case int32:
		return types.IntID(int64(x)), true
	case int64:
		return types.IntID(x), true
	case uint:
		return uintID(uint64(x)), true
	case uint8:
		return types.IntID(int64(x)), true
	case uint16:
		return types.IntID(int64(x)), true
	case uint32:
		return types.IntID(int64(x)), true
	case uint64:
		return uintID(x), true
	case string:
		id := types.StringID(x)
		return id, !id.IsZero()
	}
	return types.ActorID{}, false
}

func uintID(n uint64) types.ActorID {
	if n > math.MaxInt64 {
		return types.StringID(strconv.FormatUint(n, 10))
	}
	return types.IntID(int64(n))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
