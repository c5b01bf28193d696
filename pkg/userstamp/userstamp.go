// Package userstamp records which actor created, last modified or deleted a
// persisted record.
//
// A Stamper is plugged into a persistence host as its lifecycle hooks. The
// acting user is bound per request with WithActor, or process-wide through
// the Stamper's registry, and is resolved lazily when a record is saved:
//
//	stamper := userstamp.New()
//	backend := sqlite.NewBackend(stamper)
//	...
//	ctx = userstamp.WithActor(ctx, "person", currentPerson)
//	posts.Set(ctx, "", &types.Post{Title: "hello"})
package userstamp

import (
	"context"

	"github.com/mesh-intelligence/userstamp/internal/stamping"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// Version is the module release.
const Version = "0.3.0"

// Stamper writes actor identifiers into registered record types.
type Stamper = stamping.Stamper

// Registry holds actor types and the process-wide current actors.
type Registry = stamping.Registry

// Option configures a Stamper.
type Option = stamping.Option

// Stamper options.
var (
	WithRegistry          = stamping.WithRegistry
	WithLogger            = stamping.WithLogger
	WithClock             = stamping.WithClock
	WithCompatibilityMode = stamping.WithCompatibilityMode
)

// New returns a Stamper with no registered types.
func New(opts ...Option) *Stamper { return stamping.New(opts...) }

// WithActor returns a context carrying v as the current actor for actorType.
func WithActor(ctx context.Context, actorType string, v any) context.Context {
	return stamping.WithActor(ctx, actorType, v)
}

// Suppress returns a context under which the named record types are not stamped.
func Suppress(ctx context.Context, typeNames ...string) context.Context {
	return stamping.Suppress(ctx, typeNames...)
}

// SuppressAll returns a context under which no record type is stamped.
func SuppressAll(ctx context.Context) context.Context {
	return stamping.SuppressAll(ctx)
}

// Lookup returns the actor recorded in record's role, typed as T.
func Lookup[T any](ctx context.Context, s *Stamper, record any, role types.Role) (T, bool) {
	return stamping.Lookup[T](ctx, s, record, role)
}
