package stamping

import (
	"context"
	"fmt"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// SetStampingEnabled turns stamping on or off for a registered type.
// The flag is shared by every operation on the type in this process.
func (s *Stamper) SetStampingEnabled(typeName string, on bool) error {
	st, ok := s.lookupName(typeName)
	if !ok {
		return fmt.Errorf("stampable type %s: %w", typeName, types.ErrTypeNotRegistered)
	}
	st.enabled.Store(on)
	return nil
}

// StampingEnabled reports the type-wide flag. Unregistered types report false.
func (s *Stamper) StampingEnabled(typeName string) bool {
	st, ok := s.lookupName(typeName)
	return ok && st.enabled.Load()
}

// WithoutStamps runs fn with stamping disabled for typeName and restores the
// previous flag when fn returns, fails or panics. The flag is type-wide:
// concurrent operations on the same type are unstamped too while fn runs,
// and overlapping scopes from different goroutines may restore each other's
// values. Use Suppress to scope suppression to a single operation instead.
// fn runs normally when typeName is not registered.
func (s *Stamper) WithoutStamps(ctx context.Context, typeName string, fn func(ctx context.Context) error) error {
	st, ok := s.lookupName(typeName)
	if !ok {
		return fn(ctx)
	}
	prev := st.enabled.Swap(false)
	defer st.enabled.Store(prev)
	return fn(ctx)
}

type suppressKey struct{}

// suppression is immutable once stored on a context.
type suppression struct {
	all   bool
	names map[string]bool
}

// Suppress returns a context under which the named types are not stamped.
// Unlike WithoutStamps it touches no shared state, so it is safe for
// concurrent requests.
func Suppress(ctx context.Context, typeNames ...string) context.Context {
	return withSuppression(ctx, false, typeNames)
}

// SuppressAll returns a context under which no type is stamped.
func SuppressAll(ctx context.Context) context.Context {
	return withSuppression(ctx, true, nil)
}

func withSuppression(ctx context.Context, all bool, typeNames []string) context.Context {
	next := &suppression{all: all, names: make(map[string]bool)}
	if prev, ok := ctx.Value(suppressKey{}).(*suppression); ok {
		next.all = next.all || prev.all
		for n := range prev.names {
			next.names[n] = true
		}
	}
	for _, name := range typeNames {
		if key, ok := normalizeName(name); ok {
			next.names[key] = true
		}
	}
	return context.WithValue(ctx, suppressKey{}, next)
}

func suppressed(ctx context.Context, key string) bool {
	if ctx == nil {
		return false
	}
	sup, ok := ctx.Value(suppressKey{}).(*suppression)
	if !ok {
		return false
	}
	return sup.all || sup.names[key]
}
