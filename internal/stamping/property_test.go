package stamping

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// TestStampingProperties checks the lifecycle properties for arbitrary
// actor identifiers.
func TestStampingProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	s := New()
	if err := s.RegisterActorType("user", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(&types.Post{}, types.TypeOptions{}); err != nil {
		t.Fatal(err)
	}

	properties.Property("create stamps creator and modifier with the same actor", prop.ForAll(
		func(a int64) bool {
			p := &types.Post{}
			s.BeforeInsert(WithActor(context.Background(), "user", a), p)
			return p.CreatorID == types.IntID(a) && p.ModifierID == types.IntID(a)
		},
		gen.Int64(),
	))

	properties.Property("update keeps the creator and stamps the modifier", prop.ForAll(
		func(a, b int64) bool {
			p := &types.Post{}
			s.BeforeInsert(WithActor(context.Background(), "user", a), p)
			s.BeforeUpdate(WithActor(context.Background(), "user", b), p)
			return p.CreatorID == types.IntID(a) && p.ModifierID == types.IntID(b)
		},
		gen.Int64(),
		gen.Int64(),
	))

	properties.Property("string actors are stored as given", prop.ForAll(
		func(name string) bool {
			p := &types.Post{}
			s.BeforeInsert(WithActor(context.Background(), "user", name), p)
			return p.CreatorID == types.StringID(name)
		},
		gen.Identifier(),
	))

	properties.Property("suppressed contexts never stamp", prop.ForAll(
		func(a int64) bool {
			p := &types.Post{}
			ctx := Suppress(WithActor(context.Background(), "user", a), "post")
			s.BeforeInsert(ctx, p)
			s.BeforeUpdate(ctx, p)
			return p.CreatorID.IsZero() && p.ModifierID.IsZero()
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
