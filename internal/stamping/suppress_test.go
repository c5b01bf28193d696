package stamping

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

func TestWithoutStamps_CreateLeavesAttributesUnset(t *testing.T) {
	f := newFixture(t)
	f.register(t, &types.Post{}, types.TypeOptions{})
	f.stamper.Registry().SetCurrent("user", 5)

	post := &types.Post{}
	err := f.stamper.WithoutStamps(context.Background(), "Post", func(ctx context.Context) error {
		assert.False(t, f.stamper.StampingEnabled("post"))
		f.stamper.BeforeInsert(ctx, post)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, post.CreatorID.IsZero())
	assert.True(t, post.ModifierID.IsZero())
	assert.True(t, f.stamper.StampingEnabled("post"), "flag restored after scope")

	f.stamper.BeforeInsert(context.Background(), post)
	assert.Equal(t, types.IntID(5), post.CreatorID)
}

func TestWithoutStamps_RestoresOnError(t *testing.T) {
	f := newFixture(t)
	f.register(t, &types.Post{}, types.TypeOptions{})
	boom := errors.New("boom")

	err := f.stamper.WithoutStamps(context.Background(), "posts", func(context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, f.stamper.StampingEnabled("post"))
}

func TestWithoutStamps_RestoresOnPanic(t *testing.T) {
	f := newFixture(t)
	f.register(t, &types.Post{}, types.TypeOptions{})

	assert.Panics(t, func() {
		_ = f.stamper.WithoutStamps(context.Background(), "post", func(context.Context) error {
			panic("save exploded")
		})
	})
	assert.True(t, f.stamper.StampingEnabled("post"))
}

func TestWithoutStamps_RestoresPriorDisabledState(t *testing.T) {
	f := newFixture(t)
	f.register(t, &types.Post{}, types.TypeOptions{})
	require.NoError(t, f.stamper.SetStampingEnabled("post", false))

	require.NoError(t, f.stamper.WithoutStamps(context.Background(), "post", func(context.Context) error {
		return nil
	}))
	assert.False(t, f.stamper.StampingEnabled("post"), "a disabled type stays disabled")
}

func TestWithoutStamps_Nested(t *testing.T) {
	f := newFixture(t)
	f.register(t, &types.Post{}, types.TypeOptions{})

	err := f.stamper.WithoutStamps(context.Background(), "post", func(ctx context.Context) error {
		return f.stamper.WithoutStamps(ctx, "post", func(context.Context) error {
			assert.False(t, f.stamper.StampingEnabled("post"))
			return nil
		})
	})
	require.NoError(t, err)
	assert.True(t, f.stamper.StampingEnabled("post"))
}

func TestWithoutStamps_UnregisteredTypeStillRuns(t *testing.T) {
	f := newFixture(t)
	ran := false
	require.NoError(t, f.stamper.WithoutStamps(context.Background(), "ghost", func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
	assert.ErrorIs(t, f.stamper.SetStampingEnabled("ghost", true), types.ErrTypeNotRegistered)
}

func TestSuppress(t *testing.T) {
	f := newFixture(t)
	f.register(t, &types.Post{}, types.TypeOptions{})
	f.register(t, &types.Comment{}, types.TypeOptions{
		CreatorAttribute:  "created_by_id",
		ModifierAttribute: "updated_by_id",
		DeleterAttribute:  "deleted_by_id",
	})
	base := WithActor(context.Background(), "user", 1)

	ctx := Suppress(base, "posts")
	post, comment := &types.Post{}, &types.Comment{}
	f.stamper.BeforeInsert(ctx, post)
	f.stamper.BeforeInsert(ctx, comment)
	assert.True(t, post.CreatorID.IsZero())
	assert.Equal(t, types.IntID(1), comment.CreatedByID, "only the named type is suppressed")

	other := &types.Comment{}
	f.stamper.BeforeInsert(SuppressAll(ctx), other)
	assert.True(t, other.CreatedByID.IsZero())
	assert.True(t, other.UpdatedByID.IsZero())

	f.stamper.BeforeInsert(base, post)
	assert.Equal(t, types.IntID(1), post.CreatorID, "suppression does not leak to the parent context")
	assert.True(t, f.stamper.StampingEnabled("post"))
}
