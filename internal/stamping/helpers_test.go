package stamping

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// actorBook is an in-memory actor store used as a Finder.
type actorBook map[types.ActorID]any

func (b actorBook) find(_ context.Context, id types.ActorID) (any, error) {
	v, ok := b[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return v, nil
}

// fixture bundles a Stamper with users and people registered as actor types.
type fixture struct {
	stamper *Stamper
	logs    *test.Hook
	users   actorBook
	people  actorBook
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		logs: hook,
		users: actorBook{
			types.IntID(1): &types.User{ID: 1, Name: "zeus"},
			types.IntID(2): &types.User{ID: 2, Name: "hera"},
		},
		people: actorBook{
			types.IntID(1): &types.Person{ID: 1, Name: "delynn"},
			types.IntID(2): &types.Person{ID: 2, Name: "nicole"},
		},
	}
	f.stamper = New(append([]Option{WithLogger(logger)}, opts...)...)
	require.NoError(t, f.stamper.RegisterActorType("users", f.users.find))
	require.NoError(t, f.stamper.RegisterActorType("people", f.people.find))
	return f
}

func (f *fixture) register(t *testing.T, proto any, opts types.TypeOptions) types.TypeConfig {
	t.Helper()
	cfg, err := f.stamper.Register(proto, opts)
	require.NoError(t, err)
	return cfg
}
