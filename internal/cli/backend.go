package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstamp/internal/sqlite"
	"github.com/mesh-intelligence/userstamp/internal/stamping"
	"github.com/mesh-intelligence/userstamp/pkg/types"
)

// openBackend attaches a backend with a fresh stamper configured from the
// loaded config.
func (a *app) openBackend() (*sqlite.Backend, *stamping.Stamper, error) {
	stamper := stamping.New(
		stamping.WithLogger(a.log),
		stamping.WithCompatibilityMode(a.cfg.CompatibilityMode),
	)
	backend := sqlite.NewBackend(stamper, sqlite.WithLogger(a.log))
	if err := backend.Attach(a.cfg); err != nil {
		if errors.Is(err, types.ErrBackendEmpty) || errors.Is(err, types.ErrBackendUnknown) || errors.Is(err, types.ErrDSNRequired) {
			return nil, nil, userError("invalid config: %w", err)
		}
		return nil, nil, sysError("attach: %w", err)
	}
	return backend, stamper, nil
}

// tableOf looks up a standard table, reporting unknown names as user errors.
func tableOf(backend *sqlite.Backend, name string) (types.Table, error) {
	tbl, err := backend.GetTable(name)
	if errors.Is(err, types.ErrTableNotFound) {
		return nil, userError("unknown table %q (valid: %v)", name, types.StandardTableNames)
	}
	if err != nil {
		return nil, sysError("get table: %w", err)
	}
	return tbl, nil
}

// actorFlags are the flags naming the acting actor of a write.
type actorFlags struct {
	as        string
	actorType string
}

func (f *actorFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.as, "as", "", "identifier of the acting actor")
	cmd.Flags().StringVar(&f.actorType, "actor-type", "", "actor type of --as (default: the table's actor type)")
}

// bind returns ctx with the --as actor bound for the table's actor type.
func (f *actorFlags) bind(ctx context.Context, backend *sqlite.Backend, table string) (context.Context, error) {
	if f.as == "" {
		return ctx, nil
	}
	id := types.ParseActorID(f.as)
	if id.IsZero() {
		return nil, userError("--as %q is not a valid identifier", f.as)
	}
	actorType := f.actorType
	if actorType == "" {
		cfg, err := backend.StampConfig(table)
		if err != nil {
			return nil, sysError("stamp config: %w", err)
		}
		actorType = cfg.ActorType
	}
	return stamping.WithActor(ctx, actorType, id), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return sysError("marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// lookupErr classifies a table error.
func lookupErr(op string, err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrInvalidID),
		errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidFilter):
		return userError("%s: %w", op, err)
	}
	return sysError("%s: %w", op, err)
}
