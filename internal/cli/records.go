package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstamp/pkg/types"
)

func newSetCmd(a *app) *cobra.Command {
	var (
		id    string
		actor actorFlags
	)
	cmd := &cobra.Command{
		Use:   "set <table> <json>",
		Short: "Create or update a record",
		Long: "Create a record from a JSON object, or with --id update an existing one.\n" +
			"The JSON is decoded over the stored record, so omitted fields keep their values.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := a.openBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			tbl, err := tableOf(backend, args[0])
			if err != nil {
				return err
			}
			ctx, err := actor.bind(cmd.Context(), backend, args[0])
			if err != nil {
				return err
			}

			rec := tbl.New()
			if id != "" {
				existing, err := tbl.Get(ctx, id)
				switch {
				case err == nil:
					rec = existing
				case !errors.Is(err, types.ErrNotFound):
					return lookupErr("get", err)
				}
			}
			if err := json.Unmarshal([]byte(args[1]), rec); err != nil {
				return userError("parse JSON: %w", err)
			}

			saved, err := tbl.Set(ctx, id, rec)
			if err != nil {
				return lookupErr("set", err)
			}
			got, err := tbl.Get(ctx, saved)
			if err != nil {
				return lookupErr("get", err)
			}
			return printJSON(cmd, got)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "record identifier (update, or insert with this id)")
	actor.register(cmd)
	return cmd
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Print a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := a.openBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			tbl, err := tableOf(backend, args[0])
			if err != nil {
				return err
			}
			rec, err := tbl.Get(cmd.Context(), args[1])
			if err != nil {
				return lookupErr("get", err)
			}
			return printJSON(cmd, rec)
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	var (
		limit       int
		withDeleted bool
		where       map[string]string
	)
	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := a.openBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			tbl, err := tableOf(backend, args[0])
			if err != nil {
				return err
			}
			filter := types.Filter{types.FilterWithDeleted: withDeleted}
			if limit > 0 {
				filter[types.FilterLimit] = limit
			}
			for k, v := range where {
				filter[k] = v
			}
			recs, err := tbl.Fetch(cmd.Context(), filter)
			if err != nil {
				return lookupErr("list", err)
			}
			return printJSON(cmd, recs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records")
	cmd.Flags().BoolVar(&withDeleted, "with-deleted", false, "include soft-deleted records")
	cmd.Flags().StringToStringVar(&where, "where", nil, "column=value equality filters")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var actor actorFlags
	cmd := &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a record",
		Long:  "Delete a record. Soft-deletable records are marked deleted and stamped with the deleter.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, _, err := a.openBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			tbl, err := tableOf(backend, args[0])
			if err != nil {
				return err
			}
			ctx, err := actor.bind(cmd.Context(), backend, args[0])
			if err != nil {
				return err
			}
			if err := tbl.Delete(ctx, args[1]); err != nil {
				return lookupErr("delete", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", args[0], args[1])
			return nil
		},
	}
	actor.register(cmd)
	return cmd
}

func newWhoisCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whois <table> <id> <creator|modifier|deleter>",
		Short: "Print the actor recorded in a stamp",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, ok := types.ParseRole(args[2])
			if !ok {
				return userError("role %q: %w", args[2], types.ErrInvalidRole)
			}
			backend, stamper, err := a.openBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			tbl, err := tableOf(backend, args[0])
			if err != nil {
				return err
			}
			rec, err := tbl.Get(cmd.Context(), args[1])
			if err != nil {
				return lookupErr("get", err)
			}
			actor, ok := stamper.Associated(cmd.Context(), rec, role)
			if !ok {
				if id, stored := stamper.StampedID(rec, role); stored {
					return userError("%s %s is recorded but not found", role, id)
				}
				return userError("no %s recorded", role)
			}
			return printJSON(cmd, actor)
		},
	}
}
