package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstamp/internal/schema"
)

func newColumnsCmd(a *app) *cobra.Command {
	var (
		compat  bool
		deleter bool
		table   string
		dialect string
	)
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Print the stamp columns a migration should add",
		Long: "Print the stamp column definitions named as the stamper expects them.\n" +
			"With --table, print ALTER TABLE statements instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("compat") {
				compat = a.cfg.CompatibilityMode
			}
			if dialect == "" {
				dialect = a.cfg.Backend
			}
			d, err := schema.DialectFor(dialect)
			if err != nil {
				return userError("%w", err)
			}

			cols := schema.Columns(compat, deleter)
			lines := schema.Definitions(d, cols)
			if table != "" {
				lines = schema.AddColumnsDDL(d, table, cols)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&compat, "compat", false, "use created_by_id style names (default from config)")
	cmd.Flags().BoolVar(&deleter, "deleter", false, "include the deleter column")
	cmd.Flags().StringVar(&table, "table", "", "emit ALTER TABLE statements for this table")
	cmd.Flags().StringVar(&dialect, "dialect", "", "sqlite or postgres (default: configured backend)")
	return cmd
}
