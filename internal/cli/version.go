package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstamp/pkg/userstamp"
)

const modulePath = "github.com/mesh-intelligence/userstamp"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the userstamp version",
		// Version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "userstamp v%s\nmodule: %s\n", userstamp.Version, modulePath)
			return nil
		},
	}
}
