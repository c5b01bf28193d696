package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration and storage",
		Long:  "Write a default config.yaml if missing, then create the database tables.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			written, err := writeConfigIfMissing(a.configDir, a.cfg)
			if err != nil {
				return sysError("write config: %w", err)
			}
			if written {
				a.log.WithField("config_dir", a.configDir).Info("wrote default config")
			}

			backend, _, err := a.openBackend()
			if err != nil {
				return err
			}
			if err := backend.Detach(); err != nil {
				return sysError("finalize storage: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "userstamp initialized (%s, %s)\n", a.cfg.Backend, a.cfg.DataDir)
			return nil
		},
	}
}
