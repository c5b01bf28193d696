package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/userstamp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the tables over HTTP",
		Long: "Serve the tables over HTTP. Requests name their actor with the\n" +
			"X-Actor-ID header and, optionally, X-Actor-Type.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			backend, stamper, err := a.openBackend()
			if err != nil {
				return err
			}
			defer backend.Detach()

			srv := server.New(server.Config{
				Addr:             addr,
				DefaultActorType: a.cfg.ActorTypeOrDefault(),
				ReadTimeout:      15 * time.Second,
				WriteTimeout:     15 * time.Second,
			}, backend, stamper, a.log)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- srv.Start() }()
			select {
			case err := <-errc:
				if err != nil {
					return sysError("serve: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return sysError("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: listen_addr from config)")
	return cmd
}
