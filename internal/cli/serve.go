package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/camuig/tradebook/internal/web"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != 0 {
				app.Config.Web.Port = port
			}
			log := app.Logger

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			j, err := app.Journal(ctx)
			if err != nil {
				return err
			}
			server := web.NewServer(j, app.Coach(), app.Config, log)

			errCh := make(chan error, 1)
			go func() {
				errCh <- server.Start()
			}()

			log.Info("tradebook started",
				"addr", app.Config.Addr(),
				"storage", app.Config.Storage.Driver,
				"telegram", app.Notifier.Enabled())
			app.Notifier.NotifyStatus(fmt.Sprintf("📒 Tradebook started on %s", app.Config.Addr()))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				log.Info("shutdown signal received")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("web server shutdown error", "error", err)
			}

			app.Notifier.NotifyStatus("🛑 Tradebook stopped")
			log.Info("tradebook stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides web.port)")
	return cmd
}
