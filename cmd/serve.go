// =============================================================================
// Payments Portal - Serve Command
// =============================================================================
//
// Runs the intake API next to the generated static site.
//
// COMMAND USAGE:
//   portal serve
//   PORTAL_STORAGE_DRIVER=redis PORTAL_STORAGE_REDIS_URL=redis://localhost:6379/0 portal serve
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/dln-law/payments-portal/internal/server"
	"github.com/dln-law/payments-portal/internal/storage"
)

// serveAddr overrides server.addr.
var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the payments intake API and the static site",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default server.addr)")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveAddr != "" {
		appConfig.Server.Addr = serveAddr
	}
	gin.SetMode(appConfig.Server.Mode)

	store, err := storage.FromConfig(ctx, appConfig.Storage)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("session storage ready", "driver", store.Driver)

	srv := server.New(server.Deps{
		Config: appConfig,
		Store:  store.Store,
		Logger: logger,
	})
	return srv.Run(ctx)
}
