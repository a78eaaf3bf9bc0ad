package serve

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"lyre-server/internal/app"
	"lyre-server/internal/config"
)

var configFile string

func init() {
	Cmd.Flags().StringVarP(&configFile, "config", "c", "lyre.yaml", "optional yaml overrides file")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the transcription server",
	Long: `Run the HTTP API together with the background job poller.

Configuration comes from LYRE_* environment variables (a .env file is loaded
when present); the yaml file given with --config can override polling and
provider tuning.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		if err := config.ApplyFile(cfg, configFile); err != nil {
			return err
		}
		return run(cmd.Context(), cfg)
	},
}

func run(ctx context.Context, cfg *config.Config) error {
	application, cleanup, err := app.InitializeApp(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer cleanup()

	logger := application.Logger

	// Jobs left non-terminal by a previous run must keep getting polled, so
	// the manager starts right away when any are found. Otherwise it waits
	// for the first submission or SSE subscriber.
	if active, err := application.Store.Jobs().FindActive(ctx); err != nil {
		logger.Warn("checking for unfinished jobs failed", zap.Error(err))
	} else if len(active) > 0 {
		logger.Info("resuming polling for unfinished jobs", zap.Int("count", len(active)))
		application.Manager.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("signal received, shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
