package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koopa0/rca-agent/internal/app"
	"github.com/koopa0/rca-agent/internal/config"
)

func newSyncCmd() *cobra.Command {
	var (
		logJSON bool
		debug   bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync RCA documents from the GCS bucket into the knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(logJSON, debug)
		},
	}
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")
	return cmd
}

func runSync(logJSON, debug bool) error {
	logger := newLogger(logJSON, debug)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close()

	stats, err := a.Sync.Run(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	fmt.Printf("Sync complete: %d processed, %d updated, %d skipped, %d errors\n",
		stats.Processed, stats.Updated, stats.Skipped, stats.Errors)
	return nil
}
