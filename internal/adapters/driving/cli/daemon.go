package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/starsync/internal/logger"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run extraction and export in the background",
	Long: `Runs the scheduler in the foreground until interrupted.

Words are extracted every extract.interval_minutes. When sheets.auto_sync is
on they are also exported on the same interval, and the OAuth token is
refreshed before it expires.`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	if err := requireService(scheduler, "scheduler"); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.SetTimestamps(true)
	defer logger.SetTimestamps(false)
	cmd.Println("starsync daemon started. Press Ctrl+C to stop.")

	if watchConfig != nil {
		go func() {
			if err := watchConfig(ctx); err != nil {
				logger.Warn("Settings changes need a restart: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- scheduler.Start(ctx)
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		logger.Info("Shutting down, waiting for running tasks")
		err = <-errCh
	}

	// Start returns on cancellation without waiting for tasks in flight.
	if stopErr := scheduler.Stop(); stopErr != nil {
		return stopErr
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("starsync daemon stopped.")
	return nil
}
