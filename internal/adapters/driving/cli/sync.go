package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Export stored words to the spreadsheet",
	Long: `Writes stored words to the spreadsheet set in sheets.spreadsheet_id.

In append mode only words that have not been exported yet are written.
In replace mode the sheet is cleared and every stored word is written.
Requires 'starsync auth login'.`,
	RunE: runSync,
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show export status",
	RunE:  runSyncStatus,
}

func init() {
	syncCmd.AddCommand(syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if err := requireService(syncOrchestrator, "sync service"); err != nil {
		return err
	}

	cmd.Println("Exporting to spreadsheet...")
	report, err := syncOrchestrator.Sync(commandContext(cmd))
	switch {
	case errors.Is(err, domain.ErrSyncDisabled):
		return fmt.Errorf("%w: run 'starsync settings set sheets.spreadsheet_id <id or url>'", err)
	case errors.Is(err, domain.ErrAuthRequired):
		return fmt.Errorf("%w: run 'starsync auth login'", err)
	case err != nil:
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("Wrote %s to %q (%s mode) in %s.\n",
		plural(report.RowsWritten, "row"), report.SheetName, report.Mode, report.Duration.Round(time.Millisecond))
	if report.Retries > 0 {
		cmd.Printf("Retried %d times after rate limiting or token expiry.\n", report.Retries)
	}
	return nil
}

func runSyncStatus(cmd *cobra.Command, _ []string) error {
	if err := requireService(syncOrchestrator, "sync service"); err != nil {
		return err
	}

	status, err := syncOrchestrator.Status(commandContext(cmd))
	if err != nil {
		return err
	}

	if status.Target == "" {
		cmd.Println("Target:       (not configured)")
	} else {
		cmd.Printf("Target:       %s\n", status.Target)
	}
	cmd.Printf("Running:      %t\n", status.Running)
	cmd.Printf("Not exported: %d\n", status.Pending)
	if status.LastSync == nil || status.LastSync.LastSync.IsZero() {
		cmd.Println("Last export:  never")
		return nil
	}
	cmd.Printf("Last export:  %s (%s, %s)\n",
		status.LastSync.LastSync.Local().Format(time.DateTime), status.LastSync.Mode, plural(status.LastSync.RowsWritten, "row"))
	return nil
}
