package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract starred words from the saved-words page",
	Long: `Opens the saved-words page in a hidden browser tab, reads the starred
translations, cleans and deduplicates them and merges them into the local
word list.

The browser profile set in browser.user_data_dir must be signed in to the
page. With --sync the words are exported to the spreadsheet afterwards.`,
	RunE: runExtract,
}

var extractSync bool

func init() {
	extractCmd.Flags().BoolVar(&extractSync, "sync", false, "Export to the spreadsheet after extracting")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	if err := requireService(extractionService, "extraction service"); err != nil {
		return err
	}
	ctx := commandContext(cmd)

	cmd.Println("Extracting starred words...")
	report, err := extractionService.Run(ctx)
	if errors.Is(err, domain.ErrAuthRequired) {
		return fmt.Errorf("%w: sign in to the saved-words page in the browser profile first", err)
	}
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	cmd.Printf("Found %d words using the %s strategy (attempt %d).\n", report.Found, report.Strategy, report.Attempts)
	if report.Discarded > 0 {
		cmd.Printf("Discarded %d invalid entries.\n", report.Discarded)
	}
	if report.Duplicates > 0 {
		cmd.Printf("Skipped %d duplicates.\n", report.Duplicates)
	}
	cmd.Printf("Added %d new words, %d stored in total.\n", report.Added, report.Total)

	if !extractSync {
		return nil
	}
	return runSync(cmd, nil)
}
