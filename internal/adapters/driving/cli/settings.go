package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.starsync/config.toml.

Examples:
  starsync settings show
  starsync settings set sheets.spreadsheet_id https://docs.google.com/spreadsheets/d/<id>/edit
  starsync settings set dedupe.mode text
  starsync settings unset extract.interval_minutes`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsUnsetCmd = &cobra.Command{
	Use:   "unset <key>",
	Short: "Restore a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsUnset,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the setting keys",
	RunE:  runSettingsKeys,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsUnsetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService, "settings service"); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Extraction]")
	cmd.Printf("  Page URL: %s\n", settings.Extraction.URL)
	cmd.Printf("  Max attempts: %d\n", settings.Extraction.MaxAttempts)
	cmd.Printf("  Timeout: %s\n", settings.Extraction.Timeout)
	cmd.Printf("  Interval: %s\n", settings.Extraction.Interval)
	cmd.Printf("  Browser: %s\n", orDefault(settings.Extraction.BrowserBin, "(bundled Chromium)"))
	cmd.Printf("  Headless: %t\n", settings.Extraction.Headless)
	cmd.Printf("  Profile: %s\n", orDefault(settings.Extraction.UserDataDir, "(temporary)"))
	cmd.Println()

	cmd.Println("[Dedupe]")
	cmd.Printf("  Mode: %s\n", settings.Dedupe.Description())
	cmd.Println()

	cmd.Println("[Sheets]")
	if settings.Sheets.IsConfigured() {
		cmd.Printf("  Spreadsheet: %s\n", settings.Sheets.SpreadsheetID)
	} else {
		cmd.Println("  Spreadsheet: (not set)")
	}
	cmd.Printf("  Sheet: %s\n", settings.Sheets.SheetName)
	cmd.Printf("  Mode: %s\n", settings.Sheets.Mode)
	cmd.Printf("  Auto sync: %t\n", settings.Sheets.AutoSync)
	cmd.Println()

	cmd.Println("[OAuth]")
	if settings.OAuth.IsConfigured() {
		cmd.Printf("  Client ID: %s\n", maskSecret(settings.OAuth.ClientID))
	} else {
		cmd.Println("  Client ID: (not set)")
	}
	if settings.OAuth.ClientSecret != "" {
		cmd.Printf("  Client secret: %s\n", maskSecret(settings.OAuth.ClientSecret))
	} else {
		cmd.Println("  Client secret: (not set)")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireService(settingsService, "settings service"); err != nil {
		return err
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) && !slices.Contains(settingsService.Keys(), key) {
			return fmt.Errorf("%w\nKnown keys: %s", err, strings.Join(settingsService.Keys(), ", "))
		}
		return err
	}

	cmd.Printf("%s updated.\n", key)
	return nil
}

func runSettingsUnset(cmd *cobra.Command, args []string) error {
	if err := requireService(settingsService, "settings service"); err != nil {
		return err
	}

	if err := settingsService.Unset(args[0]); err != nil {
		return err
	}
	cmd.Printf("%s restored to default.\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireService(settingsService, "settings service"); err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Key"})
	for _, k := range settingsService.Keys() {
		t.AppendRow(table.Row{k})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
	return nil
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// maskSecret shows only the ends of a credential.
func maskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
