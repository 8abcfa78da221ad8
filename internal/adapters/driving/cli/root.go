// Package cli implements the starsync command line using cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/starsync/internal/core/ports/driving"
	"github.com/custodia-labs/starsync/internal/logger"
)

// version is set at build time.
var version = "dev"

// Options are the global flags that affect how services are built.
type Options struct {
	DataDir   string
	ConfigDir string
}

// Services are the core services the commands drive.
// Close releases whatever the services hold open, and may be nil.
type Services struct {
	Settings    driving.SettingsService
	Extraction  driving.ExtractionService
	Words       driving.WordService
	Sync        driving.SyncOrchestrator
	Auth        driving.AuthService
	Scheduler   driving.Scheduler
	// WatchConfig reloads settings edited on disk until ctx is done. Optional.
	WatchConfig func(ctx context.Context) error
	Close       func() error
}

// Bootstrap builds the services once the global flags are parsed.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

// Services used by the commands. Tests assign these directly.
var (
	settingsService   driving.SettingsService
	extractionService driving.ExtractionService
	wordService       driving.WordService
	syncOrchestrator  driving.SyncOrchestrator
	authService       driving.AuthService
	scheduler         driving.Scheduler
	watchConfig       func(ctx context.Context) error
)

var (
	bootstrap     Bootstrap
	closeServices func() error
)

// Global flags.
var (
	verbose   bool
	dataDir   string
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "starsync",
	Short: "Collect your starred translations and export them to a spreadsheet",
	Long: `starsync reads the translations you starred on the saved-words page,
cleans and deduplicates them, keeps them in a local database and can export
them to a Google Sheets spreadsheet.

Run 'starsync extract' once by hand, or 'starsync daemon' to keep the word
list and the spreadsheet up to date in the background.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Database directory (default ~/.starsync/data)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Config directory (default ~/.starsync)")
}

// Execute runs the root command. boot is called before any command that
// needs services; v is the version reported by 'starsync version'.
func Execute(boot Bootstrap, v string) error {
	bootstrap = boot
	if v != "" {
		version = v
	}
	err := rootCmd.Execute()
	return errors.Join(err, teardown())
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || cmd == versionCmd {
		return nil
	}

	svc, err := bootstrap(cmd.Context(), Options{DataDir: dataDir, ConfigDir: configDir})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	settingsService = svc.Settings
	extractionService = svc.Extraction
	wordService = svc.Words
	syncOrchestrator = svc.Sync
	authService = svc.Auth
	scheduler = svc.Scheduler
	watchConfig = svc.WatchConfig
	closeServices = svc.Close
	return nil
}

// teardown closes the services. Post-run hooks are skipped when a command
// fails, so it runs after Execute instead.
func teardown() error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

// commandContext returns the command's context, or Background when run outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var errNotConfigured = errors.New("service not configured")

func requireService(svc any, name string) error {
	if svc == nil {
		return fmt.Errorf("%s %w", name, errNotConfigured)
	}
	return nil
}
