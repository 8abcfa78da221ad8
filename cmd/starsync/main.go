// Command starsync collects starred translations and exports them to Google Sheets.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/starsync/internal/adapters/driven/auth"
	"github.com/custodia-labs/starsync/internal/adapters/driven/browser"
	"github.com/custodia-labs/starsync/internal/adapters/driven/config/file"
	driveoauth "github.com/custodia-labs/starsync/internal/adapters/driven/oauth"
	"github.com/custodia-labs/starsync/internal/adapters/driven/sheets"
	"github.com/custodia-labs/starsync/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/starsync/internal/adapters/driving/cli"
	"github.com/custodia-labs/starsync/internal/adapters/driving/oauth"
	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/core/services"
	"github.com/custodia-labs/starsync/internal/extractors/savedwords"
	"github.com/custodia-labs/starsync/internal/logger"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(bootstrap, version); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// bootstrap builds every adapter and service from the stored settings.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	store, err := sqlite.NewStore(opts.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("Database: %s", store.Path())

	// Without an OAuth client, sign-in and export report ErrOAuthNotConfigured.
	var identity driven.IdentityProvider
	if settings.OAuth.IsConfigured() {
		google, err := driveoauth.NewGoogleProvider(driveoauth.Config{
			ClientID:     settings.OAuth.ClientID,
			ClientSecret: settings.OAuth.ClientSecret,
		})
		if err != nil {
			store.Close()
			return nil, err
		}
		identity = google
	}

	tokens := auth.NewOAuthTokenProvider(store.CredentialsStore(), identity)
	sheetsClient, err := sheets.NewClient(ctx, tokens)
	if err != nil {
		store.Close()
		return nil, err
	}

	pageBrowser := browser.New(browser.Config{
		Bin:         settings.Extraction.BrowserBin,
		Headless:    settings.Extraction.Headless,
		UserDataDir: settings.Extraction.UserDataDir,
	})

	extraction := services.NewExtractionService(pageBrowser, savedwords.New(), store.WordStore(), settingsService)
	syncOrch := services.NewSyncOrchestrator(sheetsClient, tokens, store.WordStore(), store.SyncStateStore(), settingsService)
	authService := services.NewAuthService(identity, store.CredentialsStore(), tokens, oauth.NewFactory(0))
	scheduler := services.NewScheduler(
		domain.SchedulerConfigFromSettings(*settings),
		store.SchedulerStore(),
		extraction,
		syncOrch,
		authService,
	)

	return &cli.Services{
		Settings:   settingsService,
		Extraction: extraction,
		Words:      services.NewWordService(store.WordStore()),
		Sync:       syncOrch,
		Auth:       authService,
		Scheduler:  scheduler,
		WatchConfig: func(ctx context.Context) error {
			return configStore.Watch(ctx, func() {
				logger.Info("Settings reloaded from %s", configStore.Path())
			})
		},
		Close: func() error {
			return errors.Join(pageBrowser.Close(), store.Close())
		},
	}, nil
}
