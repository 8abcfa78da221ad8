package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/starsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/starsync/internal/core/services"
)

// execute runs the root command with args and returns everything it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	// Flag variables outlive a single Execute.
	verbose, dataDir, configDir = false, "", ""
	wordsPair, wordsUnsynced, wordsYes = "", false, false
	extractSync, authNoBrowser = false, false

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// withServices installs services for one test and restores the previous ones.
func withServices(t *testing.T, svc Services) {
	t.Helper()
	old := Services{
		Settings:    settingsService,
		Extraction:  extractionService,
		Words:       wordService,
		Sync:        syncOrchestrator,
		Auth:        authService,
		Scheduler:   scheduler,
		WatchConfig: watchConfig,
	}
	settingsService = svc.Settings
	extractionService = svc.Extraction
	wordService = svc.Words
	syncOrchestrator = svc.Sync
	authService = svc.Auth
	scheduler = svc.Scheduler
	watchConfig = svc.WatchConfig
	t.Cleanup(func() {
		settingsService = old.Settings
		extractionService = old.Extraction
		wordService = old.Words
		syncOrchestrator = old.Sync
		authService = old.Auth
		scheduler = old.Scheduler
		watchConfig = old.WatchConfig
	})
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "starsync", rootCmd.Use)
	for _, name := range []string{"verbose", "data-dir", "config-dir"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), name)
	}
}

func TestRootCmd_HasCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"extract", "words", "sync", "auth", "settings", "daemon", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestExecute_BootstrapReceivesFlags(t *testing.T) {
	withServices(t, Services{})
	settings := services.NewSettingsService(memory.NewConfigStore())

	var got Options
	closed := false
	boot := func(_ context.Context, opts Options) (*Services, error) {
		got = opts
		return &Services{
			Settings: settings,
			Close: func() error {
				closed = true
				return nil
			},
		}, nil
	}
	t.Cleanup(func() { bootstrap = nil })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"settings", "show", "--data-dir", "/tmp/d", "--config-dir", "/tmp/c"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, Execute(boot, ""))
	assert.Equal(t, Options{DataDir: "/tmp/d", ConfigDir: "/tmp/c"}, got)
	assert.True(t, closed)
	assert.Contains(t, buf.String(), "Current Settings")
}

func TestExecute_BootstrapError(t *testing.T) {
	withServices(t, Services{})
	boot := func(context.Context, Options) (*Services, error) {
		return nil, errors.New("database locked")
	}
	t.Cleanup(func() { bootstrap = nil })

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"words", "count"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	err := Execute(boot, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database locked")
}

func TestExecute_VersionSkipsBootstrap(t *testing.T) {
	called := false
	boot := func(context.Context, Options) (*Services, error) {
		called = true
		return &Services{}, nil
	}
	t.Cleanup(func() { bootstrap = nil })
	originalVersion := version
	t.Cleanup(func() { version = originalVersion })

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, Execute(boot, "1.2.3"))
	assert.False(t, called)
	assert.Contains(t, buf.String(), "starsync version 1.2.3")
}

func TestCommands_WithoutServices(t *testing.T) {
	withServices(t, Services{})

	for _, args := range [][]string{
		{"extract"}, {"words", "list"}, {"words", "count"}, {"sync"},
		{"auth", "status"}, {"settings", "show"}, {"daemon"},
	} {
		_, err := execute(t, "", args...)
		require.Error(t, err, args)
		assert.ErrorIs(t, err, errNotConfigured, args)
	}
}
