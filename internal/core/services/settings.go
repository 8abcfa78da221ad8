package services

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyExtractURL         = "extract.url"
	keyExtractMaxAttempts = "extract.max_attempts"
	keyExtractTimeout     = "extract.timeout_seconds"
	keyExtractInterval    = "extract.interval_minutes"
	keyBrowserBin         = "browser.bin"
	keyBrowserHeadless    = "browser.headless"
	keyBrowserUserDataDir = "browser.user_data_dir"
	keyDedupeMode         = "dedupe.mode"
	keySheetsID           = "sheets.spreadsheet_id"
	keySheetsName         = "sheets.sheet_name"
	keySheetsMode         = "sheets.mode"
	keySheetsAutoSync     = "sheets.auto_sync"
	keyOAuthClientID      = "oauth.client_id"
	keyOAuthClientSecret  = "oauth.client_secret"
)

// settingParsers converts the CLI string form of each key into the typed
// value stored in the config file, rejecting anything out of range.
var settingParsers = map[string]func(string) (any, error){
	keyExtractURL:         parseHTTPURL,
	keyExtractMaxAttempts: parseIntRange(1, domain.MaxExtractionAttempts),
	keyExtractTimeout:     parseIntRange(1, 600),
	keyExtractInterval:    parseIntRange(int(domain.MinExtractionInterval/time.Minute), 24*60),
	keyBrowserBin:         parseAnyString,
	keyBrowserHeadless:    parseBool,
	keyBrowserUserDataDir: parseAnyString,
	keyDedupeMode:         parseDedupeMode,
	keySheetsID:           parseSpreadsheetID,
	keySheetsName:         parseSheetName,
	keySheetsMode:         parseSyncMode,
	keySheetsAutoSync:     parseBool,
	keyOAuthClientID:      parseAnyString,
	keyOAuthClientSecret:  parseAnyString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Extraction: domain.ExtractionSettings{
			URL:         s.getString(keyExtractURL, defaults.Extraction.URL),
			MaxAttempts: s.getInt(keyExtractMaxAttempts, defaults.Extraction.MaxAttempts),
			Timeout:     s.getDuration(keyExtractTimeout, time.Second, defaults.Extraction.Timeout),
			Interval:    s.getDuration(keyExtractInterval, time.Minute, defaults.Extraction.Interval),
			BrowserBin:  s.configStore.GetString(keyBrowserBin),
			Headless:    s.getBool(keyBrowserHeadless, defaults.Extraction.Headless),
			UserDataDir: s.configStore.GetString(keyBrowserUserDataDir),
		},
		Dedupe: s.getDedupeMode(defaults.Dedupe),
		Sheets: domain.SheetsSettings{
			SpreadsheetID: s.configStore.GetString(keySheetsID),
			SheetName:     s.getString(keySheetsName, defaults.Sheets.SheetName),
			Mode:          s.getSyncMode(defaults.Sheets.Mode),
			AutoSync:      s.getBool(keySheetsAutoSync, defaults.Sheets.AutoSync),
		},
		OAuth: domain.OAuthAppSettings{
			ClientID:     s.configStore.GetString(keyOAuthClientID),
			ClientSecret: s.configStore.GetString(keyOAuthClientSecret),
		},
	}

	return settings, nil
}

// Set validates and stores a single setting.
func (s *SettingsService) Set(key, value string) error {
	parse, ok := settingParsers[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	v, err := parse(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := s.configStore.Set(key, v); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Unset removes a setting so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if _, ok := settingParsers[key]; !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Delete(key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Keys returns every supported setting key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingParsers))
	for k := range settingParsers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getDuration(key string, unit, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * unit
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDedupeMode(defaultVal domain.DedupeMode) domain.DedupeMode {
	mode := domain.DedupeMode(s.configStore.GetString(keyDedupeMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getSyncMode(defaultVal domain.SyncMode) domain.SyncMode {
	mode := domain.SyncMode(s.configStore.GetString(keySheetsMode))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

// Parsers for Set.

func parseAnyString(v string) (any, error) {
	return strings.TrimSpace(v), nil
}

func parseBool(v string) (any, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return nil, fmt.Errorf("expected true or false, got %q", v)
	}
	return b, nil
}

func parseIntRange(lo, hi int) func(string) (any, error) {
	return func(v string) (any, error) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("expected a number, got %q", v)
		}
		if n < lo || n > hi {
			return nil, fmt.Errorf("must be between %d and %d", lo, hi)
		}
		return n, nil
	}
}

func parseHTTPURL(v string) (any, error) {
	v = strings.TrimSpace(v)
	u, err := url.Parse(v)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("expected an http(s) URL, got %q", v)
	}
	return v, nil
}

func parseDedupeMode(v string) (any, error) {
	mode := domain.DedupeMode(strings.TrimSpace(v))
	if !mode.IsValid() {
		return nil, fmt.Errorf("expected one of %s, %s, %s", domain.DedupeExact, domain.DedupeText, domain.DedupeLanguagePair)
	}
	return mode.String(), nil
}

func parseSyncMode(v string) (any, error) {
	mode := domain.SyncMode(strings.TrimSpace(v))
	if !mode.IsValid() {
		return nil, fmt.Errorf("expected %s or %s", domain.SyncAppend, domain.SyncReplace)
	}
	return mode.String(), nil
}

// parseSpreadsheetID stores the bare ID even when a URL is given.
func parseSpreadsheetID(v string) (any, error) {
	if strings.TrimSpace(v) == "" {
		return "", nil
	}
	id, err := domain.ParseSpreadsheetID(v)
	if err != nil {
		return nil, err
	}
	return id, nil
}

func parseSheetName(v string) (any, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, fmt.Errorf("sheet name cannot be empty")
	}
	if len([]rune(v)) > 100 {
		return nil, fmt.Errorf("sheet name longer than 100 characters")
	}
	return v, nil
}
