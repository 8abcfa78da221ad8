package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/core/ports/driving"
	"github.com/custodia-labs/starsync/internal/logger"
)

// Ensure ExtractionService implements the interface.
var _ driving.ExtractionService = (*ExtractionService)(nil)

// Retry schedule between extraction attempts.
const (
	extractInitialBackoff = time.Second
	extractBackoffFactor  = 2
	extractMaxBackoff     = 30 * time.Second
)

var tracer = otel.Tracer("github.com/custodia-labs/starsync/internal/core/services")

// ExtractionService scrapes the saved-words page in a hidden tab, then
// cleans, deduplicates and merges the result into the word store.
type ExtractionService struct {
	browser   driven.Browser
	extractor driven.PageExtractor
	words     driven.WordStore
	settings  driving.SettingsService

	now        func() time.Time
	newBackOff func(maxAttempts int) backoff.BackOff

	// runMu serialises runs so the scheduler and the CLI never merge concurrently.
	runMu sync.Mutex
}

// NewExtractionService creates a new extraction service.
func NewExtractionService(
	browser driven.Browser,
	extractor driven.PageExtractor,
	words driven.WordStore,
	settings driving.SettingsService,
) *ExtractionService {
	return &ExtractionService{
		browser:    browser,
		extractor:  extractor,
		words:      words,
		settings:   settings,
		now:        time.Now,
		newBackOff: extractionBackOff,
	}
}

func extractionBackOff(maxAttempts int) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = extractInitialBackoff
	b.Multiplier = extractBackoffFactor
	b.MaxInterval = extractMaxBackoff
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, uint64(maxAttempts-1))
}

// Run extracts starred words and merges them into the store.
// A report is returned even on failure so callers can show how many attempts were made.
func (s *ExtractionService) Run(ctx context.Context) (*domain.ExtractionReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	settings, err := s.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	cfg := settings.Extraction
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	ctx, span := tracer.Start(ctx, "extraction.run", trace.WithAttributes(
		attribute.String("page.url", cfg.URL),
		attribute.Int("max_attempts", cfg.MaxAttempts),
	))
	defer span.End()

	report := &domain.ExtractionReport{StartedAt: s.now()}
	defer func() { report.Duration = s.now().Sub(report.StartedAt) }()

	logger.Section("Extraction")
	logger.Info("Extracting starred words from %s", cfg.URL)

	var result *domain.ExtractionResult
	op := func() error {
		report.Attempts++
		res, err := s.attempt(ctx, cfg, report.Attempts)
		if err == nil {
			result = res
			return nil
		}
		if errors.Is(err, domain.ErrAuthRequired) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Extraction attempt %d failed: %v (retrying in %s)", report.Attempts, err, wait.Round(time.Millisecond))
	}

	b := backoff.WithContext(s.newBackOff(cfg.MaxAttempts), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, domain.ErrAuthRequired) {
			return report, fmt.Errorf("saved words page: %w", err)
		}
		return report, fmt.Errorf("%w after %d attempt(s): %w", domain.ErrExtractionFailed, report.Attempts, err)
	}

	report.Strategy = result.Strategy
	report.Found = len(result.Words)
	logger.Info("Strategy %q found %d pair(s)", result.Strategy, report.Found)

	if err := s.merge(ctx, settings.Dedupe, result.Words, report); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}

	span.SetAttributes(
		attribute.String("strategy", report.Strategy),
		attribute.Int("words.added", report.Added),
		attribute.Int("words.total", report.Total),
	)
	logger.Info("Added %d new word(s), %d stored", report.Added, report.Total)
	return report, nil
}

// merge cleans and deduplicates raw pairs and folds them into the store.
func (s *ExtractionService) merge(ctx context.Context, mode domain.DedupeMode, raw []domain.RawWord, report *domain.ExtractionReport) error {
	clean, discarded := CleanWords(raw)
	report.Discarded = discarded
	if discarded > 0 {
		logger.Debug("Discarded %d invalid pair(s)", discarded)
	}

	unique, dupes := Deduplicate(clean, mode)
	report.Duplicates = dupes

	existing, err := s.words.List(ctx)
	if err != nil {
		return fmt.Errorf("list words: %w", err)
	}

	merged, added := Merge(existing, unique, mode, s.now())
	if err := s.words.SaveAll(ctx, merged); err != nil {
		return fmt.Errorf("save words: %w", err)
	}

	report.Added = added
	report.Total = len(merged)
	return nil
}

// attempt runs one open, navigate, inject cycle bounded by the configured timeout.
func (s *ExtractionService) attempt(ctx context.Context, cfg domain.ExtractionSettings, n int) (*domain.ExtractionResult, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	attemptCtx, span := tracer.Start(attemptCtx, "extraction.attempt", trace.WithAttributes(attribute.Int("attempt", n)))
	defer span.End()

	result, err := s.runTab(attemptCtx, cfg.URL)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("%w after %s", domain.ErrExtractionTimeout, cfg.Timeout)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.String("strategy", result.Strategy), attribute.Int("words.found", len(result.Words)))
	return result, nil
}

func (s *ExtractionService) runTab(ctx context.Context, pageURL string) (*domain.ExtractionResult, error) {
	tab, err := s.browser.OpenHiddenTab(ctx)
	if err != nil {
		return nil, fmt.Errorf("open hidden tab: %w", err)
	}
	defer func() {
		if cerr := tab.Close(); cerr != nil {
			logger.Debug("close tab: %v", cerr)
		}
	}()

	logger.Debug("Navigating hidden tab to %s", pageURL)
	if err := tab.Navigate(ctx, pageURL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}

	select {
	case msg, ok := <-tab.Inject(ctx, s.extractor):
		if !ok {
			return nil, errors.New("tab closed without reporting a result")
		}
		if msg.Err != nil {
			return nil, fmt.Errorf("inject extractor: %w", msg.Err)
		}
		return checkResult(msg.Result)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// checkResult converts an unsuccessful page result into a domain error.
func checkResult(r *domain.ExtractionResult) (*domain.ExtractionResult, error) {
	switch {
	case r == nil:
		return nil, errors.New("empty extraction result")
	case r.SignInRequired:
		return nil, domain.ErrAuthRequired
	case r.Success():
		return r, nil
	case r.Error == "" || r.Error == domain.ErrNoWordsFound.Error():
		return nil, domain.ErrNoWordsFound
	default:
		return nil, errors.New(r.Error)
	}
}
