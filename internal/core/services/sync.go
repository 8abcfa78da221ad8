package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/starsync/internal/core/domain"
	"github.com/custodia-labs/starsync/internal/core/ports/driven"
	"github.com/custodia-labs/starsync/internal/core/ports/driving"
	"github.com/custodia-labs/starsync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// Rate-limit retry policy for spreadsheet calls.
const (
	syncMaxRateLimitRetries = 3
	syncInitialBackoff      = time.Second
	syncMaxBackoff          = 30 * time.Second
)

// SyncOrchestrator exports stored words to the configured spreadsheet.
type SyncOrchestrator struct {
	client    driven.SpreadsheetClient
	tokens    driven.TokenProvider
	words     driven.WordStore
	syncStore driven.SyncStateStore
	settings  driving.SettingsService

	now        func() time.Time
	newBackOff func() backoff.BackOff

	// Status tracking
	mu      sync.Mutex
	running bool
}

// NewSyncOrchestrator creates a new sync orchestrator.
// client and tokens may be nil, in which case Sync reports that export is unavailable.
func NewSyncOrchestrator(
	client driven.SpreadsheetClient,
	tokens driven.TokenProvider,
	words driven.WordStore,
	syncStore driven.SyncStateStore,
	settings driving.SettingsService,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		client:     client,
		tokens:     tokens,
		words:      words,
		syncStore:  syncStore,
		settings:   settings,
		now:        time.Now,
		newBackOff: syncBackOff,
	}
}

func syncBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = syncInitialBackoff
	b.MaxInterval = syncMaxBackoff
	b.MaxElapsedTime = 0
	return backoff.WithMaxRetries(b, syncMaxRateLimitRetries)
}

// Sync writes words to the spreadsheet according to the configured mode.
func (o *SyncOrchestrator) Sync(ctx context.Context) (*domain.SyncReport, error) {
	settings, err := o.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	sheets := settings.Sheets
	if !sheets.IsConfigured() || o.client == nil {
		return nil, domain.ErrSyncDisabled
	}
	if o.tokens == nil || !o.tokens.IsAuthenticated() {
		return nil, domain.ErrAuthRequired
	}

	spreadsheetID, err := domain.ParseSpreadsheetID(sheets.SpreadsheetID)
	if err != nil {
		return nil, err
	}

	if !o.begin() {
		return nil, domain.ErrSyncInProgress
	}
	defer o.end()

	ctx, span := tracer.Start(ctx, "sync.run", trace.WithAttributes(
		attribute.String("spreadsheet.id", spreadsheetID),
		attribute.String("sheet.name", sheets.SheetName),
		attribute.String("mode", sheets.Mode.String()),
	))
	defer span.End()

	report := &domain.SyncReport{
		SpreadsheetID: spreadsheetID,
		SheetName:     sheets.SheetName,
		Mode:          sheets.Mode,
	}
	started := o.now()

	logger.Section("Spreadsheet sync")
	if err := o.export(ctx, report); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return report, err
	}
	report.Duration = o.now().Sub(started)

	state := domain.SyncState{
		Target:      domain.SyncTarget(spreadsheetID, sheets.SheetName),
		LastSync:    o.now(),
		RowsWritten: report.RowsWritten,
		Mode:        sheets.Mode,
	}
	if err := o.syncStore.Save(ctx, state); err != nil {
		return report, fmt.Errorf("save sync state: %w", err)
	}

	span.SetAttributes(attribute.Int("rows.written", report.RowsWritten), attribute.Int("retries", report.Retries))
	logger.Info("Wrote %d row(s) to %q (%s mode)", report.RowsWritten, sheets.SheetName, sheets.Mode)
	return report, nil
}

func (o *SyncOrchestrator) export(ctx context.Context, report *domain.SyncReport) error {
	id, sheet := report.SpreadsheetID, report.SheetName

	var title string
	err := o.call(ctx, report, func(ctx context.Context) error {
		var err error
		title, err = o.client.Validate(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("validate spreadsheet: %w", err)
	}
	logger.Info("Exporting to spreadsheet %q", title)

	if err := o.call(ctx, report, func(ctx context.Context) error {
		return o.client.EnsureSheet(ctx, id, sheet)
	}); err != nil {
		return fmt.Errorf("prepare sheet %q: %w", sheet, err)
	}

	var words []domain.StarredWord
	if report.Mode == domain.SyncReplace {
		words, err = o.words.List(ctx)
	} else {
		words, err = o.words.ListUnsynced(ctx)
	}
	if err != nil {
		return fmt.Errorf("list words: %w", err)
	}

	rows := make([]domain.SheetRow, len(words))
	ids := make([]string, len(words))
	for i, w := range words {
		rows[i] = domain.RowFromWord(w)
		ids[i] = w.ID
	}

	if report.Mode != domain.SyncReplace && len(rows) == 0 {
		logger.Info("No new words to export")
		return nil
	}

	var written int
	if err := o.call(ctx, report, func(ctx context.Context) error {
		var err error
		if report.Mode == domain.SyncReplace {
			written, err = o.client.ReplaceRows(ctx, id, sheet, rows)
		} else {
			written, err = o.client.AppendRows(ctx, id, sheet, rows)
		}
		return err
	}); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}
	report.RowsWritten = written

	if len(ids) > 0 {
		if err := o.words.MarkSynced(ctx, ids, o.now()); err != nil {
			return fmt.Errorf("mark synced: %w", err)
		}
	}
	return nil
}

// call runs fn, retrying rate-limited calls with backoff and retrying once
// with a fresh token when the API rejects the current one.
func (o *SyncOrchestrator) call(ctx context.Context, report *domain.SyncReport, fn func(context.Context) error) error {
	err := o.withRateLimitRetry(ctx, report, fn)
	if !errors.Is(err, domain.ErrAuthExpired) {
		return err
	}

	logger.Debug("Access token rejected, refreshing")
	o.tokens.InvalidateCache()
	if _, terr := o.tokens.GetToken(ctx); terr != nil {
		return fmt.Errorf("%w: %w", domain.ErrAuthExpired, terr)
	}
	report.Retries++
	return o.withRateLimitRetry(ctx, report, fn)
}

func (o *SyncOrchestrator) withRateLimitRetry(ctx context.Context, report *domain.SyncReport, fn func(context.Context) error) error {
	op := func() error {
		err := fn(ctx)
		if err == nil || errors.Is(err, domain.ErrRateLimited) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		report.Retries++
		logger.Warn("Spreadsheet API: %v (retrying in %s)", err, wait.Round(time.Millisecond))
	}
	return backoff.RetryNotify(op, backoff.WithContext(o.newBackOff(), ctx), notify)
}

// Status returns the current sync status.
func (o *SyncOrchestrator) Status(ctx context.Context) (*driving.SyncStatus, error) {
	settings, err := o.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	o.mu.Lock()
	status := &driving.SyncStatus{Running: o.running}
	o.mu.Unlock()

	unsynced, err := o.words.ListUnsynced(ctx)
	if err != nil {
		return nil, fmt.Errorf("list words: %w", err)
	}
	status.Pending = len(unsynced)

	if !settings.Sheets.IsConfigured() {
		return status, nil
	}
	id, err := domain.ParseSpreadsheetID(settings.Sheets.SpreadsheetID)
	if err != nil {
		return status, nil
	}
	status.Target = domain.SyncTarget(id, settings.Sheets.SheetName)

	state, err := o.syncStore.Get(ctx, status.Target)
	switch {
	case err == nil:
		status.LastSync = state
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("get sync state: %w", err)
	}
	return status, nil
}

func (o *SyncOrchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running {
		return false
	}
	o.running = true
	return true
}

func (o *SyncOrchestrator) end() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.running = false
}
