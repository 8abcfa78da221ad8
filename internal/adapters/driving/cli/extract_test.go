package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/starsync/internal/core/domain"
)

type mockExtraction struct {
	report *domain.ExtractionReport
	err    error
}

func (m *mockExtraction) Run(_ context.Context) (*domain.ExtractionReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func TestExtractCmd(t *testing.T) {
	withServices(t, Services{Extraction: &mockExtraction{report: &domain.ExtractionReport{
		Attempts:   2,
		Strategy:   "primary",
		Found:      10,
		Discarded:  1,
		Duplicates: 2,
		Added:      3,
		Total:      42,
	}}})

	out, err := execute(t, "", "extract")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 10 words using the primary strategy (attempt 2).")
	assert.Contains(t, out, "Discarded 1 invalid entries.")
	assert.Contains(t, out, "Skipped 2 duplicates.")
	assert.Contains(t, out, "Added 3 new words, 42 stored in total.")
}

func TestExtractCmd_ThenSync(t *testing.T) {
	sync := &mockSyncOrchestrator{report: &domain.SyncReport{SheetName: "Words", Mode: domain.SyncAppend, RowsWritten: 3}}
	withServices(t, Services{
		Extraction: &mockExtraction{report: &domain.ExtractionReport{Strategy: "secondary", Added: 3}},
		Sync:       sync,
	})

	out, err := execute(t, "", "extract", "--sync")
	require.NoError(t, err)
	assert.Equal(t, 1, sync.calls)
	assert.Contains(t, out, "Wrote 3 rows")
}

func TestExtractCmd_Errors(t *testing.T) {
	withServices(t, Services{Extraction: &mockExtraction{err: domain.ErrAuthRequired}})
	_, err := execute(t, "", "extract")
	require.ErrorIs(t, err, domain.ErrAuthRequired)
	assert.Contains(t, err.Error(), "sign in to the saved-words page")

	withServices(t, Services{Extraction: &mockExtraction{err: errors.Join(domain.ErrExtractionFailed, domain.ErrExtractionTimeout)}})
	_, err = execute(t, "", "extract")
	require.ErrorIs(t, err, domain.ErrExtractionTimeout)
	assert.Contains(t, err.Error(), "extraction failed")
}
