package file

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatch(t *testing.T, store *ConfigStore) *atomic.Int32 {
	t.Helper()
	var reloads atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func() { reloads.Add(1) })
	}()
	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})
	// Give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	return &reloads
}

func TestWatch_ReloadsOnExternalChange(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	reloads := startWatch(t, store)

	// Another process saving the file.
	other, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, other.Set("sheets.mode", "replace"))

	assert.Eventually(t, func() bool {
		return store.GetString("sheets.mode") == "replace"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Positive(t, reloads.Load())
}

func TestWatch_HandEditedFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	startWatch(t, store)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("[dedupe]\nmode = \"text\"\n"), 0600))

	assert.Eventually(t, func() bool {
		return store.GetString("dedupe.mode") == "text"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	reloads := startWatch(t, store)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, reloads.Load())
}

func TestWatch_InvalidFileKeepsLastGoodConfig(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("sheets.mode", "append"))
	startWatch(t, store)

	// Replaced in one rename so the watcher never sees a truncated file.
	tmp := filepath.Join(dir, "edit.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("not = [valid"), 0600))
	require.NoError(t, os.Rename(tmp, filepath.Join(dir, ConfigFile)))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "append", store.GetString("sheets.mode"))
}

func TestWatch_MissingDirectory(t *testing.T) {
	store := &ConfigStore{filePath: filepath.Join(t.TempDir(), "gone", ConfigFile), data: map[string]any{}}
	err := store.Watch(context.Background(), nil)
	assert.Error(t, err)
}
