package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".starsync", "config.toml"), store.Path())
	assert.DirExists(t, filepath.Join(home, ".starsync"))
}

func TestNewConfigStore_WithNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is [not toml"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_Getters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("extract.url", "https://translate.example.com/saved"))
	require.NoError(t, store.Set("extract.max_attempts", 5))
	require.NoError(t, store.Set("browser.headless", true))

	val, ok := store.Get("extract.url")
	assert.True(t, ok)
	assert.Equal(t, "https://translate.example.com/saved", val)
	assert.Equal(t, "https://translate.example.com/saved", store.GetString("extract.url"))
	assert.Equal(t, 5, store.GetInt("extract.max_attempts"))
	assert.True(t, store.GetBool("browser.headless"))

	// Wrong type or missing key gives the zero value.
	assert.Empty(t, store.GetString("extract.max_attempts"))
	assert.Zero(t, store.GetInt("extract.url"))
	assert.False(t, store.GetBool("extract.url"))
	_, ok = store.Get("missing")
	assert.False(t, ok)
	assert.Empty(t, store.GetString("missing"))
}

func TestConfigStore_PersistsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("sheets.mode", "replace"))
	require.NoError(t, store.Set("sheets.auto_sync", true))
	require.NoError(t, store.Set("extract.interval_minutes", 30))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[sheets]")
	assert.Contains(t, string(raw), "[extract]")
	assert.NotContains(t, string(raw), "'sheets.mode'")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "replace", reloaded.GetString("sheets.mode"))
	assert.True(t, reloaded.GetBool("sheets.auto_sync"))
	assert.Equal(t, 30, reloaded.GetInt("extract.interval_minutes"), "TOML int64 read back as int")
	assert.Equal(t, []string{"extract.interval_minutes", "sheets.auto_sync", "sheets.mode"}, reloaded.Keys())
}

func TestConfigStore_ReadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[browser]
headless = false
bin = "/usr/bin/chromium"

[dedupe]
mode = "text"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "/usr/bin/chromium", store.GetString("browser.bin"))
	assert.Equal(t, "text", store.GetString("dedupe.mode"))
	v, ok := store.Get("browser.headless")
	assert.True(t, ok)
	assert.Equal(t, false, v)
}

func TestConfigStore_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("sheets.spreadsheet_id", "abc"))
	require.NoError(t, store.Set("sheets.sheet_name", "Words"))
	require.NoError(t, store.Delete("sheets.spreadsheet_id"))
	require.NoError(t, store.Delete("never.set"))

	_, ok := store.Get("sheets.spreadsheet_id")
	assert.False(t, ok)

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"sheets.sheet_name"}, reloaded.Keys())
}

func TestConfigStore_Set_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("sheets.mode", "append"))

	assert.Error(t, store.Set("sheets", "flat"))
	assert.Error(t, store.Set("sheets.mode.extra", 1))
	assert.Equal(t, []string{"sheets.mode"}, store.Keys())
}

func TestConfigStore_Set_WriteErrorRollsBack(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store.Set("dedupe.mode", "exact"))

	require.NoError(t, os.Chmod(tmpDir, 0500))
	defer os.Chmod(tmpDir, 0700) //nolint:errcheck // test cleanup

	assert.Error(t, store.Set("dedupe.mode", "text"))
	assert.Equal(t, "exact", store.GetString("dedupe.mode"))
	assert.Error(t, store.Set("sheets.mode", "append"))
	_, ok := store.Get("sheets.mode")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("oauth.client_secret", "shh"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, store.Keys())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, store.Set("extract.max_attempts", n))
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("extract.max_attempts")
			_ = store.Keys()
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{"extract.max_attempts"}, store.Keys())
}

func TestFlattenUnflatten(t *testing.T) {
	nested := map[string]any{
		"a": map[string]any{"b": int64(1), "c": map[string]any{"d": "x"}},
		"e": true,
	}
	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{"a.b": int64(1), "a.c.d": "x", "e": true}, flat)
	assert.Equal(t, nested, unflattenMap(flat))
}
