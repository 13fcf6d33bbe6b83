package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sparkos", cfg.Name)
	assert.Equal(t, ":8090", cfg.Server.Addr)
	assert.Equal(t, ".sparkos/sparkos.db", cfg.Store.DatabasePath)
	assert.Equal(t, 120*time.Second, cfg.GetGeminiTimeout())
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
name: sparkos-test
gemini:
  api_key: file-key
  timeout: 30s
server:
  addr: ":9999"
store:
  database_path: /tmp/test.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sparkos-test", cfg.Name)
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, "/tmp/test.db", cfg.Store.DatabasePath)
	assert.Equal(t, 30*time.Second, cfg.GetGeminiTimeout())
}

func TestEnvOverridesWin(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gemini:\n  api_key: file-key\n"), 0644))

	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("SPARKOS_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.Gemini.APIKey)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestValidateRequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gemini.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg.Gemini.APIKey = "k"
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".sparkos", "config.yaml")

	cfg := DefaultConfig()
	cfg.Server.Addr = ":1234"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":1234", loaded.Server.Addr)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: first\n"), 0644))

	var mu sync.Mutex
	var got string
	w, err := NewWatcher(path, func(c *Config) {
		mu.Lock()
		got = c.Name
		mu.Unlock()
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()

	// Give the watcher a moment to arm before writing
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("name: second\n"), 0644))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return got == "second"
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	<-done
}
