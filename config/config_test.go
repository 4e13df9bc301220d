package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := Default()
	cfg.DataDir = dir
	cfg.ListenAddr = ":9090"
	cfg.SyncHubURL = "ws://localhost:8080/api/sync"
	cfg.HistoryLimit = 25
	require.NoError(t, Save(cfg))

	loaded, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adminstyler.config")
	require.NoError(t, os.WriteFile(path, []byte(`{"listen_addr": ":9191"}`), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9191", cfg.ListenAddr)
	assert.Equal(t, 50, cfg.HistoryLimit)
	assert.Equal(t, 80, cfg.DebounceMs)
	assert.Equal(t, 50, cfg.BudgetMs)
	assert.Equal(t, "woow_save_option", cfg.SaveAction)
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "adminstyler.config")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	_, err := Load(dir)
	assert.Error(t, err)
}
