package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

type Config struct {
	DataDir    string `json:"data_dir"`
	ListenAddr string `json:"listen_addr"`

	// SyncHubURL points at another instance's /api/sync endpoint. Empty
	// disables cross-session sync.
	SyncEnabled bool   `json:"sync_enabled"`
	SyncHubURL  string `json:"sync_hub_url,omitempty"`

	// SaveEndpoint is the CMS AJAX endpoint changes are persisted to.
	// Empty keeps changes local.
	SaveEndpoint string `json:"save_endpoint,omitempty"`
	SaveAction   string `json:"save_action,omitempty"`

	HistoryLimit     int `json:"history_limit"`
	DebounceMs       int `json:"debounce_ms"`
	BudgetMs         int `json:"budget_ms"`
	RetryMaxAttempts int `json:"retry_max_attempts"`
	RetryInitialMs   int `json:"retry_initial_ms"`
}

func Default() Config {
	return Config{
		DataDir:          ".",
		ListenAddr:       ":8080",
		SyncEnabled:      true,
		SaveAction:       "woow_save_option",
		HistoryLimit:     50,
		DebounceMs:       80,
		BudgetMs:         50,
		RetryMaxAttempts: 3,
		RetryInitialMs:   200,
	}
}

func Load(dataDir string) (Config, error) {
	cfgPath := filepath.Join(dataDir, "adminstyler.config")

	f, err := os.Open(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}
	defer f.Close()

	var cfg Config
	if err := json.NewDecoder(f).Decode(&cfg); err != nil {
		return Config{}, err
	}

	def := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = def.ListenAddr
	}
	if cfg.SaveAction == "" {
		cfg.SaveAction = def.SaveAction
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = def.HistoryLimit
	}
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = def.DebounceMs
	}
	if cfg.BudgetMs <= 0 {
		cfg.BudgetMs = def.BudgetMs
	}
	if cfg.RetryMaxAttempts <= 0 {
		cfg.RetryMaxAttempts = def.RetryMaxAttempts
	}
	if cfg.RetryInitialMs <= 0 {
		cfg.RetryInitialMs = def.RetryInitialMs
	}

	return cfg, nil
}

func Save(cfg Config) error {
	cfgPath := filepath.Join(cfg.DataDir, "adminstyler.config")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}

	tmp := cfgPath + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	return os.Rename(tmp, cfgPath)
}
