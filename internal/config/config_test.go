package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Storage.Type != "sqlite" {
		t.Errorf("Storage.Type = %q, want sqlite", cfg.Storage.Type)
	}
	if cfg.GitHub.RateLimit != 10 {
		t.Errorf("GitHub.RateLimit = %d, want 10", cfg.GitHub.RateLimit)
	}
	if cfg.Analysis.SimilarityThreshold != 0.90 {
		t.Errorf("Analysis.SimilarityThreshold = %v, want 0.90", cfg.Analysis.SimilarityThreshold)
	}
	if cfg.Import.APIURL == "" {
		t.Error("Import.APIURL should have a default")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok123")
	t.Setenv("STORAGE_TYPE", "postgres")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/jperfevo")
	t.Setenv("GITHUB_RATE_LIMIT", "3")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.GitHub.Token != "tok123" {
		t.Errorf("GitHub.Token = %q", cfg.GitHub.Token)
	}
	if cfg.Storage.Type != "postgres" {
		t.Errorf("Storage.Type = %q", cfg.Storage.Type)
	}
	if cfg.Storage.PostgresDSN != "postgres://localhost/jperfevo" {
		t.Errorf("Storage.PostgresDSN = %q", cfg.Storage.PostgresDSN)
	}
	if cfg.GitHub.RateLimit != 3 {
		t.Errorf("GitHub.RateLimit = %d, want 3", cfg.GitHub.RateLimit)
	}
}

func TestEnvOverridesIgnoreInvalidRateLimit(t *testing.T) {
	t.Setenv("GITHUB_RATE_LIMIT", "not-a-number")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.GitHub.RateLimit != 10 {
		t.Errorf("GitHub.RateLimit = %d, want default 10", cfg.GitHub.RateLimit)
	}
}

func TestLoadMissingConfigFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil && cfg == nil {
		t.Fatal("Load() returned neither config nor error")
	}
	// A nonexistent explicit path errors; defaults still come from Default().
	if err == nil && cfg.Storage.Type == "" {
		t.Error("Load() lost defaults")
	}
}
