package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/studyd/internal/storage"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("STUDYD_CONFIG", "")
	return dir
}

func TestRuntimeConfigDefaults(t *testing.T) {
	dir := isolate(t)
	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != storage.KindSQLite || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.UpcomingHorizonDays != 7 || cfg.RecentNotesLimit != 3 || cfg.AutosaveDelay != time.Second {
		t.Fatalf("unexpected view defaults: %+v", cfg)
	}
	if cfg.DataPath != filepath.Join(dir, "data", "studyd", "studyd.db") {
		t.Fatalf("unexpected data path: %s", cfg.DataPath)
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYD_BACKEND", "json")
	t.Setenv("STUDYD_DATA_PATH", "state/custom.json")
	t.Setenv("STUDYD_STRICT_REFERENCES", "true")
	t.Setenv("STUDYD_UPCOMING_HORIZON_DAYS", "14")
	t.Setenv("STUDYD_AUTOSAVE_DELAY", "250ms")

	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != storage.KindJSON || cfg.DataPath != "state/custom.json" {
		t.Fatalf("unexpected backend overrides: %+v", cfg)
	}
	if !cfg.StrictReferences || cfg.UpcomingHorizonDays != 14 {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.AutosaveDelay != 250*time.Millisecond {
		t.Fatalf("unexpected autosave delay: %s", cfg.AutosaveDelay)
	}
}

func TestRuntimeConfigFromFile(t *testing.T) {
	dir := isolate(t)
	body := "backend: memory\nrecent_notes_limit: 5\nlog_level: DEBUG\n"
	if err := os.WriteFile(filepath.Join(dir, "studyd.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STUDYD_RECENT_NOTES_LIMIT", "4")

	cfg, err := Load(New(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != storage.KindMemory || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.RecentNotesLimit != 4 {
		t.Fatalf("env should win over file, got %d", cfg.RecentNotesLimit)
	}
	if cfg.ConfigFile == "" {
		t.Fatal("expected config file to be recorded")
	}
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	dir := isolate(t)
	if _, err := Load(New(filepath.Join(dir, "missing.yaml"))); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []func(*RuntimeConfig){
		func(c *RuntimeConfig) { c.Backend = "postgres" },
		func(c *RuntimeConfig) { c.LogLevel = "loud" },
		func(c *RuntimeConfig) { c.UpcomingHorizonDays = 0 },
		func(c *RuntimeConfig) { c.RecentNotesLimit = -1 },
		func(c *RuntimeConfig) { c.AutosaveDelay = -time.Second },
	}
	for i, mutate := range cases {
		cfg := DefaultRuntimeConfig()
		mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if err := DefaultRuntimeConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	isolate(t)
	t.Setenv("STUDYD_BACKEND", "mongo")
	if _, err := Load(New("")); err == nil {
		t.Fatal("expected unknown backend error")
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	cfg.LogLevel = "loud"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	cfg = DefaultRuntimeConfig()
	cfg.Backend = "postgres"
	if err := cfg.Validate(); !errors.Is(err, storage.ErrUnknownBackend) {
		t.Fatalf("expected ErrUnknownBackend, got %v", err)
	}
}
