package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if cfg.Dashboard.Top != nil || cfg.Exceptions != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[dashboard]
db = "/tmp/nouns.db"
top = 10

[key-endings]
count = 12
min-accuracy = 0.85

[serve]
addr = ":9090"

[exceptions]
ung = []
e = ["bote", "see"]
er = ["tier"]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Dashboard.DB == nil || *cfg.Dashboard.DB != "/tmp/nouns.db" {
		t.Fatalf("unexpected db: %v", cfg.Dashboard.DB)
	}
	if cfg.Dashboard.Top == nil || *cfg.Dashboard.Top != 10 {
		t.Fatalf("unexpected top: %v", cfg.Dashboard.Top)
	}
	if cfg.KeyEndings.Count == nil || *cfg.KeyEndings.Count != 12 {
		t.Fatalf("unexpected key ending count: %v", cfg.KeyEndings.Count)
	}
	if cfg.KeyEndings.MinAccuracy == nil || *cfg.KeyEndings.MinAccuracy != 0.85 {
		t.Fatalf("unexpected min accuracy: %v", cfg.KeyEndings.MinAccuracy)
	}
	if cfg.Serve.Addr == nil || *cfg.Serve.Addr != ":9090" {
		t.Fatalf("unexpected addr: %v", cfg.Serve.Addr)
	}
	if diff := cmp.Diff([]string{"ung", "e", "er"}, cfg.ExceptionOrder); diff != "" {
		t.Fatalf("exception order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bote", "see"}, cfg.Exceptions["e"]); diff != "" {
		t.Fatalf("exceptions mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPathsHonorOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_STATE_HOME", dir)
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvConfigPath, "")

	if got, want := DefaultDBPath(), filepath.Join(dir, "derdie", "derdie.db"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultConfigPath(), filepath.Join(dir, "derdie", "config.toml"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got, want := DefaultLogPath(), filepath.Join(dir, "derdie", "derdie.log"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}

	t.Setenv(EnvDBPath, "/data/nouns.db")
	if got := DefaultDBPath(); got != "/data/nouns.db" {
		t.Fatalf("expected env override, got %s", got)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	if err := LoadEnv(filepath.Join(dir, ".env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}

	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DERDIE_CONFIG=/etc/derdie.toml\nDERDIE_DB=/from/file.db\n"), 0o644); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Setenv(EnvDBPath, "/from/env.db")
	t.Setenv(EnvConfigPath, "")
	if err := os.Unsetenv(EnvConfigPath); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if err := LoadEnv(path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if got := os.Getenv(EnvConfigPath); got != "/etc/derdie.toml" {
		t.Fatalf("expected value from .env, got %q", got)
	}
	if got := os.Getenv(EnvDBPath); got != "/from/env.db" {
		t.Fatalf("expected existing env to win, got %q", got)
	}
}
