package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func noEnv(string) (string, bool) { return "", false }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Store.Backend != "json" || cfg.UI.Surface != "panel" || cfg.UI.Theme != "classic" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if filepath.Base(cfg.Store.Path) != "tasks.json" {
		t.Fatalf("expected default path to end in tasks.json, got %s", cfg.Store.Path)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFrom_ProjectOverridesGlobal(t *testing.T) {
	dir := t.TempDir()
	global := filepath.Join(dir, "global", "config.yaml")
	project := filepath.Join(dir, "project", "config.yaml")
	writeFile(t, global, "store:\n  backend: sqlite\n  path: /tmp/g.db\nui:\n  theme: neon\n")
	writeFile(t, project, "store:\n  backend: postgres\n  dsn: postgres://x\n")

	cfg, err := LoadFrom(noEnv, global, project)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Store.Backend != "postgres" || cfg.Store.DSN != "postgres://x" {
		t.Fatalf("project file should win: %+v", cfg.Store)
	}
	if cfg.Store.Path != "/tmp/g.db" || cfg.UI.Theme != "neon" {
		t.Fatalf("global values not set by project should survive: %+v", cfg)
	}
	if cfg.UI.Surface != "panel" {
		t.Fatalf("unset keys keep defaults, got %q", cfg.UI.Surface)
	}
}

func TestLoadFrom_EnvOverridesFiles(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "config.yaml")
	writeFile(t, p, "ui:\n  surface: drawer\n")
	env := map[string]string{"TADA_SURFACE": "inline", "TADA_STORE": "memory"}

	cfg, err := LoadFrom(func(k string) (string, bool) { v, ok := env[k]; return v, ok }, p)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.UI.Surface != "inline" || cfg.Store.Backend != "memory" {
		t.Fatalf("env should override files: %+v", cfg)
	}
}

func TestLoadFrom_MissingFilesSkipped(t *testing.T) {
	cfg, err := LoadFrom(noEnv, filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Store.Backend != "json" {
		t.Fatalf("expected defaults, got %+v", cfg.Store)
	}
}

func TestLoadFrom_InvalidValue(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, p, "store:\n  backend: floppy\n")
	_, err := LoadFrom(noEnv, p)
	if err == nil || !strings.Contains(err.Error(), "store.backend") {
		t.Fatalf("expected store.backend error, got %v", err)
	}
}

func TestSave_RoundTripAndMaskedYAML(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.Store.Backend = "neo4j"
	cfg.Store.Neo4j.Password = "secret"
	if err := Save(p, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := LoadFrom(noEnv, p)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.Store.Backend != "neo4j" || got.Store.Neo4j.Password != "secret" {
		t.Fatalf("round trip lost values: %+v", got.Store)
	}
	out, err := got.YAML()
	if err != nil {
		t.Fatalf("YAML: %v", err)
	}
	if strings.Contains(out, "secret") || !strings.Contains(out, "****") {
		t.Fatalf("expected masked password:\n%s", out)
	}
	if got.Store.Neo4j.Password != "secret" {
		t.Fatalf("YAML must not mutate the config")
	}
}
