package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
cache:
  backend: redis
  redis_url: redis://localhost:6379/0
  ttl: 30m
analysis:
  strict_empty: true
  min_severity: medium
server:
  address: ":8443"
filters:
  finding: "severity_level >= 2"
export:
  format: csv
  output_dir: reports
`

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cerno.yaml", sampleConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.GetBackend() != "redis" {
		t.Errorf("Cache.GetBackend() = %q, want redis", cfg.Cache.GetBackend())
	}
	if cfg.Cache.GetTTL() != 30*time.Minute {
		t.Errorf("Cache.GetTTL() = %v, want 30m", cfg.Cache.GetTTL())
	}
	if !cfg.Analysis.StrictEmpty {
		t.Error("Analysis.StrictEmpty = false, want true")
	}
	if cfg.Server.GetAddress() != ":8443" {
		t.Errorf("Server.GetAddress() = %q, want :8443", cfg.Server.GetAddress())
	}
	if cfg.Filters.Finding != "severity_level >= 2" {
		t.Errorf("Filters.Finding = %q", cfg.Filters.Finding)
	}
	if cfg.Export.GetFormat() != "csv" {
		t.Errorf("Export.GetFormat() = %q, want csv", cfg.Export.GetFormat())
	}
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "cerno.yaml", sampleConfig)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Cache.GetBackend() != "redis" {
		t.Errorf("Cache.GetBackend() = %q, want redis", cfg.Cache.GetBackend())
	}
}

func TestLoadDirectoryYmlFallback(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "cerno.yml", "server:\n  address: \":7070\"\n")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.GetAddress() != ":7070" {
		t.Errorf("Server.GetAddress() = %q, want :7070", cfg.Server.GetAddress())
	}
}

func TestLoadMissing(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); err == nil {
		t.Error("Load() of empty dir succeeded, want error")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "cerno.yaml", "cache: [unbalanced")

	if _, err := Load(path); err == nil {
		t.Error("Load() of invalid YAML succeeded, want error")
	}
}

func TestLoadFromDirWalksParents(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "cerno.yaml", sampleConfig)
	nested := filepath.Join(root, "scans", "2026-08")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("creating nested dir: %v", err)
	}

	cfg, err := LoadFromDir(nested)
	if err != nil {
		t.Fatalf("LoadFromDir() error = %v", err)
	}
	if cfg.Export.GetOutputDir() != "reports" {
		t.Errorf("Export.GetOutputDir() = %q, want reports", cfg.Export.GetOutputDir())
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config

	if got := cfg.Cache.GetBackend(); got != "memory" {
		t.Errorf("nil Cache.GetBackend() = %q, want memory", got)
	}
	if got := cfg.Cache.GetCapacity(); got != 128 {
		t.Errorf("nil Cache.GetCapacity() = %d, want 128", got)
	}
	if got := cfg.Cache.GetTTL(); got != time.Hour {
		t.Errorf("nil Cache.GetTTL() = %v, want 1h", got)
	}
	if got := cfg.Server.GetShutdownTimeout(); got != 30*time.Second {
		t.Errorf("nil Server.GetShutdownTimeout() = %v, want 30s", got)
	}
	if got := cfg.Registry.GetNamespace(); got != "cerno" {
		t.Errorf("nil Registry.GetNamespace() = %q, want cerno", got)
	}
	if got := cfg.Export.GetFormat(); got != "json" {
		t.Errorf("nil Export.GetFormat() = %q, want json", got)
	}
}
