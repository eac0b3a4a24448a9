package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.CredentialsFile != DefaultCredentialsFile {
		t.Errorf("credentials file: got %q, want %q", cfg.CredentialsFile, DefaultCredentialsFile)
	}
	if cfg.OutputDir != DefaultOutputDir {
		t.Errorf("output dir: got %q, want %q", cfg.OutputDir, DefaultOutputDir)
	}
	if cfg.MaxResults != DefaultMaxResults {
		t.Errorf("max results: got %d, want %d", cfg.MaxResults, DefaultMaxResults)
	}
	if cfg.PostgresEnabled() {
		t.Error("postgres should be disabled by default")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"OUTPUT_DIR": "from-file", "MAX_RESULTS": 100}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	t.Setenv("OUTPUT_DIR", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.OutputDir != "from-env" {
		t.Errorf("output dir: got %q, want env value", cfg.OutputDir)
	}
	if cfg.MaxResults != 100 {
		t.Errorf("max results: got %d, want file value 100", cfg.MaxResults)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestPostgresEnabled(t *testing.T) {
	cfg := &Config{PostgresHost: "localhost"}
	if !cfg.PostgresEnabled() {
		t.Error("expected postgres enabled when host is set")
	}
}
