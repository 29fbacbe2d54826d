package internal

import (
	"os"
	"path/filepath"
	"testing"

	pkgconfig "github.com/starford/ansuz/pkg/config"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Postgres.Enabled() {
		t.Error("postgres enabled by default")
	}
	if cfg.DevServer.HTTP.Address() != ":3000" {
		t.Errorf("address = %q", cfg.DevServer.HTTP.Address())
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.API.BaseURL = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty base URL accepted")
	}

	cfg = NewDefaultConfig()
	cfg.DevServer.HTTP.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Error("out-of-range port accepted")
	}

	cfg = NewDefaultConfig()
	cfg.DevServer.TokenSecret = ""
	if err := cfg.Validate(); err == nil {
		t.Error("empty token secret accepted")
	}
}

func TestPostgresEnabled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Postgres.DSN = "postgres://localhost/cms"
	if !cfg.Postgres.Enabled() {
		t.Error("DSN set but not enabled")
	}
}

func TestLoadConfigFileWithEnvExpansion(t *testing.T) {
	t.Setenv("TEST_API_URL", "http://cms.internal:8080")
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
api:
  base_url: ${TEST_API_URL}
dev_server:
  http:
    port: 4000
  sqlite_path: ./test.db
  token_secret: secret
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "http://cms.internal:8080" {
		t.Errorf("base_url = %q", cfg.API.BaseURL)
	}
	if cfg.DevServer.HTTP.Port != 4000 {
		t.Errorf("port = %d", cfg.DevServer.HTTP.Port)
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := pkgconfig.LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"), cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:3000" {
		t.Errorf("defaults disturbed: %q", cfg.API.BaseURL)
	}
}
