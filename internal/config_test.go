package internal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/arczen/pkg/config"
)

func TestNewDefaultConfigValidates(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.Import.Bookmarks {
		t.Error("bookmark projection should default on")
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Review.HTTP.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("port 0 accepted")
	}

	cfg = NewDefaultConfig()
	cfg.Import.MinVisitCount = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative min_visit_count accepted")
	}

	cfg = NewDefaultConfig()
	cfg.Review.Auth.Mode = AuthModeToken
	if err := cfg.Validate(); err == nil {
		t.Error("token mode without token accepted")
	}
	cfg.Review.Auth.Token = "secret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("token mode with token rejected: %v", err)
	}
	if !cfg.Review.Auth.AuthEnabled() {
		t.Error("AuthEnabled = false in token mode")
	}
}

func TestConfigLoadWithEnvExpansion(t *testing.T) {
	t.Setenv("ARCZEN_TEST_ROOT", "/tmp/zen-root")

	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
zen:
  root: ${ARCZEN_TEST_ROOT}
review:
  http:
    port: 9000
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := config.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Zen.Root != "/tmp/zen-root" {
		t.Errorf("zen.root = %q", cfg.Zen.Root)
	}
	if cfg.Review.HTTP.Port != 9000 {
		t.Errorf("port = %d", cfg.Review.HTTP.Port)
	}
	// Untouched sections keep their defaults.
	if !cfg.Import.Bookmarks {
		t.Error("defaults lost during load")
	}
}
