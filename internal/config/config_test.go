package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"veriscan/internal/config"
	"veriscan/internal/fields"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.Verification.MatchThreshold != 0.85 {
		t.Fatalf("expected default match threshold, got %v", cfg.Verification.MatchThreshold)
	}
	if cfg.Verification.DivergenceThreshold != 0.5 {
		t.Fatalf("expected default divergence threshold, got %v", cfg.Verification.DivergenceThreshold)
	}
	if !cfg.OCR.Enabled {
		t.Fatal("expected OCR enabled by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
data_dir = "` + dir + `/data"
log_dir = "` + dir + `/logs"
api_bind = "127.0.0.1:0"

[verification]
match_threshold = 0.9
divergence_threshold = 0.4
required_fields = ["uid", "Full_Name"]

[logging]
format = "json"
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config loaded from %s, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Verification.MatchThreshold != 0.9 {
		t.Fatalf("expected match threshold 0.9, got %v", cfg.Verification.MatchThreshold)
	}
	kinds := cfg.RequiredKinds()
	if len(kinds) != 2 || kinds[0] != fields.KindUID || kinds[1] != fields.KindFullName {
		t.Fatalf("unexpected required kinds: %v", kinds)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := config.Default()
	cfg.Verification.MatchThreshold = 0.3
	cfg.Verification.DivergenceThreshold = 0.7
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "divergence_threshold") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsUnknownRequiredField(t *testing.T) {
	cfg := config.Default()
	cfg.Verification.RequiredFields = []string{"ssn"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for unknown required field")
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample failed: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error overwriting existing config")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "match_threshold") {
		t.Fatal("sample config missing verification knobs")
	}
}
