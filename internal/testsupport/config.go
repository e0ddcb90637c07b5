package testsupport

import (
	"path/filepath"
	"testing"

	"veriscan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// OCR is disabled so tests never depend on a Tesseract installation.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.UploadDir = filepath.Join(base, "uploads")
	cfg.Paths.ReportDir = filepath.Join(base, "reports")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.OCR.Enabled = false

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithThresholds overrides the reconciliation thresholds on the test config.
func WithThresholds(match, divergence float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Verification.MatchThreshold = match
		cfg.Verification.DivergenceThreshold = divergence
	}
}

// WithRequiredFields overrides the required-field policy on the test config.
func WithRequiredFields(names ...string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Verification.RequiredFields = names
	}
}
