package config

import (
	"fmt"
	"strings"
)

// normalize expands path fields and canonicalizes string values so the rest
// of the service never sees unexpanded or inconsistently-cased input.
func (c *Config) normalize() error {
	pathFields := []struct {
		name  string
		value *string
	}{
		{"data_dir", &c.Paths.DataDir},
		{"log_dir", &c.Paths.LogDir},
		{"upload_dir", &c.Paths.UploadDir},
		{"report_dir", &c.Paths.ReportDir},
	}
	for _, field := range pathFields {
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}

	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))

	languages := make([]string, 0, len(c.OCR.Languages))
	for _, lang := range c.OCR.Languages {
		if trimmed := strings.ToLower(strings.TrimSpace(lang)); trimmed != "" {
			languages = append(languages, trimmed)
		}
	}
	c.OCR.Languages = languages

	required := make([]string, 0, len(c.Verification.RequiredFields))
	for _, name := range c.Verification.RequiredFields {
		if trimmed := strings.ToLower(strings.TrimSpace(name)); trimmed != "" {
			required = append(required, trimmed)
		}
	}
	c.Verification.RequiredFields = required

	return nil
}
