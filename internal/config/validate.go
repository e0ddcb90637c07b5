package config

import (
	"errors"
	"fmt"
	"strings"

	"veriscan/internal/fields"
)

// Validate checks configuration invariants after normalization.
func (c *Config) Validate() error {
	var problems []string

	if c.Paths.DataDir == "" {
		problems = append(problems, "paths.data_dir must be set")
	}
	if c.Paths.LogDir == "" {
		problems = append(problems, "paths.log_dir must be set")
	}
	if c.Paths.APIBind == "" {
		problems = append(problems, "paths.api_bind must be set")
	}

	if c.OCR.Enabled {
		if len(c.OCR.Languages) == 0 {
			problems = append(problems, "ocr.languages must list at least one language when OCR is enabled")
		}
		if c.OCR.DPI < 0 {
			problems = append(problems, "ocr.dpi must not be negative")
		}
		if c.OCR.TimeoutSeconds <= 0 {
			problems = append(problems, "ocr.timeout_seconds must be positive")
		}
	}

	v := c.Verification
	if v.MatchThreshold < 0 || v.MatchThreshold > 1 {
		problems = append(problems, "verification.match_threshold must be within [0, 1]")
	}
	if v.DivergenceThreshold < 0 || v.DivergenceThreshold > 1 {
		problems = append(problems, "verification.divergence_threshold must be within [0, 1]")
	}
	if v.DivergenceThreshold > v.MatchThreshold {
		problems = append(problems, "verification.divergence_threshold must not exceed verification.match_threshold")
	}
	for _, name := range v.RequiredFields {
		if _, err := fields.ParseKind(name); err != nil {
			problems = append(problems, fmt.Sprintf("verification.required_fields: %v", err))
		}
	}

	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// RequiredKinds returns the parsed required-field policy. Call after
// Validate; unknown names fail validation.
func (c *Config) RequiredKinds() []fields.Kind {
	out := make([]fields.Kind, 0, len(c.Verification.RequiredFields))
	for _, name := range c.Verification.RequiredFields {
		kind, err := fields.ParseKind(name)
		if err != nil {
			continue
		}
		out = append(out, kind)
	}
	return out
}
