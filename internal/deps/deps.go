// Package deps reports the availability of external tools the service
// shells out to or links against.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"veriscan/internal/config"
)

// Requirement defines an external dependency veriscan relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the external tools for the given configuration.
// Tesseract is required only while extraction is enabled; with extraction
// off the daemon runs fully degraded and needs nothing.
func Requirements(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "Tesseract",
			Command:     "tesseract",
			Description: "OCR engine backing document field extraction",
			Optional:    cfg == nil || !cfg.OCR.Enabled,
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
