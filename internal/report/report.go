package report

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"veriscan/internal/config"
	"veriscan/internal/fields"
	"veriscan/internal/logging"
	"veriscan/internal/session"
)

// Summary is the machine-readable report written alongside the text
// rendering. Field names are stable; downstream tooling parses this file.
type Summary struct {
	DocumentID  string         `json:"documentId"`
	SourceImage string         `json:"sourceImage,omitempty"`
	State       string         `json:"state"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Model       string         `json:"model,omitempty"`
	Degraded    bool           `json:"degraded"`
	Fields      []FieldSummary `json:"fields"`
	Audit       []AuditSummary `json:"audit"`
	Counts      Counts         `json:"counts"`
}

type FieldSummary struct {
	Kind       string  `json:"kind"`
	RawValue   string  `json:"rawValue"`
	FinalValue string  `json:"finalValue"`
	State      string  `json:"state"`
	Confidence float64 `json:"confidence"`
}

type AuditSummary struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Field     string    `json:"field,omitempty"`
	OldState  string    `json:"oldState,omitempty"`
	NewState  string    `json:"newState,omitempty"`
	Verdict   string    `json:"verdict,omitempty"`
	Override  bool      `json:"override,omitempty"`
	Note      string    `json:"note,omitempty"`
}

// Counts aggregates field outcomes for quick dashboards.
type Counts struct {
	Accepted  int `json:"accepted"`
	Rejected  int `json:"rejected"`
	Edited    int `json:"edited"`
	Pending   int `json:"pending"`
	Overrides int `json:"overrides"`
}

// Artifacts names the files a Generate call produced.
type Artifacts struct {
	TextPath string `json:"textPath"`
	JSONPath string `json:"jsonPath"`
}

// Generator writes per-document verification reports into the configured
// report directory.
type Generator struct {
	dir    string
	logger *slog.Logger
}

func NewGenerator(cfg *config.Config, logger *slog.Logger) *Generator {
	return &Generator{
		dir:    cfg.Paths.ReportDir,
		logger: logging.NewComponentLogger(logger, "report"),
	}
}

// Generate renders the session as a human-readable text report plus a JSON
// sidecar and writes both under <reportDir>/<documentID>.{txt,json}.
// Regenerating for the same document overwrites the previous pair.
func (g *Generator) Generate(sess *session.Session) (Artifacts, error) {
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create report directory: %w", err)
	}

	artifacts := Artifacts{
		TextPath: filepath.Join(g.dir, sess.ID+".txt"),
		JSONPath: filepath.Join(g.dir, sess.ID+".json"),
	}

	if err := os.WriteFile(artifacts.TextPath, []byte(Render(sess)), 0o644); err != nil {
		return Artifacts{}, fmt.Errorf("write text report: %w", err)
	}

	payload, err := json.MarshalIndent(Summarize(sess), "", "  ")
	if err != nil {
		return Artifacts{}, fmt.Errorf("encode report summary: %w", err)
	}
	if err := os.WriteFile(artifacts.JSONPath, append(payload, '\n'), 0o644); err != nil {
		return Artifacts{}, fmt.Errorf("write report summary: %w", err)
	}

	g.logger.Info("report generated",
		logging.String("document_id", sess.ID),
		logging.String("state", string(sess.State)),
		logging.String("path", artifacts.TextPath))
	return artifacts, nil
}

// Summarize builds the JSON sidecar structure from a session snapshot.
func Summarize(sess *session.Session) Summary {
	summary := Summary{
		DocumentID:  sess.ID,
		SourceImage: sess.SourceImage,
		State:       string(sess.State),
		CreatedAt:   sess.CreatedAt,
		UpdatedAt:   sess.UpdatedAt,
		Model:       sess.Metadata.Model,
		Degraded:    sess.Metadata.Degraded,
		Fields:      make([]FieldSummary, 0, len(sess.Fields)),
		Audit:       make([]AuditSummary, 0, len(sess.Audit)),
	}

	for _, field := range sess.Fields {
		summary.Fields = append(summary.Fields, FieldSummary{
			Kind:       string(field.Kind),
			RawValue:   field.RawValue,
			FinalValue: field.Value,
			State:      string(field.State),
			Confidence: field.Confidence,
		})
		switch field.State {
		case fields.StateAccepted:
			summary.Counts.Accepted++
		case fields.StateRejected:
			summary.Counts.Rejected++
		case fields.StateEdited:
			summary.Counts.Edited++
		case fields.StatePending:
			summary.Counts.Pending++
		}
	}

	for _, entry := range sess.Audit {
		summary.Audit = append(summary.Audit, AuditSummary{
			Timestamp: entry.Timestamp,
			Action:    entry.Action,
			Field:     string(entry.Field),
			OldState:  entry.OldState,
			NewState:  entry.NewState,
			Verdict:   string(entry.Verdict),
			Override:  entry.Override,
			Note:      entry.Note,
		})
		if entry.Override {
			summary.Counts.Overrides++
		}
	}
	return summary
}

// Render produces the operator-facing text report: a header block, the
// field comparison table, and the full audit trail.
func Render(sess *session.Session) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Verification Report\n")
	fmt.Fprintf(&b, "Document:  %s\n", sess.ID)
	if sess.SourceImage != "" {
		fmt.Fprintf(&b, "Source:    %s\n", sess.SourceImage)
	}
	fmt.Fprintf(&b, "State:     %s\n", sess.State)
	if sess.Metadata.Model != "" {
		fmt.Fprintf(&b, "Extractor: %s\n", sess.Metadata.Model)
	}
	if sess.Metadata.Degraded {
		fmt.Fprintf(&b, "Extraction degraded; fields entered manually.\n")
	}
	fmt.Fprintf(&b, "Created:   %s\n", sess.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Updated:   %s\n\n", sess.UpdatedAt.Format(time.RFC3339))

	fieldRows := make([][]string, 0, len(sess.Fields))
	for _, field := range sess.Fields {
		fieldRows = append(fieldRows, []string{
			string(field.Kind),
			field.RawValue,
			field.Value,
			string(field.State),
			fmt.Sprintf("%.2f", field.Confidence),
		})
	}
	b.WriteString(renderTable(
		[]string{"Field", "Extracted", "Final", "State", "Confidence"},
		fieldRows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	))
	b.WriteString("\n\n")

	auditRows := make([][]string, 0, len(sess.Audit))
	for _, entry := range sess.Audit {
		detail := entry.Note
		if entry.Verdict != "" {
			detail = string(entry.Verdict)
			if entry.Override {
				detail += " (override)"
			}
		}
		auditRows = append(auditRows, []string{
			entry.Timestamp.Format(time.RFC3339),
			entry.Action,
			string(entry.Field),
			transition(entry.OldState, entry.NewState),
			detail,
		})
	}
	b.WriteString(renderTable(
		[]string{"Time", "Action", "Field", "Transition", "Detail"},
		auditRows,
		nil,
	))
	b.WriteString("\n")
	return b.String()
}

func transition(oldState, newState string) string {
	switch {
	case oldState == "" && newState == "":
		return ""
	case oldState == "":
		return newState
	case newState == "" || oldState == newState:
		return oldState
	default:
		return oldState + " > " + newState
	}
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
