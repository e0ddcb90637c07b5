package main

import (
	"fmt"
	"strings"

	"veriscan/internal/api"
)

func renderDocumentList(docs []api.Document) string {
	rows := make([][]string, 0, len(docs))
	for _, doc := range docs {
		rows = append(rows, []string{
			doc.ID,
			doc.State,
			yesNo(doc.Extraction.Degraded),
			fmt.Sprintf("%d", len(doc.Fields)),
			doc.CreatedAt,
			doc.UpdatedAt,
		})
	}
	return renderTable(
		[]string{"ID", "State", "Degraded", "Fields", "Created", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func renderDocument(doc api.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", doc.ID)
	fmt.Fprintf(&b, "State:    %s\n", doc.State)
	if doc.SourceImage != "" {
		fmt.Fprintf(&b, "Source:   %s\n", doc.SourceImage)
	}
	if doc.Extraction.Model != "" {
		fmt.Fprintf(&b, "Model:    %s\n", doc.Extraction.Model)
	}
	if doc.Extraction.Degraded {
		fmt.Fprintln(&b, "Extraction degraded; enter field values manually.")
	}
	b.WriteString("\n")
	b.WriteString(renderFields(doc.Fields))
	if len(doc.Audit) > 0 {
		b.WriteString("\n\nAudit trail:\n")
		b.WriteString(renderAudit(doc.Audit))
	}
	return b.String()
}

func renderFields(fieldSet []api.Field) string {
	rows := make([][]string, 0, len(fieldSet))
	for _, field := range fieldSet {
		rows = append(rows, []string{
			field.Kind,
			truncate(field.RawValue, 40),
			truncate(field.Value, 40),
			field.State,
			fmt.Sprintf("%.2f", field.Confidence),
		})
	}
	return renderTable(
		[]string{"Field", "Extracted", "Current", "State", "Confidence"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
	)
}

func renderAudit(entries []api.AuditEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		detail := entry.Note
		if entry.Verdict != "" {
			detail = entry.Verdict
			if entry.Override {
				detail += " (override)"
			}
		}
		rows = append(rows, []string{
			entry.Timestamp,
			entry.Action,
			entry.Field,
			detail,
		})
	}
	return renderTable([]string{"Time", "Action", "Field", "Detail"}, rows, nil)
}

func renderVerdicts(verdicts []api.FieldVerdict) string {
	rows := make([][]string, 0, len(verdicts))
	for _, verdict := range verdicts {
		rows = append(rows, []string{
			verdict.Kind,
			verdict.Verdict,
			fmt.Sprintf("%.3f", verdict.Similarity),
			truncate(verdict.FinalValue, 40),
			verdict.State,
			yesNo(verdict.Override),
		})
	}
	return renderTable(
		[]string{"Field", "Verdict", "Similarity", "Final", "State", "Override"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignLeft},
	)
}

// parseAssignments turns kind=value arguments into a submission map.
func parseAssignments(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		kind, value, ok := strings.Cut(arg, "=")
		kind = strings.TrimSpace(kind)
		if !ok || kind == "" {
			return nil, fmt.Errorf("invalid field assignment %q, expected kind=value", arg)
		}
		values[kind] = value
	}
	return values, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
