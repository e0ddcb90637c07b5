package api

import (
	"veriscan/internal/reconcile"
	"veriscan/internal/session"
)

// FromSession converts a session snapshot to its API representation.
func FromSession(sess *session.Session) Document {
	if sess == nil {
		return Document{}
	}

	dto := Document{
		ID:          sess.ID,
		SourceImage: sess.SourceImage,
		State:       string(sess.State),
		Fields:      make([]Field, 0, len(sess.Fields)),
		Audit:       make([]AuditEntry, 0, len(sess.Audit)),
		Extraction: Extraction{
			Model:            sess.Metadata.Model,
			ProcessingMillis: sess.Metadata.ProcessingMillis,
			Degraded:         sess.Metadata.Degraded,
		},
	}
	if !sess.Metadata.ScanTime.IsZero() {
		dto.Extraction.ScanTime = sess.Metadata.ScanTime.UTC().Format(dateTimeFormat)
	}
	if !sess.CreatedAt.IsZero() {
		dto.CreatedAt = sess.CreatedAt.UTC().Format(dateTimeFormat)
	}
	if !sess.UpdatedAt.IsZero() {
		dto.UpdatedAt = sess.UpdatedAt.UTC().Format(dateTimeFormat)
	}

	for _, field := range sess.Fields {
		dto.Fields = append(dto.Fields, Field{
			Kind:       string(field.Kind),
			RawValue:   field.RawValue,
			Value:      field.Value,
			State:      string(field.State),
			Confidence: field.Confidence,
		})
	}
	for _, entry := range sess.Audit {
		dto.Audit = append(dto.Audit, AuditEntry{
			Timestamp: entry.Timestamp.UTC().Format(dateTimeFormat),
			Action:    entry.Action,
			Field:     string(entry.Field),
			OldState:  entry.OldState,
			NewState:  entry.NewState,
			Verdict:   string(entry.Verdict),
			Override:  entry.Override,
			Note:      entry.Note,
		})
	}
	return dto
}

// FromSessions converts a slice of session snapshots into API DTOs.
func FromSessions(sessions []*session.Session) []Document {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]Document, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, FromSession(sess))
	}
	return out
}

// FromOutcome converts a reconciliation outcome into API verdicts.
func FromOutcome(outcome reconcile.Outcome) []FieldVerdict {
	if len(outcome.Results) == 0 {
		return nil
	}
	out := make([]FieldVerdict, 0, len(outcome.Results))
	for _, result := range outcome.Results {
		out = append(out, FieldVerdict{
			Kind:          string(result.Kind),
			Verdict:       string(result.Verdict),
			Similarity:    result.Similarity,
			OriginalValue: result.OriginalValue,
			FinalValue:    result.FinalValue,
			Override:      result.Override,
			State:         string(result.State),
		})
	}
	return out
}
