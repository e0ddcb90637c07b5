package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"veriscan/internal/fields"
	"veriscan/internal/reconcile"
	"veriscan/internal/session"
)

// SaveSession durably stores a session snapshot: the document row, its full
// field set, and the complete audit trail, in one transaction. Saving the
// same document again replaces the snapshot, which keeps retries after a
// failed save idempotent.
func (s *Store) SaveSession(ctx context.Context, sess *session.Session) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		return s.saveSessionTx(ctx, sess)
	})
}

func (s *Store) saveSessionTx(ctx context.Context, sess *session.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	scanTime := ""
	if !sess.Metadata.ScanTime.IsZero() {
		scanTime = sess.Metadata.ScanTime.UTC().Format(time.RFC3339Nano)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO documents (
            id, state, source_image, model, scan_time, processing_ms, degraded,
            created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            state = excluded.state,
            source_image = excluded.source_image,
            model = excluded.model,
            scan_time = excluded.scan_time,
            processing_ms = excluded.processing_ms,
            degraded = excluded.degraded,
            updated_at = excluded.updated_at`,
		sess.ID,
		string(sess.State),
		sess.SourceImage,
		sess.Metadata.Model,
		scanTime,
		sess.Metadata.ProcessingMillis,
		boolToInt(sess.Metadata.Degraded),
		sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		sess.UpdatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM document_fields WHERE document_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear fields: %w", err)
	}
	for i, field := range sess.Fields {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO document_fields (
                document_id, position, kind, raw_value, confidence, final_value, state
            ) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, i, string(field.Kind), field.RawValue, field.Confidence, field.Value, string(field.State),
		); err != nil {
			return fmt.Errorf("insert field %s: %w", field.Kind, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_log WHERE document_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("clear audit log: %w", err)
	}
	for i, entry := range sess.Audit {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO audit_log (
                document_id, seq, timestamp, action, field_kind, old_state,
                new_state, verdict, override, note
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID, i,
			entry.Timestamp.UTC().Format(time.RFC3339Nano),
			entry.Action,
			string(entry.Field),
			entry.OldState,
			entry.NewState,
			string(entry.Verdict),
			boolToInt(entry.Override),
			entry.Note,
		); err != nil {
			return fmt.Errorf("insert audit entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// GetSession reconstructs one stored session by document ID.
func (s *Store) GetSession(ctx context.Context, id string) (*session.Session, error) {
	ctx = ensureContext(ctx)

	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, state, source_image, model, scan_time, processing_ms, degraded, created_at, updated_at
         FROM documents WHERE id = ?`,
		id,
	)
	sess, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("query document: %w", err)
	}

	if err := s.loadFields(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.loadAudit(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// List returns stored sessions, optionally filtered by state, newest first.
// Field sets and audit trails are loaded in full.
func (s *Store) List(ctx context.Context, states ...session.State) ([]*session.Session, error) {
	ctx = ensureContext(ctx)

	query := `SELECT id, state, source_image, model, scan_time, processing_ms, degraded, created_at, updated_at
        FROM documents`
	args := make([]any, 0, len(states))
	if len(states) > 0 {
		query += ` WHERE state IN (` + makePlaceholders(len(states)) + `)`
		for _, state := range states {
			args = append(args, string(state))
		}
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		sess, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	for _, sess := range sessions {
		if err := s.loadFields(ctx, sess); err != nil {
			return nil, err
		}
		if err := s.loadAudit(ctx, sess); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Stats returns stored document counts per lifecycle state.
func (s *Store) Stats(ctx context.Context) (map[session.State]int, error) {
	ctx = ensureContext(ctx)

	rows, err := s.db.QueryContext(ctx, `SELECT state, COUNT(1) FROM documents GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[session.State]int)
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[session.State(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*session.Session, error) {
	var (
		sess      session.Session
		state     string
		scanTime  string
		degraded  int
		createdAt string
		updatedAt string
	)
	if err := row.Scan(
		&sess.ID, &state, &sess.SourceImage, &sess.Metadata.Model, &scanTime,
		&sess.Metadata.ProcessingMillis, &degraded, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	sess.State = session.State(state)
	sess.Metadata.Degraded = degraded != 0
	if scanTime != "" {
		if parsed, err := time.Parse(time.RFC3339Nano, scanTime); err == nil {
			sess.Metadata.ScanTime = parsed
		}
	}
	if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		sess.CreatedAt = parsed
	}
	if parsed, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		sess.UpdatedAt = parsed
	}
	return &sess, nil
}

func (s *Store) loadFields(ctx context.Context, sess *session.Session) error {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT kind, raw_value, confidence, final_value, state
         FROM document_fields WHERE document_id = ? ORDER BY position`,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("query fields: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			kind  string
			field fields.Field
			state string
		)
		if err := rows.Scan(&kind, &field.RawValue, &field.Confidence, &field.Value, &state); err != nil {
			return fmt.Errorf("scan field: %w", err)
		}
		field.Kind = fields.Kind(kind)
		field.State = fields.State(state)
		sess.Fields = append(sess.Fields, field)
	}
	return rows.Err()
}

func (s *Store) loadAudit(ctx context.Context, sess *session.Session) error {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT timestamp, action, field_kind, old_state, new_state, verdict, override, note
         FROM audit_log WHERE document_id = ? ORDER BY seq`,
		sess.ID,
	)
	if err != nil {
		return fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry     session.AuditEntry
			timestamp string
			fieldKind string
			verdict   string
			override  int
		)
		if err := rows.Scan(&timestamp, &entry.Action, &fieldKind, &entry.OldState, &entry.NewState, &verdict, &override, &entry.Note); err != nil {
			return fmt.Errorf("scan audit entry: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, timestamp); err == nil {
			entry.Timestamp = parsed
		}
		entry.Field = fields.Kind(fieldKind)
		entry.Verdict = reconcile.Verdict(verdict)
		entry.Override = override != 0
		sess.Audit = append(sess.Audit, entry)
	}
	return rows.Err()
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, n*2-1)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ',')
		}
		out = append(out, '?')
	}
	return string(out)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
