package store_test

import (
	"context"
	"errors"
	"testing"

	"veriscan/internal/fields"
	"veriscan/internal/reconcile"
	"veriscan/internal/session"
	"veriscan/internal/store"
	"veriscan/internal/testsupport"
)

func verifiedSession(t *testing.T, id string) *session.Session {
	t.Helper()
	sess := testsupport.NewSession(id)
	if _, err := sess.Verify(
		reconcile.Submission{fields.KindFullName: "Ananya Sharma"},
		reconcile.DefaultThresholds(),
		[]fields.Kind{fields.KindUID},
	); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	return sess
}

func TestSaveAndGetSessionRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	sess := verifiedSession(t, "doc-roundtrip")
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	loaded, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if loaded.State != session.StateVerified {
		t.Fatalf("expected verified, got %s", loaded.State)
	}
	if len(loaded.Fields) != len(sess.Fields) {
		t.Fatalf("expected %d fields, got %d", len(sess.Fields), len(loaded.Fields))
	}
	if len(loaded.Audit) != len(sess.Audit) {
		t.Fatalf("expected %d audit entries, got %d", len(sess.Audit), len(loaded.Audit))
	}
	for i, field := range loaded.Fields {
		if field.Kind != sess.Fields[i].Kind {
			t.Fatalf("field order not preserved at %d: %s vs %s", i, field.Kind, sess.Fields[i].Kind)
		}
	}
	name := loaded.Fields[0]
	if name.Kind != fields.KindFullName || name.State != fields.StateAccepted {
		t.Fatalf("unexpected first field: %#v", name)
	}
	if loaded.Metadata.Model != "tesseract" || loaded.Metadata.ProcessingMillis != 1205 {
		t.Fatalf("metadata not preserved: %#v", loaded.Metadata)
	}
}

func TestSaveSessionIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	sess := verifiedSession(t, "doc-idempotent")
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("first SaveSession failed: %v", err)
	}
	if err := s.SaveSession(ctx, sess); err != nil {
		t.Fatalf("second SaveSession failed: %v", err)
	}

	loaded, err := s.GetSession(ctx, sess.ID)
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(loaded.Audit) != len(sess.Audit) {
		t.Fatalf("resave duplicated audit entries: %d vs %d", len(loaded.Audit), len(sess.Audit))
	}
}

func TestGetSessionNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)

	_, err := s.GetSession(context.Background(), "missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListFiltersByState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	verified := verifiedSession(t, "doc-verified")
	if err := s.SaveSession(ctx, verified); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	rejected := testsupport.NewSession("doc-rejected")
	if err := rejected.RejectDocument("illegible scan"); err != nil {
		t.Fatalf("RejectDocument failed: %v", err)
	}
	if err := s.SaveSession(ctx, rejected); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(all))
	}

	onlyRejected, err := s.List(ctx, session.StateRejected)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(onlyRejected) != 1 || onlyRejected[0].ID != "doc-rejected" {
		t.Fatalf("unexpected filter result: %#v", onlyRejected)
	}
	// Rejected sessions keep their audit trail for inspection.
	if len(onlyRejected[0].Audit) == 0 {
		t.Fatal("rejected session lost its audit trail")
	}
}

func TestStatsCountsPerState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	for _, id := range []string{"doc-a", "doc-b"} {
		if err := s.SaveSession(ctx, verifiedSession(t, id)); err != nil {
			t.Fatalf("SaveSession failed: %v", err)
		}
	}

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats[session.StateVerified] != 2 {
		t.Fatalf("expected 2 verified, got %#v", stats)
	}
}

func TestOpenTwiceSameSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)
	sess := verifiedSession(t, "doc-reopen")
	if err := first.SaveSession(context.Background(), sess); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	second, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	loaded, err := second.GetSession(context.Background(), sess.ID)
	if err != nil {
		t.Fatalf("GetSession after reopen failed: %v", err)
	}
	if loaded.State != session.StateVerified {
		t.Fatalf("expected verified after reopen, got %s", loaded.State)
	}
}

func TestCheckHealthReportsDocumentCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	s := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := s.SaveSession(ctx, verifiedSession(t, "doc-health")); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}

	health, err := s.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.Exists || !health.Readable {
		t.Fatalf("expected healthy database, got %+v", health)
	}
	if !health.IntegrityOK {
		t.Fatalf("integrity check failed: %q", health.Error)
	}
	if health.TotalDocuments != 1 {
		t.Fatalf("TotalDocuments = %d, want 1", health.TotalDocuments)
	}
	if health.Path != s.Path() {
		t.Fatalf("Path = %q, want %q", health.Path, s.Path())
	}
}
