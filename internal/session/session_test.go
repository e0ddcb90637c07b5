package session_test

import (
	"errors"
	"testing"

	"veriscan/internal/fields"
	"veriscan/internal/reconcile"
	"veriscan/internal/session"
)

func newSession(t *testing.T) *session.Session {
	t.Helper()
	extracted := []fields.Field{
		fields.New(fields.KindFullName, "Jon Doe", 0.9),
		fields.New(fields.KindUID, "246109002", 0.95),
		fields.New(fields.KindAge, "29", 0.99),
		fields.New(fields.KindGender, "Female", 0.96),
		fields.New(fields.KindAddress, "123, MG Road, Bengaluru", 0.85),
		fields.New(fields.KindEmail, "ananya.sharma@example.com", 0.92),
		fields.New(fields.KindPhone, "+91-9876543210", 0.97),
	}
	return session.New("doc-1", extracted, session.Metadata{Model: "tesseract"}, "uploads/scan.jpg")
}

func policy() (reconcile.Thresholds, []fields.Kind) {
	return reconcile.DefaultThresholds(), []fields.Kind{fields.KindUID}
}

func TestNewSessionStartsCreated(t *testing.T) {
	sess := newSession(t)
	if sess.State != session.StateCreated {
		t.Fatalf("expected created state, got %s", sess.State)
	}
	if len(sess.Fields) != len(fields.Kinds()) {
		t.Fatalf("expected one field per kind, got %d", len(sess.Fields))
	}
	for _, f := range sess.Fields {
		if f.State != fields.StatePending {
			t.Fatalf("field %s: expected pending, got %s", f.Kind, f.State)
		}
	}
	if len(sess.Audit) != 1 || sess.Audit[0].Action != session.ActionCreate {
		t.Fatalf("expected single create audit entry, got %#v", sess.Audit)
	}
}

func TestNewSessionFillsMissingKinds(t *testing.T) {
	sess := session.New("doc-2", []fields.Field{
		fields.New(fields.KindUID, "1", 0.5),
	}, session.Metadata{}, "")
	if len(sess.Fields) != len(fields.Kinds()) {
		t.Fatalf("expected full field set, got %d", len(sess.Fields))
	}
	name := sess.Field(fields.KindFullName)
	if name == nil || name.RawValue != "" || name.Confidence != 0 {
		t.Fatalf("expected undetected full_name placeholder, got %#v", name)
	}
}

func TestFieldActionsMoveToAwaiting(t *testing.T) {
	sess := newSession(t)
	if err := sess.EditField(fields.KindFullName, "John Doe"); err != nil {
		t.Fatalf("EditField failed: %v", err)
	}
	if sess.State != session.StateAwaitingVerification {
		t.Fatalf("expected awaiting_verification after first touch, got %s", sess.State)
	}
	f := sess.Field(fields.KindFullName)
	if f.State != fields.StateEdited || f.Value != "John Doe" {
		t.Fatalf("unexpected field after edit: %#v", f)
	}
	if f.RawValue != "Jon Doe" {
		t.Fatal("edit must not overwrite the OCR raw value")
	}
}

func TestVerifyAcceptsAndTerminates(t *testing.T) {
	sess := newSession(t)
	thresholds, required := policy()

	outcome, err := sess.Verify(reconcile.Submission{fields.KindFullName: "John Doe"}, thresholds, required)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !outcome.Accepted {
		t.Fatal("expected accepted outcome")
	}
	if sess.State != session.StateVerified {
		t.Fatalf("expected verified state, got %s", sess.State)
	}
	for _, f := range sess.Fields {
		if f.State != fields.StateAccepted {
			t.Fatalf("field %s: expected accepted, got %s", f.Kind, f.State)
		}
	}

	// Terminal sessions refuse further verification without mutating audit.
	auditLen := len(sess.Audit)
	_, err = sess.Verify(reconcile.Submission{}, thresholds, required)
	if !errors.Is(err, session.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if len(sess.Audit) != auditLen {
		t.Fatalf("failed verify must not append audit entries: %d vs %d", len(sess.Audit), auditLen)
	}
}

func TestVerifyValidationErrorLeavesSessionUntouched(t *testing.T) {
	sess := newSession(t)
	thresholds, required := policy()
	auditLen := len(sess.Audit)

	_, err := sess.Verify(reconcile.Submission{fields.Kind("ssn"): "x"}, thresholds, required)
	if !errors.Is(err, reconcile.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if sess.State != session.StateCreated {
		t.Fatalf("state must not change on validation error, got %s", sess.State)
	}
	if len(sess.Audit) != auditLen {
		t.Fatal("audit must not grow on validation error")
	}
	for _, f := range sess.Fields {
		if f.State != fields.StatePending {
			t.Fatalf("field %s mutated by failed verify", f.Kind)
		}
	}
}

func TestVerifyWithRejectedFieldStaysOpen(t *testing.T) {
	sess := newSession(t)
	thresholds, required := policy()

	if err := sess.RejectField(fields.KindAddress); err != nil {
		t.Fatalf("RejectField failed: %v", err)
	}

	outcome, err := sess.Verify(reconcile.Submission{}, thresholds, required)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if outcome.Accepted {
		t.Fatal("expected not accepted while rejection stands")
	}
	if sess.State != session.StateAwaitingVerification {
		t.Fatalf("expected awaiting_verification, got %s", sess.State)
	}
	if sess.Field(fields.KindAddress).State != fields.StateRejected {
		t.Fatal("rejected field must stay rejected without a resubmitted value")
	}

	// Resubmitting with a value for the rejected field verifies the document.
	outcome, err = sess.Verify(reconcile.Submission{fields.KindAddress: "45 Park Street, Kolkata"}, thresholds, required)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !outcome.Accepted || sess.State != session.StateVerified {
		t.Fatalf("expected verified after resubmission, got accepted=%v state=%s", outcome.Accepted, sess.State)
	}
}

func TestOverrideFlaggedInAudit(t *testing.T) {
	sess := session.New("doc-3", []fields.Field{
		fields.New(fields.KindUID, "", 0),
	}, session.Metadata{}, "")
	thresholds, required := policy()

	_, err := sess.Verify(reconcile.Submission{fields.KindUID: "246109002"}, thresholds, required)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}

	var found bool
	for _, entry := range sess.Audit {
		if entry.Action == session.ActionReconcile && entry.Field == fields.KindUID {
			found = true
			if !entry.Override || entry.Verdict != reconcile.VerdictOverride {
				t.Fatalf("expected override flagged, got %#v", entry)
			}
		}
	}
	if !found {
		t.Fatal("expected reconcile audit entry for uid")
	}
	if sess.Field(fields.KindUID).Value != "246109002" {
		t.Fatal("expected override value stored")
	}
}

func TestRejectDocumentIsTerminal(t *testing.T) {
	sess := newSession(t)
	if err := sess.RejectDocument("illegible scan"); err != nil {
		t.Fatalf("RejectDocument failed: %v", err)
	}
	if sess.State != session.StateRejected {
		t.Fatalf("expected rejected, got %s", sess.State)
	}
	if err := sess.EditField(fields.KindAge, "30"); !errors.Is(err, session.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on terminal session, got %v", err)
	}
	// Audit trail retained for inspection.
	if len(sess.Audit) == 0 {
		t.Fatal("rejected session must keep its audit trail")
	}
}

func TestVerifyIdempotentVerdictsBeforeTerminal(t *testing.T) {
	sess := newSession(t)
	thresholds, required := policy()
	if err := sess.RejectField(fields.KindAddress); err != nil {
		t.Fatalf("RejectField failed: %v", err)
	}

	// Same submission twice; session never reaches a terminal state because
	// the rejected field is never resubmitted.
	auditBefore := len(sess.Audit)
	submission := reconcile.Submission{fields.KindFullName: "John Doe"}
	first, err := sess.Verify(submission, thresholds, required)
	if err != nil {
		t.Fatalf("first Verify failed: %v", err)
	}
	auditAfterFirst := len(sess.Audit)
	second, err := sess.Verify(submission, thresholds, required)
	if err != nil {
		t.Fatalf("second Verify failed: %v", err)
	}

	if len(first.Results) != len(second.Results) {
		t.Fatalf("verdict counts differ: %d vs %d", len(first.Results), len(second.Results))
	}
	for i := range first.Results {
		if first.Results[i].Verdict != second.Results[i].Verdict ||
			first.Results[i].Similarity != second.Results[i].Similarity {
			t.Fatalf("verdicts differ at %d: %#v vs %#v", i, first.Results[i], second.Results[i])
		}
	}
	// Both invocations append the same number of entries; nothing duplicated
	// beyond the two passes themselves.
	if len(sess.Audit)-auditAfterFirst != auditAfterFirst-auditBefore {
		t.Fatalf("audit growth differs between identical invocations: %d then %d",
			auditAfterFirst-auditBefore, len(sess.Audit)-auditAfterFirst)
	}
}
