package report

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"veriscan/internal/fields"
	"veriscan/internal/logging"
	"veriscan/internal/reconcile"
	"veriscan/internal/session"
	"veriscan/internal/testsupport"
)

func verifiedSession(t *testing.T) *session.Session {
	t.Helper()
	sess := testsupport.NewSession("doc-report-1")
	submission := reconcile.Submission{
		fields.KindFullName: "Ananya Sharma",
		fields.KindUID:      "246109002",
	}
	if _, err := sess.Verify(submission, reconcile.DefaultThresholds(), []fields.Kind{fields.KindUID}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return sess
}

func TestGenerateWritesBothArtifacts(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	generator := NewGenerator(cfg, logging.NewNop())
	sess := verifiedSession(t)

	artifacts, err := generator.Generate(sess)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	textBody, err := os.ReadFile(artifacts.TextPath)
	if err != nil {
		t.Fatalf("read text report: %v", err)
	}
	for _, want := range []string{"doc-report-1", "verified", "Ananya Sharma", "full_name"} {
		if !strings.Contains(string(textBody), want) {
			t.Errorf("text report missing %q", want)
		}
	}

	jsonBody, err := os.ReadFile(artifacts.JSONPath)
	if err != nil {
		t.Fatalf("read json report: %v", err)
	}
	var summary Summary
	if err := json.Unmarshal(jsonBody, &summary); err != nil {
		t.Fatalf("decode json report: %v", err)
	}
	if summary.DocumentID != "doc-report-1" {
		t.Errorf("unexpected document id %q", summary.DocumentID)
	}
	if summary.State != string(session.StateVerified) {
		t.Errorf("unexpected state %q", summary.State)
	}
	if len(summary.Fields) != len(fields.Kinds()) {
		t.Errorf("expected %d field summaries, got %d", len(fields.Kinds()), len(summary.Fields))
	}
	if summary.Counts.Accepted != len(fields.Kinds()) {
		t.Errorf("expected all fields accepted, got %d", summary.Counts.Accepted)
	}
	if len(summary.Audit) != len(sess.Audit) {
		t.Errorf("expected %d audit entries, got %d", len(sess.Audit), len(summary.Audit))
	}
}

func TestGenerateOverwritesPreviousReport(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	generator := NewGenerator(cfg, logging.NewNop())
	sess := verifiedSession(t)

	first, err := generator.Generate(sess)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	second, err := generator.Generate(sess)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if first.TextPath != second.TextPath || first.JSONPath != second.JSONPath {
		t.Fatalf("expected stable report paths, got %+v then %+v", first, second)
	}
}

func TestSummarizeCountsOverrides(t *testing.T) {
	extracted := testsupport.ExtractedFields()
	for i := range extracted {
		if extracted[i].Kind == fields.KindEmail {
			extracted[i] = fields.New(fields.KindEmail, "", 0)
		}
	}
	sess := session.New("doc-report-2", extracted, session.Metadata{Model: "tesseract"}, "uploads/doc.jpg")

	submission := reconcile.Submission{fields.KindEmail: "ananya.sharma@example.com"}
	if _, err := sess.Verify(submission, reconcile.DefaultThresholds(), nil); err != nil {
		t.Fatalf("verify: %v", err)
	}

	summary := Summarize(sess)
	if summary.Counts.Overrides != 1 {
		t.Fatalf("expected 1 override, got %d", summary.Counts.Overrides)
	}
}

func TestRenderDegradedNotice(t *testing.T) {
	sess := session.New("doc-report-3", nil, session.Metadata{Degraded: true}, "")
	body := Render(sess)
	if !strings.Contains(body, "degraded") {
		t.Fatalf("expected degraded notice in report:\n%s", body)
	}
}
