package api

import (
	"context"
	"errors"
	"testing"

	"veriscan/internal/fields"
	"veriscan/internal/logging"
	"veriscan/internal/ocr"
	"veriscan/internal/reconcile"
	"veriscan/internal/report"
	"veriscan/internal/session"
	"veriscan/internal/testsupport"
)

func staticExtraction() ocr.Extraction {
	return ocr.Extraction{
		Candidates: map[fields.Kind]ocr.Candidate{
			fields.KindFullName: {Value: "Ananya Sharma", Confidence: 0.98},
			fields.KindUID:      {Value: "246109002", Confidence: 0.95},
			fields.KindAge:      {Value: "29", Confidence: 0.99},
		},
	}
}

func newTestService(t *testing.T, provider ocr.Provider) *DocumentService {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	manager := session.NewManager(st, session.Policy{
		Thresholds: reconcile.DefaultThresholds(),
		Required:   []fields.Kind{fields.KindUID},
	}, logging.NewNop())
	reports := report.NewGenerator(cfg, logging.NewNop())
	return NewDocumentService(manager, provider, reports, cfg.Paths.UploadDir, logging.NewNop())
}

func TestProcessOpensSession(t *testing.T) {
	svc := newTestService(t, &ocr.StaticProvider{Extraction: staticExtraction()})

	resp, err := svc.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if resp.Degraded {
		t.Error("expected non-degraded processing")
	}
	if resp.Document.ID == "" {
		t.Error("expected document id")
	}
	if resp.Document.State != string(session.StateCreated) {
		t.Errorf("expected created state, got %q", resp.Document.State)
	}
	if len(resp.Document.Fields) != len(fields.Kinds()) {
		t.Errorf("expected %d fields, got %d", len(fields.Kinds()), len(resp.Document.Fields))
	}
	if resp.Document.Fields[0].RawValue != "Ananya Sharma" {
		t.Errorf("unexpected first field %+v", resp.Document.Fields[0])
	}
}

func TestProcessRejectsEmptyUpload(t *testing.T) {
	svc := newTestService(t, &ocr.StaticProvider{Extraction: staticExtraction()})
	if _, err := svc.Process(context.Background(), "scan.jpg", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestProcessDegradesWhenProviderUnavailable(t *testing.T) {
	svc := newTestService(t, ocr.Disabled())

	resp, err := svc.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !resp.Degraded {
		t.Fatal("expected degraded processing")
	}
	for _, field := range resp.Document.Fields {
		if field.RawValue != "" {
			t.Errorf("expected empty field %s, got %q", field.Kind, field.RawValue)
		}
	}
}

func TestVerifyAcceptsDocument(t *testing.T) {
	svc := newTestService(t, &ocr.StaticProvider{Extraction: staticExtraction()})

	created, err := svc.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	resp, err := svc.Verify(context.Background(), created.Document.ID, VerifyRequest{
		Fields: map[string]string{
			"full_name": "Jon Doe",
			"uid":       "246109002",
		},
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !resp.Accepted {
		t.Error("expected accepted outcome")
	}
	if resp.State != string(session.StateVerified) {
		t.Errorf("expected verified state, got %q", resp.State)
	}
	if !resp.Persisted {
		t.Error("expected persisted outcome")
	}
	if len(resp.Verdicts) != len(fields.Kinds()) {
		t.Errorf("expected %d verdicts, got %d", len(fields.Kinds()), len(resp.Verdicts))
	}
}

func TestVerifyRejectsUnknownKind(t *testing.T) {
	svc := newTestService(t, &ocr.StaticProvider{Extraction: staticExtraction()})
	created, err := svc.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	_, err = svc.Verify(context.Background(), created.Document.ID, VerifyRequest{
		Fields: map[string]string{"ssn": "000-00-0000"},
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestFieldActionsRoundTrip(t *testing.T) {
	svc := newTestService(t, &ocr.StaticProvider{Extraction: staticExtraction()})
	created, err := svc.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	id := created.Document.ID

	edited, err := svc.EditField(context.Background(), id, "full_name", "Ananya S Sharma")
	if err != nil {
		t.Fatalf("edit field: %v", err)
	}
	if edited.Document.State != string(session.StateAwaitingVerification) {
		t.Errorf("expected awaiting_verification after edit, got %q", edited.Document.State)
	}
	if edited.Document.Fields[0].Value != "Ananya S Sharma" {
		t.Errorf("unexpected edited value %+v", edited.Document.Fields[0])
	}

	if _, err := svc.AcceptField(context.Background(), id, "age"); err != nil {
		t.Fatalf("accept field: %v", err)
	}
	rejected, err := svc.RejectField(context.Background(), id, "uid")
	if err != nil {
		t.Fatalf("reject field: %v", err)
	}
	if rejected.Document.Fields[1].State != string(fields.StateRejected) {
		t.Errorf("expected rejected uid field, got %+v", rejected.Document.Fields[1])
	}

	if _, err := svc.EditField(context.Background(), id, "ssn", "x"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for unknown kind, got %v", err)
	}
}

func TestRejectDocumentIsTerminal(t *testing.T) {
	svc := newTestService(t, &ocr.StaticProvider{Extraction: staticExtraction()})
	created, err := svc.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	resp, err := svc.Reject(context.Background(), created.Document.ID, "illegible scan")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if resp.Document.State != string(session.StateRejected) {
		t.Errorf("expected rejected state, got %q", resp.Document.State)
	}

	_, err = svc.Verify(context.Background(), created.Document.ID, VerifyRequest{})
	if !errors.Is(err, session.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState after rejection, got %v", err)
	}
}

func TestListFiltersAndValidatesStates(t *testing.T) {
	svc := newTestService(t, &ocr.StaticProvider{Extraction: staticExtraction()})
	created, err := svc.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if _, err := svc.Reject(context.Background(), created.Document.ID, "dup"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if _, err := svc.Process(context.Background(), "scan2.jpg", []byte("image-bytes")); err != nil {
		t.Fatalf("second process: %v", err)
	}

	all, err := svc.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(all.Documents))
	}

	rejected, err := svc.List("rejected")
	if err != nil {
		t.Fatalf("list rejected: %v", err)
	}
	if len(rejected.Documents) != 1 {
		t.Fatalf("expected 1 rejected document, got %d", len(rejected.Documents))
	}

	if _, err := svc.List("bogus"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for bogus state, got %v", err)
	}
}

func TestReportIncludesText(t *testing.T) {
	svc := newTestService(t, &ocr.StaticProvider{Extraction: staticExtraction()})
	created, err := svc.Process(context.Background(), "scan.jpg", []byte("image-bytes"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}

	resp, err := svc.Report(created.Document.ID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if resp.DocumentID != created.Document.ID {
		t.Errorf("unexpected report document id %q", resp.DocumentID)
	}
	if resp.Text == "" || resp.TextPath == "" || resp.JSONPath == "" {
		t.Errorf("incomplete report response %+v", resp)
	}
}
