package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"veriscan/internal/fields"
	"veriscan/internal/fileutil"
	"veriscan/internal/logging"
	"veriscan/internal/ocr"
	"veriscan/internal/reconcile"
	"veriscan/internal/report"
	"veriscan/internal/session"
)

// ErrValidation marks malformed request payloads: unknown field kinds,
// unknown states, or empty uploads.
var ErrValidation = errors.New("invalid request")

// DocumentService bridges transport handlers and the session manager. It
// owns the process pipeline (upload, extract, open session) and translates
// between API DTOs and core types.
type DocumentService struct {
	manager   *session.Manager
	provider  ocr.Provider
	reports   *report.Generator
	uploadDir string
	logger    *slog.Logger
}

func NewDocumentService(manager *session.Manager, provider ocr.Provider, reports *report.Generator, uploadDir string, logger *slog.Logger) *DocumentService {
	if provider == nil {
		provider = ocr.Disabled()
	}
	return &DocumentService{
		manager:   manager,
		provider:  provider,
		reports:   reports,
		uploadDir: uploadDir,
		logger:    logging.NewComponentLogger(logger, "document-service"),
	}
}

// Process stores the uploaded image, runs extraction, and opens a session.
// Extraction failure does not fail the request: the session starts with
// empty fields and a degraded marker so the operator can enter values by
// hand.
func (s *DocumentService) Process(ctx context.Context, filename string, image []byte) (ProcessResponse, error) {
	if len(image) == 0 {
		return ProcessResponse{}, fmt.Errorf("%w: empty image upload", ErrValidation)
	}

	stored, err := s.storeUpload(filename, image)
	if err != nil {
		return ProcessResponse{}, err
	}

	start := time.Now()
	extraction, extractErr := s.provider.Extract(ctx, image)
	meta := session.Metadata{
		Model:            extraction.Model,
		ScanTime:         extraction.ScanTime,
		ProcessingMillis: time.Since(start).Milliseconds(),
	}
	extracted := extraction.Fields()
	if extractErr != nil {
		if !errors.Is(extractErr, ocr.ErrUnavailable) {
			return ProcessResponse{}, extractErr
		}
		s.logger.WarnContext(ctx, "extraction unavailable, continuing degraded",
			logging.String("image", stored),
			logging.Error(extractErr))
		meta = session.Metadata{
			Model:            s.provider.Name(),
			ScanTime:         start.UTC(),
			ProcessingMillis: time.Since(start).Milliseconds(),
			Degraded:         true,
		}
		extracted = fields.NewEmptySet()
	}

	sess, err := s.manager.Create(ctx, extracted, meta, stored)
	if err != nil {
		return ProcessResponse{}, err
	}
	return ProcessResponse{Document: FromSession(sess), Degraded: meta.Degraded}, nil
}

func (s *DocumentService) storeUpload(filename string, image []byte) (string, error) {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}
	base := fileutil.SanitizeFileName(filepath.Base(filename))
	if base == "" || base == "." {
		base = "upload"
	}
	stored := filepath.Join(s.uploadDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), base))
	if err := os.WriteFile(stored, image, 0o644); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}
	return stored, nil
}

// Get returns one document by ID.
func (s *DocumentService) Get(id string) (DocumentResponse, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return DocumentResponse{}, err
	}
	return DocumentResponse{Document: FromSession(sess)}, nil
}

// List returns documents, optionally filtered by state names.
func (s *DocumentService) List(states ...string) (DocumentListResponse, error) {
	parsed, err := ParseStates(states...)
	if err != nil {
		return DocumentListResponse{}, err
	}
	return DocumentListResponse{Documents: FromSessions(s.manager.List(parsed...))}, nil
}

// Stats returns document counts keyed by state name.
func (s *DocumentService) Stats() map[string]int {
	stats := s.manager.Stats()
	out := make(map[string]int, len(stats))
	for state, count := range stats {
		out[string(state)] = count
	}
	return out
}

// Verify runs the reconciliation pass for a submission. A persistence
// failure is reported alongside the outcome: the decision stands in memory
// and the caller can retry the save.
func (s *DocumentService) Verify(ctx context.Context, id string, req VerifyRequest) (VerifyResponse, error) {
	submission, err := ParseSubmission(req.Fields)
	if err != nil {
		return VerifyResponse{}, err
	}
	sess, outcome, err := s.manager.Verify(ctx, id, submission)
	if err != nil && !errors.Is(err, session.ErrPersistence) {
		return VerifyResponse{}, err
	}
	resp := VerifyResponse{
		Accepted:  outcome.Accepted,
		State:     string(sess.State),
		Verdicts:  FromOutcome(outcome),
		Document:  FromSession(sess),
		Persisted: err == nil,
	}
	if err != nil {
		resp.PersistenceError = err.Error()
	}
	return resp, err
}

// EditField records a corrected value for one field.
func (s *DocumentService) EditField(ctx context.Context, id, kind, value string) (DocumentResponse, error) {
	parsed, err := parseKind(kind)
	if err != nil {
		return DocumentResponse{}, err
	}
	sess, err := s.manager.EditField(ctx, id, parsed, value)
	if err != nil {
		return DocumentResponse{}, err
	}
	return DocumentResponse{Document: FromSession(sess)}, nil
}

// AcceptField marks one field as reviewed and correct.
func (s *DocumentService) AcceptField(ctx context.Context, id, kind string) (DocumentResponse, error) {
	parsed, err := parseKind(kind)
	if err != nil {
		return DocumentResponse{}, err
	}
	sess, err := s.manager.AcceptField(ctx, id, parsed)
	if err != nil {
		return DocumentResponse{}, err
	}
	return DocumentResponse{Document: FromSession(sess)}, nil
}

// RejectField flags one field as wrong pending resubmission.
func (s *DocumentService) RejectField(ctx context.Context, id, kind string) (DocumentResponse, error) {
	parsed, err := parseKind(kind)
	if err != nil {
		return DocumentResponse{}, err
	}
	sess, err := s.manager.RejectField(ctx, id, parsed)
	if err != nil {
		return DocumentResponse{}, err
	}
	return DocumentResponse{Document: FromSession(sess)}, nil
}

// Reject terminally rejects the whole document.
func (s *DocumentService) Reject(ctx context.Context, id, reason string) (DocumentResponse, error) {
	sess, err := s.manager.RejectDocument(ctx, id, reason)
	if err != nil && !errors.Is(err, session.ErrPersistence) {
		return DocumentResponse{}, err
	}
	return DocumentResponse{Document: FromSession(sess)}, err
}

// Report generates the report artifacts for a document and returns the text
// rendering inline.
func (s *DocumentService) Report(id string) (ReportResponse, error) {
	sess, err := s.manager.Get(id)
	if err != nil {
		return ReportResponse{}, err
	}
	artifacts, err := s.reports.Generate(sess)
	if err != nil {
		return ReportResponse{}, err
	}
	return ReportResponse{
		DocumentID: sess.ID,
		TextPath:   artifacts.TextPath,
		JSONPath:   artifacts.JSONPath,
		Text:       report.Render(sess),
	}, nil
}

// Flush retries persisting a session whose save previously failed.
func (s *DocumentService) Flush(ctx context.Context, id string) error {
	return s.manager.Flush(ctx, id)
}

// ParseSubmission validates request field keys against the known kinds.
func ParseSubmission(values map[string]string) (reconcile.Submission, error) {
	submission := make(reconcile.Submission, len(values))
	for name, value := range values {
		kind, err := parseKind(name)
		if err != nil {
			return nil, err
		}
		submission[kind] = value
	}
	return submission, nil
}

// ParseStates validates state filter names.
func ParseStates(names ...string) ([]session.State, error) {
	states := make([]session.State, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			continue
		}
		state := session.State(strings.ToLower(trimmed))
		if !session.ValidState(state) {
			return nil, fmt.Errorf("%w: unknown state %q", ErrValidation, name)
		}
		states = append(states, state)
	}
	return states, nil
}

func parseKind(name string) (fields.Kind, error) {
	kind, err := fields.ParseKind(name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return kind, nil
}
