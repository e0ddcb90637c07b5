package session

import (
	"errors"
	"fmt"
	"time"

	"veriscan/internal/fields"
	"veriscan/internal/reconcile"
)

var (
	// ErrInvalidState marks mutations attempted against a terminal session.
	ErrInvalidState = errors.New("invalid document state")
	// ErrUnknownField marks operator actions naming a kind outside the set.
	ErrUnknownField = errors.New("unknown field kind")
)

// State represents the lifecycle of a document session.
type State string

const (
	StateCreated              State = "created"
	StateAwaitingVerification State = "awaiting_verification"
	StateVerified             State = "verified"
	StateRejected             State = "rejected"
)

var allStates = []State{StateCreated, StateAwaitingVerification, StateVerified, StateRejected}

// ValidState reports whether state is a known session state.
func ValidState(state State) bool {
	for _, s := range allStates {
		if s == state {
			return true
		}
	}
	return false
}

// Terminal reports whether the session can no longer change.
func (s State) Terminal() bool {
	return s == StateVerified || s == StateRejected
}

// Operator and engine actions recorded in the audit trail.
const (
	ActionCreate         = "create"
	ActionEditField      = "edit_field"
	ActionAcceptField    = "accept_field"
	ActionRejectField    = "reject_field"
	ActionRejectDocument = "reject_document"
	ActionReconcile      = "reconcile"
	ActionVerify         = "verify"
)

// AuditEntry is one immutable line of the append-only audit trail.
type AuditEntry struct {
	Timestamp time.Time
	Action    string
	Field     fields.Kind
	OldState  string
	NewState  string
	Verdict   reconcile.Verdict
	Override  bool
	Note      string
}

// Metadata captures extraction provenance for a session.
type Metadata struct {
	Model            string
	ScanTime         time.Time
	ProcessingMillis int64
	Degraded         bool
}

// Session is the aggregate root for one document: its fields, lifecycle
// state, and audit trail. It exclusively owns this data; the reconcile and
// fuzzy packages are pure functions over it.
type Session struct {
	ID          string
	SourceImage string
	Fields      []fields.Field
	State       State
	Audit       []AuditEntry
	Metadata    Metadata
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// New builds a Created session around the extracted field set. The field
// order follows the canonical kind order regardless of extraction order.
func New(id string, extracted []fields.Field, meta Metadata, sourceImage string) *Session {
	byKind := make(map[fields.Kind]fields.Field, len(extracted))
	for _, f := range extracted {
		byKind[f.Kind] = f
	}

	ordered := make([]fields.Field, 0, len(fields.Kinds()))
	for _, kind := range fields.Kinds() {
		if f, ok := byKind[kind]; ok {
			ordered = append(ordered, f)
			continue
		}
		ordered = append(ordered, fields.New(kind, "", 0))
	}

	now := time.Now().UTC()
	sess := &Session{
		ID:          id,
		SourceImage: sourceImage,
		Fields:      ordered,
		State:       StateCreated,
		Metadata:    meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	sess.appendAudit(AuditEntry{
		Action:   ActionCreate,
		NewState: string(StateCreated),
		Note:     fmt.Sprintf("session created with %d fields", len(ordered)),
	})
	return sess
}

// Field returns a pointer to the field with the given kind, or nil.
func (s *Session) Field(kind fields.Kind) *fields.Field {
	for i := range s.Fields {
		if s.Fields[i].Kind == kind {
			return &s.Fields[i]
		}
	}
	return nil
}

// EditField records an operator-supplied replacement value for one field.
func (s *Session) EditField(kind fields.Kind, value string) error {
	return s.applyFieldAction(ActionEditField, kind, func(f *fields.Field) {
		f.Value = value
		f.State = fields.StateEdited
	})
}

// AcceptField marks one field's current value as operator-approved.
func (s *Session) AcceptField(kind fields.Kind) error {
	return s.applyFieldAction(ActionAcceptField, kind, func(f *fields.Field) {
		f.State = fields.StateAccepted
	})
}

// RejectField marks one field as explicitly rejected. A rejected field only
// reaches accepted again through a submission carrying a fresh value.
func (s *Session) RejectField(kind fields.Kind) error {
	return s.applyFieldAction(ActionRejectField, kind, func(f *fields.Field) {
		f.State = fields.StateRejected
	})
}

func (s *Session) applyFieldAction(action string, kind fields.Kind, mutate func(*fields.Field)) error {
	if s.State.Terminal() {
		return fmt.Errorf("%w: document %s is %s", ErrInvalidState, s.ID, s.State)
	}
	field := s.Field(kind)
	if field == nil {
		return fmt.Errorf("%w: %q", ErrUnknownField, kind)
	}

	oldState := field.State
	mutate(field)
	s.appendAudit(AuditEntry{
		Action:   action,
		Field:    kind,
		OldState: string(oldState),
		NewState: string(field.State),
	})
	s.markInteracted(action)
	return nil
}

// RejectDocument terminally rejects the session by explicit operator action.
// The audit trail and field set are retained for inspection.
func (s *Session) RejectDocument(reason string) error {
	if s.State.Terminal() {
		return fmt.Errorf("%w: document %s is %s", ErrInvalidState, s.ID, s.State)
	}
	old := s.State
	s.State = StateRejected
	s.appendAudit(AuditEntry{
		Action:   ActionRejectDocument,
		OldState: string(old),
		NewState: string(StateRejected),
		Note:     reason,
	})
	return nil
}

// Verify reconciles the submission against the session's fields and applies
// the outcome. On a validation error (unknown kind, missing required field)
// nothing changes: no field state, no session state, no audit entry.
//
// Divergences are advisory: an outcome that is not accepted leaves the
// session in AwaitingVerification rather than rejecting it. Only explicit
// operator action rejects a document.
func (s *Session) Verify(submission reconcile.Submission, thresholds reconcile.Thresholds, required []fields.Kind) (reconcile.Outcome, error) {
	if s.State.Terminal() {
		return reconcile.Outcome{}, fmt.Errorf("%w: document %s is %s", ErrInvalidState, s.ID, s.State)
	}

	outcome, err := reconcile.Reconcile(s.Fields, submission, thresholds, required)
	if err != nil {
		return reconcile.Outcome{}, err
	}

	for _, result := range outcome.Results {
		field := s.Field(result.Kind)
		if field == nil {
			continue
		}
		oldState := field.State
		field.Value = result.FinalValue
		field.State = result.State
		s.appendAudit(AuditEntry{
			Action:   ActionReconcile,
			Field:    result.Kind,
			OldState: string(oldState),
			NewState: string(field.State),
			Verdict:  result.Verdict,
			Override: result.Override,
		})
	}

	old := s.State
	if outcome.Accepted {
		s.State = StateVerified
	} else {
		s.State = StateAwaitingVerification
	}
	s.appendAudit(AuditEntry{
		Action:   ActionVerify,
		OldState: string(old),
		NewState: string(s.State),
		Note:     verifyNote(outcome.Accepted),
	})
	return outcome, nil
}

func verifyNote(accepted bool) string {
	if accepted {
		return "operator verification completed"
	}
	return "verification incomplete, rejected fields await resubmission"
}

func (s *Session) markInteracted(action string) {
	if s.State != StateCreated {
		return
	}
	s.State = StateAwaitingVerification
	s.appendAudit(AuditEntry{
		Action:   action,
		OldState: string(StateCreated),
		NewState: string(StateAwaitingVerification),
		Note:     "operator interaction began",
	})
}

func (s *Session) appendAudit(entry AuditEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	s.Audit = append(s.Audit, entry)
	s.UpdatedAt = entry.Timestamp
}

// Clone returns a deep copy safe to hand to readers while mutations continue.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Fields = make([]fields.Field, len(s.Fields))
	copy(cp.Fields, s.Fields)
	cp.Audit = make([]AuditEntry, len(s.Audit))
	copy(cp.Audit, s.Audit)
	return &cp
}
