package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"veriscan/internal/fields"
	"veriscan/internal/logging"
	"veriscan/internal/reconcile"
)

var (
	// ErrNotFound marks lookups for document IDs with no active session.
	ErrNotFound = errors.New("document not found")
	// ErrPersistence marks a failure to durably store an already-decided
	// verification. The decision stands in memory; callers retry the save.
	ErrPersistence = errors.New("persistence failure")
)

// Persister durably stores terminal sessions. The sqlite store implements it;
// tests substitute an in-memory fake.
type Persister interface {
	SaveSession(ctx context.Context, sess *Session) error
}

// Policy carries the reconciliation knobs the manager applies to every
// submission. Thresholds and required kinds come from service configuration.
type Policy struct {
	Thresholds reconcile.Thresholds
	Required   []fields.Kind
}

type entry struct {
	mu   sync.RWMutex
	sess *Session
}

// Manager owns the arena of active document sessions. Each document carries
// its own lock so mutations on one document never contend with another;
// within a document, mutations are single-writer while reads proceed
// concurrently when no mutation is in flight.
type Manager struct {
	mu        sync.RWMutex
	sessions  map[string]*entry
	persister Persister
	policy    Policy
	logger    *slog.Logger
}

// NewManager constructs a Manager around the injected persister and policy.
func NewManager(persister Persister, policy Policy, logger *slog.Logger) *Manager {
	if policy.Thresholds == (reconcile.Thresholds{}) {
		policy.Thresholds = reconcile.DefaultThresholds()
	}
	return &Manager{
		sessions:  make(map[string]*entry),
		persister: persister,
		policy:    policy,
		logger:    logging.NewComponentLogger(logger, "session-manager"),
	}
}

// Create registers a new session for an extracted field set and returns a
// snapshot. The document ID is opaque and globally unique.
func (m *Manager) Create(ctx context.Context, extracted []fields.Field, meta Metadata, sourceImage string) (*Session, error) {
	id := uuid.NewString()
	sess := New(id, extracted, meta, sourceImage)

	m.mu.Lock()
	m.sessions[id] = &entry{sess: sess}
	m.mu.Unlock()

	m.logger.InfoContext(ctx, "document session created",
		logging.String("document_id", id),
		logging.Int("fields", len(sess.Fields)),
		logging.Bool("degraded", meta.Degraded),
	)
	return sess.Clone(), nil
}

// Restore loads previously persisted sessions into the manager, typically
// at daemon startup. Restored sessions keep their audit trail untouched and
// overwrite any in-memory entry with the same ID.
func (m *Manager) Restore(sessions ...*Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sess := range sessions {
		if sess == nil || sess.ID == "" {
			continue
		}
		m.sessions[sess.ID] = &entry{sess: sess.Clone()}
	}
}

// Get returns a snapshot of one session.
func (m *Manager) Get(id string) (*Session, error) {
	ent, err := m.entry(id)
	if err != nil {
		return nil, err
	}
	ent.mu.RLock()
	defer ent.mu.RUnlock()
	return ent.sess.Clone(), nil
}

// List returns snapshots of active sessions, optionally filtered by state.
func (m *Manager) List(states ...State) []*Session {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, ent := range m.sessions {
		entries = append(entries, ent)
	}
	m.mu.RUnlock()

	out := make([]*Session, 0, len(entries))
	for _, ent := range entries {
		ent.mu.RLock()
		sess := ent.sess
		if len(states) == 0 || containsState(states, sess.State) {
			out = append(out, sess.Clone())
		}
		ent.mu.RUnlock()
	}
	return out
}

// Stats returns active session counts per lifecycle state.
func (m *Manager) Stats() map[State]int {
	stats := make(map[State]int, len(allStates))
	for _, sess := range m.List() {
		stats[sess.State]++
	}
	return stats
}

// EditField applies an operator edit under the document's exclusive lock.
func (m *Manager) EditField(ctx context.Context, id string, kind fields.Kind, value string) (*Session, error) {
	return m.mutate(ctx, id, func(sess *Session) error {
		return sess.EditField(kind, value)
	})
}

// AcceptField applies an operator accept under the document's exclusive lock.
func (m *Manager) AcceptField(ctx context.Context, id string, kind fields.Kind) (*Session, error) {
	return m.mutate(ctx, id, func(sess *Session) error {
		return sess.AcceptField(kind)
	})
}

// RejectField applies an operator reject under the document's exclusive lock.
func (m *Manager) RejectField(ctx context.Context, id string, kind fields.Kind) (*Session, error) {
	return m.mutate(ctx, id, func(sess *Session) error {
		return sess.RejectField(kind)
	})
}

// RejectDocument terminally rejects a document and persists the outcome.
func (m *Manager) RejectDocument(ctx context.Context, id, reason string) (*Session, error) {
	ent, err := m.entry(id)
	if err != nil {
		return nil, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()

	if err := ent.sess.RejectDocument(reason); err != nil {
		return nil, err
	}
	snapshot := ent.sess.Clone()

	if err := m.persist(ctx, snapshot); err != nil {
		return snapshot, err
	}
	m.logger.InfoContext(ctx, "document rejected",
		logging.String("document_id", id),
		logging.String("reason", reason),
	)
	return snapshot, nil
}

// Verify reconciles a submission against the document under its exclusive
// lock. A verified outcome is durably stored before success is reported; a
// persistence failure after a successful reconcile surfaces as
// ErrPersistence so callers can distinguish "rejected" from "accepted but
// not yet saved".
func (m *Manager) Verify(ctx context.Context, id string, submission reconcile.Submission) (*Session, reconcile.Outcome, error) {
	ent, err := m.entry(id)
	if err != nil {
		return nil, reconcile.Outcome{}, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()

	outcome, err := ent.sess.Verify(submission, m.policy.Thresholds, m.policy.Required)
	if err != nil {
		return nil, reconcile.Outcome{}, err
	}
	snapshot := ent.sess.Clone()

	if snapshot.State.Terminal() {
		if err := m.persist(ctx, snapshot); err != nil {
			return snapshot, outcome, err
		}
	}

	m.logger.InfoContext(ctx, "submission reconciled",
		logging.String("document_id", id),
		logging.Bool("accepted", outcome.Accepted),
		logging.String("state", string(snapshot.State)),
	)
	return snapshot, outcome, nil
}

// Flush re-persists a terminal session after an earlier persistence failure.
func (m *Manager) Flush(ctx context.Context, id string) error {
	ent, err := m.entry(id)
	if err != nil {
		return err
	}

	ent.mu.RLock()
	snapshot := ent.sess.Clone()
	ent.mu.RUnlock()

	if !snapshot.State.Terminal() {
		return fmt.Errorf("%w: document %s is %s, nothing to flush", ErrInvalidState, id, snapshot.State)
	}
	return m.persist(ctx, snapshot)
}

func (m *Manager) mutate(ctx context.Context, id string, apply func(*Session) error) (*Session, error) {
	ent, err := m.entry(id)
	if err != nil {
		return nil, err
	}

	ent.mu.Lock()
	defer ent.mu.Unlock()

	if err := apply(ent.sess); err != nil {
		return nil, err
	}
	return ent.sess.Clone(), nil
}

func (m *Manager) entry(id string) (*entry, error) {
	m.mu.RLock()
	ent, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ent, nil
}

func (m *Manager) persist(ctx context.Context, snapshot *Session) error {
	if m.persister == nil {
		return nil
	}
	if err := m.persister.SaveSession(ctx, snapshot); err != nil {
		m.logger.ErrorContext(ctx, "failed to persist terminal session",
			logging.String("document_id", snapshot.ID),
			logging.String("state", string(snapshot.State)),
			logging.Error(err),
		)
		return fmt.Errorf("%w: document %s: %v", ErrPersistence, snapshot.ID, err)
	}
	return nil
}

func containsState(states []State, state State) bool {
	for _, s := range states {
		if s == state {
			return true
		}
	}
	return false
}
