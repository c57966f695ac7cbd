// Package undo implements reversible delete and promote mutations.
//
// A mutation is applied optimistically: the entity disappears from (or, for
// promote, appears in) the local view immediately, while the backend write is
// deferred for a grace window. Within the window the user can undo, which
// cancels the deferred write entirely; once the window elapses the write is
// committed. Timer expiry and undo race against a single mutex and a per-
// transaction state check, so exactly one of them wins.
package undo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/beccaroth/muse/internal/types"
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// DefaultGraceWindow is how long a pending mutation stays undoable.
const DefaultGraceWindow = 5 * time.Second

// ErrUnknownToken is returned by Undo for tokens that are not pending:
// never issued, already committed, or already rolled back.
var ErrUnknownToken = errors.New("no pending transaction for token")

// State is a transaction's position in its lifecycle.
type State int

const (
	StatePending State = iota
	StateCommitting
	StateCommitted
	StateRolledBack
	StateFailed
)

// Op is the kind of mutation a transaction performs.
type Op int

const (
	OpDelete Op = iota
	OpPromote
)

// Kind identifies the entity type a transaction targets.
type Kind string

const (
	KindProject Kind = "project"
	KindTask    Kind = "task"
	KindSeed    Kind = "seed"
)

// Backend is the narrow store subset the manager commits against.
type Backend interface {
	DeleteProject(ctx context.Context, id string) error
	DeleteTask(ctx context.Context, id string) error
	DeleteSeed(ctx context.Context, id string) error
	InsertProject(ctx context.Context, p types.NewProject) (*types.Project, error)
}

// Invalidator discards cached listings so a failed commit reconciles against
// the backend's ground truth on the next read.
type Invalidator interface {
	Invalidate(kind Kind)
}

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(Kind) {}

type transaction struct {
	token    string
	op       Op
	kind     Kind
	entityID string
	state    State
	timer    Timer

	// Snapshots for the optimistic view and potential restore.
	project    *types.Project
	task       *types.Task
	seed       *types.Seed
	optimistic *types.Project // promote placeholder with a temporary ID
}

func (t *transaction) entityKey() string {
	return string(t.kind) + ":" + t.entityID
}

// Manager owns all in-flight grace-window transactions.
type Manager struct {
	backend     Backend
	clock       Clock
	grace       time.Duration
	notifier    Notifier
	invalidator Invalidator

	mu       sync.Mutex
	byToken  map[string]*transaction
	byEntity map[string]*transaction
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock substitutes the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithGraceWindow overrides the undo grace window.
func WithGraceWindow(d time.Duration) Option {
	return func(m *Manager) { m.grace = d }
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithInvalidator sets the cache invalidation hook used on failed commits.
func WithInvalidator(i Invalidator) Option {
	return func(m *Manager) { m.invalidator = i }
}

// NewManager creates a Manager committing against the given backend.
func NewManager(backend Backend, opts ...Option) *Manager {
	m := &Manager{
		backend:     backend,
		clock:       RealClock(),
		grace:       DefaultGraceWindow,
		notifier:    NopNotifier{},
		invalidator: nopInvalidator{},
		byToken:     make(map[string]*transaction),
		byEntity:    make(map[string]*transaction),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DeleteProject starts an undoable delete for the project and returns the
// undo token. The project disappears from overlaid listings immediately; the
// backend delete is issued only after the grace window elapses without undo.
func (m *Manager) DeleteProject(p types.Project) string {
	tx := &transaction{
		op:       OpDelete,
		kind:     KindProject,
		entityID: p.ID,
		project:  &p,
	}
	m.begin(tx)
	m.notifier.Notify(Notification{
		Level:     LevelInfo,
		Message:   fmt.Sprintf("%q deleted", p.Name),
		UndoToken: tx.token,
		CreatedAt: m.clock.Now(),
	})
	return tx.token
}

// DeleteTask starts an undoable delete for the task and returns the undo token.
func (m *Manager) DeleteTask(t types.Task) string {
	tx := &transaction{
		op:       OpDelete,
		kind:     KindTask,
		entityID: t.ID,
		task:     &t,
	}
	m.begin(tx)
	m.notifier.Notify(Notification{
		Level:     LevelInfo,
		Message:   fmt.Sprintf("%q deleted", t.Title),
		UndoToken: tx.token,
		CreatedAt: m.clock.Now(),
	})
	return tx.token
}

// DeleteSeed starts an undoable delete for the seed and returns the undo token.
func (m *Manager) DeleteSeed(s types.Seed) string {
	tx := &transaction{
		op:       OpDelete,
		kind:     KindSeed,
		entityID: s.ID,
		seed:     &s,
	}
	m.begin(tx)
	m.notifier.Notify(Notification{
		Level:     LevelInfo,
		Message:   fmt.Sprintf("%q deleted", s.Title),
		UndoToken: tx.token,
		CreatedAt: m.clock.Now(),
	})
	return tx.token
}

// PromoteSeed starts an undoable promotion of the seed into a project. The
// returned project is an optimistic placeholder with a temporary ID; the real
// backend-assigned project replaces it once the transaction commits. Field
// defaults follow promotion semantics: status "Not started", priority
// "Someday", progress 0, the seed's single type as the type list.
func (m *Manager) PromoteSeed(s types.Seed) (types.Project, string) {
	now := m.clock.Now().UTC()
	var projectTypes []string
	if s.Type != "" {
		projectTypes = []string{s.Type}
	}
	optimistic := types.Project{
		ID:          ulid.Make().String(),
		Name:        s.Title,
		Icon:        s.Icon,
		Description: s.Description,
		Types:       projectTypes,
		Status:      types.StatusNotStarted,
		Priority:    types.PrioritySomeday,
		Progress:    0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	tx := &transaction{
		op:         OpPromote,
		kind:       KindSeed,
		entityID:   s.ID,
		seed:       &s,
		optimistic: &optimistic,
	}
	m.begin(tx)
	m.notifier.Notify(Notification{
		Level:     LevelInfo,
		Message:   fmt.Sprintf("%q promoted to project", s.Title),
		UndoToken: tx.token,
		CreatedAt: m.clock.Now(),
	})
	return optimistic, tx.token
}

// begin registers the transaction and schedules its commit. A prior pending
// transaction for the same entity is cancelled first: its timer is stopped
// and its state discarded without any backend call.
func (m *Manager) begin(tx *transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prior, ok := m.byEntity[tx.entityKey()]; ok {
		prior.timer.Stop()
		prior.state = StateRolledBack
		delete(m.byToken, prior.token)
		delete(m.byEntity, prior.entityKey())
	}

	tx.token = uuid.NewString()
	tx.state = StatePending
	m.byToken[tx.token] = tx
	m.byEntity[tx.entityKey()] = tx

	tx.timer = m.clock.AfterFunc(m.grace, func() {
		m.commit(tx)
	})
}

// Undo rolls back a pending transaction before its grace window elapses.
// The deferred backend write never happens. Returns ErrUnknownToken if the
// token is not pending.
func (m *Manager) Undo(token string) error {
	m.mu.Lock()
	tx, ok := m.byToken[token]
	if !ok || tx.state != StatePending {
		m.mu.Unlock()
		return ErrUnknownToken
	}

	// Stopping the timer under the lock makes rollback and expiry mutually
	// exclusive: if the timer already fired, commit() is waiting on the lock
	// and will see the terminal state.
	tx.timer.Stop()
	tx.state = StateRolledBack
	delete(m.byToken, tx.token)
	delete(m.byEntity, tx.entityKey())
	m.mu.Unlock()

	m.notifier.Notify(Notification{
		Level:     LevelInfo,
		Message:   fmt.Sprintf("%q restored", tx.entityName()),
		CreatedAt: m.clock.Now(),
	})
	return nil
}

func (t *transaction) entityName() string {
	switch {
	case t.project != nil:
		return t.project.Name
	case t.task != nil:
		return t.task.Title
	case t.seed != nil:
		return t.seed.Title
	}
	return t.entityID
}

// commit transitions a pending transaction to Committing and issues the real
// backend mutations. Invoked by timer expiry, or by Flush during shutdown.
func (m *Manager) commit(tx *transaction) {
	m.mu.Lock()
	if tx.state != StatePending {
		// Undo won the race; nothing to do.
		m.mu.Unlock()
		return
	}
	tx.state = StateCommitting
	m.mu.Unlock()

	err := m.execute(context.Background(), tx)

	m.mu.Lock()
	if err != nil {
		tx.state = StateFailed
	} else {
		tx.state = StateCommitted
	}
	delete(m.byToken, tx.token)
	delete(m.byEntity, tx.entityKey())
	m.mu.Unlock()

	if err != nil {
		m.fail(tx, err)
		return
	}

	// The overlay for this transaction is gone; cached listings must be
	// refetched so the committed mutation shows up in them.
	m.invalidator.Invalidate(tx.kind)
	if tx.op == OpPromote {
		m.invalidator.Invalidate(KindProject)
	}
}

// execute issues the backend calls for the transaction.
func (m *Manager) execute(ctx context.Context, tx *transaction) error {
	switch tx.op {
	case OpDelete:
		switch tx.kind {
		case KindProject:
			return m.backend.DeleteProject(ctx, tx.entityID)
		case KindTask:
			return m.backend.DeleteTask(ctx, tx.entityID)
		case KindSeed:
			return m.backend.DeleteSeed(ctx, tx.entityID)
		}
		return fmt.Errorf("unknown entity kind %q", tx.kind)
	case OpPromote:
		// Insert the project first, then delete the seed. The two calls are
		// not atomic: a failure in between leaves both the new project and
		// the seed present until the next refetch reconciles.
		np := types.NewProject{
			Name:        tx.optimistic.Name,
			Icon:        tx.optimistic.Icon,
			Description: tx.optimistic.Description,
			Types:       tx.optimistic.Types,
			Status:      tx.optimistic.Status,
			Priority:    tx.optimistic.Priority,
			Progress:    tx.optimistic.Progress,
		}
		if _, err := m.backend.InsertProject(ctx, np); err != nil {
			return fmt.Errorf("insert promoted project: %w", err)
		}
		if err := m.backend.DeleteSeed(ctx, tx.entityID); err != nil {
			return fmt.Errorf("delete promoted seed: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown op %d", tx.op)
}

// fail surfaces a failed commit: cached listings are invalidated so the next
// read refetches ground truth, and an error notification fires. No retry.
func (m *Manager) fail(tx *transaction, err error) {
	m.invalidator.Invalidate(tx.kind)
	if tx.op == OpPromote {
		// A promote touches both seed and project listings.
		m.invalidator.Invalidate(KindProject)
	}
	var verb string
	if tx.op == OpPromote {
		verb = "promote"
	} else {
		verb = "delete"
	}
	m.notifier.Notify(Notification{
		Level:     LevelError,
		Message:   fmt.Sprintf("failed to %s %q: %v", verb, tx.entityName(), err),
		CreatedAt: m.clock.Now(),
	})
}

// Flush commits every still-pending transaction immediately. Called on
// shutdown so optimistic mutations are never silently dropped.
func (m *Manager) Flush(ctx context.Context) {
	m.mu.Lock()
	var pending []*transaction
	for _, tx := range m.byToken {
		if tx.state == StatePending {
			tx.timer.Stop()
			pending = append(pending, tx)
		}
	}
	m.mu.Unlock()

	for _, tx := range pending {
		m.commit(tx)
	}
}

// PendingCount returns the number of in-flight pending transactions.
func (m *Manager) PendingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byToken)
}
