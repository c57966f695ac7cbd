package undo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/beccaroth/muse/internal/types"
)

// fakeClock schedules timers that only fire when Advance is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward and fires due timers synchronously.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

// mockBackend records every call and can be made to fail.
type mockBackend struct {
	mu              sync.Mutex
	deletedProjects []string
	deletedTasks    []string
	deletedSeeds    []string
	insertedNew     []types.NewProject
	insertErr       error
	deleteErr       error
}

func (b *mockBackend) DeleteProject(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deletedProjects = append(b.deletedProjects, id)
	return nil
}

func (b *mockBackend) DeleteTask(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deletedTasks = append(b.deletedTasks, id)
	return nil
}

func (b *mockBackend) DeleteSeed(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.deletedSeeds = append(b.deletedSeeds, id)
	return nil
}

func (b *mockBackend) InsertProject(ctx context.Context, np types.NewProject) (*types.Project, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.insertErr != nil {
		return nil, b.insertErr
	}
	b.insertedNew = append(b.insertedNew, np)
	return &types.Project{ID: "real-id", Name: np.Name}, nil
}

func (b *mockBackend) calls() (projects, tasks, seeds, inserts int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.deletedProjects), len(b.deletedTasks), len(b.deletedSeeds), len(b.insertedNew)
}

// recordingNotifier captures notifications in order.
type recordingNotifier struct {
	mu    sync.Mutex
	items []Notification
}

func (n *recordingNotifier) Notify(msg Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, msg)
}

func (n *recordingNotifier) last() Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return Notification{}
	}
	return n.items[len(n.items)-1]
}

// recordingInvalidator counts invalidations per kind.
type recordingInvalidator struct {
	mu    sync.Mutex
	kinds []Kind
}

func (i *recordingInvalidator) Invalidate(kind Kind) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.kinds = append(i.kinds, kind)
}

func newTestManager(t *testing.T, backend *mockBackend) (*Manager, *fakeClock, *recordingNotifier, *recordingInvalidator) {
	t.Helper()
	clock := newFakeClock()
	notifier := &recordingNotifier{}
	invalidator := &recordingInvalidator{}
	m := NewManager(backend,
		WithClock(clock),
		WithNotifier(notifier),
		WithInvalidator(invalidator),
	)
	return m, clock, notifier, invalidator
}

func testProject(id, name string) types.Project {
	return types.Project{ID: id, Name: name, Status: types.StatusInProgress}
}

func TestDeleteCommitsAfterGraceWindow(t *testing.T) {
	backend := &mockBackend{}
	m, clock, _, _ := newTestManager(t, backend)

	token := m.DeleteProject(testProject("p1", "Garden"))
	if token == "" {
		t.Fatal("expected a token")
	}

	// Before the window elapses nothing has reached the backend.
	if p, _, _, _ := backend.calls(); p != 0 {
		t.Fatalf("backend called %d times before grace window", p)
	}

	clock.Advance(DefaultGraceWindow)

	if p, _, _, _ := backend.calls(); p != 1 {
		t.Fatalf("backend delete calls = %d, want 1", p)
	}
	if m.PendingCount() != 0 {
		t.Errorf("pending count = %d after commit", m.PendingCount())
	}
}

func TestUndoCancelsBackendCall(t *testing.T) {
	backend := &mockBackend{}
	m, clock, notifier, _ := newTestManager(t, backend)

	token := m.DeleteProject(testProject("p1", "Garden"))
	if err := m.Undo(token); err != nil {
		t.Fatalf("Undo: %v", err)
	}

	// Even well past the window, the cancelled mutation never executes.
	clock.Advance(time.Minute)

	if p, tk, s, i := backend.calls(); p+tk+s+i != 0 {
		t.Fatalf("backend touched after undo: %d %d %d %d", p, tk, s, i)
	}
	if got := notifier.last().Message; got != `"Garden" restored` {
		t.Errorf("last notification = %q", got)
	}
}

func TestUndoAfterCommitReturnsUnknownToken(t *testing.T) {
	backend := &mockBackend{}
	m, clock, _, _ := newTestManager(t, backend)

	token := m.DeleteProject(testProject("p1", "Garden"))
	clock.Advance(DefaultGraceWindow)

	if err := m.Undo(token); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Undo after commit = %v, want ErrUnknownToken", err)
	}
}

func TestUndoUnknownToken(t *testing.T) {
	m, _, _, _ := newTestManager(t, &mockBackend{})
	if err := m.Undo("nope"); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("Undo = %v, want ErrUnknownToken", err)
	}
}

func TestRapidDeleteUndoDelete(t *testing.T) {
	// Delete, undo, delete again, let the second commit: exactly one
	// backend call total.
	backend := &mockBackend{}
	m, clock, _, _ := newTestManager(t, backend)

	p := testProject("p1", "Garden")
	token1 := m.DeleteProject(p)
	if err := m.Undo(token1); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	token2 := m.DeleteProject(p)
	if token2 == token1 {
		t.Error("second delete reused the first token")
	}

	clock.Advance(DefaultGraceWindow)

	if got, _, _, _ := backend.calls(); got != 1 {
		t.Errorf("backend delete calls = %d, want 1", got)
	}
}

func TestRedeleteSupersedesPendingTransaction(t *testing.T) {
	// A second delete for the same entity while the first is pending
	// replaces it; the first token dies and only one commit happens.
	backend := &mockBackend{}
	m, clock, _, _ := newTestManager(t, backend)

	p := testProject("p1", "Garden")
	token1 := m.DeleteProject(p)
	token2 := m.DeleteProject(p)

	if err := m.Undo(token1); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("superseded token Undo = %v, want ErrUnknownToken", err)
	}

	clock.Advance(DefaultGraceWindow)

	if got, _, _, _ := backend.calls(); got != 1 {
		t.Errorf("backend delete calls = %d, want 1", got)
	}
	if err := m.Undo(token2); !errors.Is(err, ErrUnknownToken) {
		t.Errorf("committed token Undo = %v, want ErrUnknownToken", err)
	}
}

func TestPromoteSeedDefaults(t *testing.T) {
	backend := &mockBackend{}
	m, clock, _, _ := newTestManager(t, backend)

	seed := types.Seed{
		ID:          "s1",
		Title:       "Learn woodworking",
		Icon:        "🪚",
		Description: "Start with a bookshelf",
		Type:        "Hobby",
	}
	project, token := m.PromoteSeed(seed)

	if project.Name != seed.Title {
		t.Errorf("optimistic name = %q", project.Name)
	}
	if project.Status != types.StatusNotStarted {
		t.Errorf("optimistic status = %q", project.Status)
	}
	if project.Priority != types.PrioritySomeday {
		t.Errorf("optimistic priority = %q", project.Priority)
	}
	if project.Progress != 0 {
		t.Errorf("optimistic progress = %d", project.Progress)
	}
	if len(project.Types) != 1 || project.Types[0] != "Hobby" {
		t.Errorf("optimistic types = %v", project.Types)
	}
	if project.ID == "" || token == "" {
		t.Error("expected placeholder ID and token")
	}

	clock.Advance(DefaultGraceWindow)

	_, _, seeds, inserts := backend.calls()
	if inserts != 1 {
		t.Fatalf("insert calls = %d, want 1", inserts)
	}
	if seeds != 1 {
		t.Fatalf("seed delete calls = %d, want 1", seeds)
	}
	got := backend.insertedNew[0]
	if got.Name != "Learn woodworking" || got.Status != types.StatusNotStarted {
		t.Errorf("inserted project = %+v", got)
	}
}

func TestPromoteSeedWithoutType(t *testing.T) {
	backend := &mockBackend{}
	m, _, _, _ := newTestManager(t, backend)

	project, _ := m.PromoteSeed(types.Seed{ID: "s1", Title: "Idea"})
	if len(project.Types) != 0 {
		t.Errorf("types = %v, want empty", project.Types)
	}
}

func TestUndoPromoteRestoresSeed(t *testing.T) {
	backend := &mockBackend{}
	m, clock, _, _ := newTestManager(t, backend)

	seed := types.Seed{ID: "s1", Title: "Idea"}
	_, token := m.PromoteSeed(seed)

	if got := m.OverlaySeeds([]types.Seed{seed}); len(got) != 0 {
		t.Errorf("pending promote still visible in seeds: %v", got)
	}

	if err := m.Undo(token); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	clock.Advance(DefaultGraceWindow)

	if _, _, seeds, inserts := backend.calls(); seeds+inserts != 0 {
		t.Error("backend touched after undone promote")
	}
	if got := m.OverlaySeeds([]types.Seed{seed}); len(got) != 1 {
		t.Errorf("seed not visible after undo: %v", got)
	}
}

func TestFailedCommitNotifiesAndInvalidates(t *testing.T) {
	backend := &mockBackend{deleteErr: errors.New("disk full")}
	m, clock, notifier, invalidator := newTestManager(t, backend)

	m.DeleteProject(testProject("p1", "Garden"))
	clock.Advance(DefaultGraceWindow)

	last := notifier.last()
	if last.Level != LevelError {
		t.Errorf("notification level = %v, want error", last.Level)
	}

	invalidator.mu.Lock()
	defer invalidator.mu.Unlock()
	if len(invalidator.kinds) == 0 || invalidator.kinds[len(invalidator.kinds)-1] != KindProject {
		t.Errorf("invalidations = %v, want trailing project invalidation", invalidator.kinds)
	}
}

func TestPromoteInsertFailureLeavesSeedIntact(t *testing.T) {
	backend := &mockBackend{insertErr: errors.New("constraint violation")}
	m, clock, notifier, _ := newTestManager(t, backend)

	m.PromoteSeed(types.Seed{ID: "s1", Title: "Idea"})
	clock.Advance(DefaultGraceWindow)

	if _, _, seeds, _ := backend.calls(); seeds != 0 {
		t.Error("seed deleted despite insert failure")
	}
	if notifier.last().Level != LevelError {
		t.Error("expected error notification")
	}
}

func TestFlushCommitsPending(t *testing.T) {
	backend := &mockBackend{}
	m, _, _, _ := newTestManager(t, backend)

	m.DeleteProject(testProject("p1", "Garden"))
	m.DeleteTask(types.Task{ID: "t1", Title: "Sand shelves"})

	m.Flush(context.Background())

	p, tk, _, _ := backend.calls()
	if p != 1 || tk != 1 {
		t.Errorf("after flush: project deletes = %d, task deletes = %d", p, tk)
	}
	if m.PendingCount() != 0 {
		t.Errorf("pending count = %d after flush", m.PendingCount())
	}
}

func TestOverlayProjects(t *testing.T) {
	backend := &mockBackend{}
	m, _, _, _ := newTestManager(t, backend)

	existing := []types.Project{testProject("p1", "Garden"), testProject("p2", "Kitchen")}
	m.DeleteProject(existing[0])
	optimistic, _ := m.PromoteSeed(types.Seed{ID: "s1", Title: "Idea"})

	got := m.OverlayProjects(existing)
	if len(got) != 2 {
		t.Fatalf("overlay length = %d, want 2", len(got))
	}
	if got[0].ID != optimistic.ID {
		t.Errorf("optimistic promotion not first: %v", got[0].ID)
	}
	if got[1].ID != "p2" {
		t.Errorf("surviving project = %v, want p2", got[1].ID)
	}
}

func TestIsPendingDelete(t *testing.T) {
	backend := &mockBackend{}
	m, clock, _, _ := newTestManager(t, backend)

	m.DeleteProject(testProject("p1", "Garden"))
	if !m.IsPendingDelete(KindProject, "p1") {
		t.Error("expected pending delete for p1")
	}
	if m.IsPendingDelete(KindProject, "p2") {
		t.Error("unexpected pending delete for p2")
	}

	clock.Advance(DefaultGraceWindow)
	if m.IsPendingDelete(KindProject, "p1") {
		t.Error("pending delete should clear after commit")
	}
}

func TestGraceWindowOption(t *testing.T) {
	backend := &mockBackend{}
	clock := newFakeClock()
	m := NewManager(backend, WithClock(clock), WithGraceWindow(time.Second))

	m.DeleteProject(testProject("p1", "Garden"))
	clock.Advance(time.Second)

	if p, _, _, _ := backend.calls(); p != 1 {
		t.Errorf("backend delete calls = %d, want 1 after shortened window", p)
	}
}
