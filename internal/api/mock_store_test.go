package api

import (
	"context"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/store"
	"github.com/beccaroth/muse/internal/types"
)

// mockStore implements store.Store with overridable function fields.
// Unset getters report not-found; unset listers return empty results.
type mockStore struct {
	listProjectsFunc  func(ctx context.Context) ([]types.Project, error)
	getProjectFunc    func(ctx context.Context, id string) (*types.Project, error)
	insertProjectFunc func(ctx context.Context, p types.NewProject) (*types.Project, error)
	updateProjectFunc func(ctx context.Context, id string, patch types.ProjectPatch) (*types.Project, error)
	deleteProjectFunc func(ctx context.Context, id string) error
	overlappingFunc   func(ctx context.Context, r dates.Range) ([]types.Project, error)

	listSeedsFunc  func(ctx context.Context) ([]types.Seed, error)
	getSeedFunc    func(ctx context.Context, id string) (*types.Seed, error)
	insertSeedFunc func(ctx context.Context, s types.NewSeed) (*types.Seed, error)
	updateSeedFunc func(ctx context.Context, id string, patch types.SeedPatch) (*types.Seed, error)
	deleteSeedFunc func(ctx context.Context, id string) error

	listTasksFunc  func(ctx context.Context, projectID string) ([]types.Task, error)
	getTaskFunc    func(ctx context.Context, id string) (*types.Task, error)
	insertTaskFunc func(ctx context.Context, t types.NewTask) (*types.Task, error)
	updateTaskFunc func(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error)
	deleteTaskFunc func(ctx context.Context, id string) error
	dueBetweenFunc func(ctx context.Context, r dates.Range) ([]types.CalendarTask, error)

	listCyclesFunc     func(ctx context.Context) ([]types.TwelveWeekCycle, error)
	getCycleFunc       func(ctx context.Context, id string) (*types.TwelveWeekCycle, error)
	getActiveCycleFunc func(ctx context.Context) (*types.TwelveWeekCycle, error)
	insertCycleFunc    func(ctx context.Context, c types.NewCycle) (*types.TwelveWeekCycle, error)
	updateCycleFunc    func(ctx context.Context, id string, patch types.CyclePatch) (*types.TwelveWeekCycle, error)
	deleteCycleFunc    func(ctx context.Context, id string) error

	getStatsFunc func(ctx context.Context) (*types.StoreStats, error)
}

var _ store.Store = (*mockStore)(nil)

func (m *mockStore) ListProjects(ctx context.Context) ([]types.Project, error) {
	if m.listProjectsFunc != nil {
		return m.listProjectsFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	if m.getProjectFunc != nil {
		return m.getProjectFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) InsertProject(ctx context.Context, p types.NewProject) (*types.Project, error) {
	if m.insertProjectFunc != nil {
		return m.insertProjectFunc(ctx, p)
	}
	out := types.Project{ID: "new-project", Name: p.Name, Status: p.Status, Priority: p.Priority}
	return &out, nil
}

func (m *mockStore) UpdateProject(ctx context.Context, id string, patch types.ProjectPatch) (*types.Project, error) {
	if m.updateProjectFunc != nil {
		return m.updateProjectFunc(ctx, id, patch)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) DeleteProject(ctx context.Context, id string) error {
	if m.deleteProjectFunc != nil {
		return m.deleteProjectFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) ListProjectsOverlapping(ctx context.Context, r dates.Range) ([]types.Project, error) {
	if m.overlappingFunc != nil {
		return m.overlappingFunc(ctx, r)
	}
	return nil, nil
}

func (m *mockStore) ListSeeds(ctx context.Context) ([]types.Seed, error) {
	if m.listSeedsFunc != nil {
		return m.listSeedsFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) GetSeed(ctx context.Context, id string) (*types.Seed, error) {
	if m.getSeedFunc != nil {
		return m.getSeedFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) InsertSeed(ctx context.Context, s types.NewSeed) (*types.Seed, error) {
	if m.insertSeedFunc != nil {
		return m.insertSeedFunc(ctx, s)
	}
	out := types.Seed{ID: "new-seed", Title: s.Title, Type: s.Type}
	return &out, nil
}

func (m *mockStore) UpdateSeed(ctx context.Context, id string, patch types.SeedPatch) (*types.Seed, error) {
	if m.updateSeedFunc != nil {
		return m.updateSeedFunc(ctx, id, patch)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) DeleteSeed(ctx context.Context, id string) error {
	if m.deleteSeedFunc != nil {
		return m.deleteSeedFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) ListTasks(ctx context.Context, projectID string) ([]types.Task, error) {
	if m.listTasksFunc != nil {
		return m.listTasksFunc(ctx, projectID)
	}
	return nil, nil
}

func (m *mockStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	if m.getTaskFunc != nil {
		return m.getTaskFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) InsertTask(ctx context.Context, t types.NewTask) (*types.Task, error) {
	if m.insertTaskFunc != nil {
		return m.insertTaskFunc(ctx, t)
	}
	out := types.Task{ID: "new-task", ProjectID: t.ProjectID, Title: t.Title}
	return &out, nil
}

func (m *mockStore) UpdateTask(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error) {
	if m.updateTaskFunc != nil {
		return m.updateTaskFunc(ctx, id, patch)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) DeleteTask(ctx context.Context, id string) error {
	if m.deleteTaskFunc != nil {
		return m.deleteTaskFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) ListTasksDueBetween(ctx context.Context, r dates.Range) ([]types.CalendarTask, error) {
	if m.dueBetweenFunc != nil {
		return m.dueBetweenFunc(ctx, r)
	}
	return nil, nil
}

func (m *mockStore) ListCycles(ctx context.Context) ([]types.TwelveWeekCycle, error) {
	if m.listCyclesFunc != nil {
		return m.listCyclesFunc(ctx)
	}
	return nil, nil
}

func (m *mockStore) GetCycle(ctx context.Context, id string) (*types.TwelveWeekCycle, error) {
	if m.getCycleFunc != nil {
		return m.getCycleFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) GetActiveCycle(ctx context.Context) (*types.TwelveWeekCycle, error) {
	if m.getActiveCycleFunc != nil {
		return m.getActiveCycleFunc(ctx)
	}
	return nil, store.ErrNoActiveCycle
}

func (m *mockStore) InsertCycle(ctx context.Context, c types.NewCycle) (*types.TwelveWeekCycle, error) {
	if m.insertCycleFunc != nil {
		return m.insertCycleFunc(ctx, c)
	}
	out := types.TwelveWeekCycle{ID: "new-cycle", Name: c.Name, StartDate: c.StartDate}
	return &out, nil
}

func (m *mockStore) UpdateCycle(ctx context.Context, id string, patch types.CyclePatch) (*types.TwelveWeekCycle, error) {
	if m.updateCycleFunc != nil {
		return m.updateCycleFunc(ctx, id, patch)
	}
	return nil, store.ErrNotFound
}

func (m *mockStore) DeleteCycle(ctx context.Context, id string) error {
	if m.deleteCycleFunc != nil {
		return m.deleteCycleFunc(ctx, id)
	}
	return nil
}

func (m *mockStore) GetStats(ctx context.Context) (*types.StoreStats, error) {
	if m.getStatsFunc != nil {
		return m.getStatsFunc(ctx)
	}
	return &types.StoreStats{}, nil
}

func (m *mockStore) Close() error { return nil }
