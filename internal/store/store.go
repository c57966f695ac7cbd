package store

import (
	"context"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
)

// Store defines the interface contract for all persistence operations.
// List orderings are fixed: projects by creation time descending, tasks by
// sort order ascending, seeds by date added descending, cycles by start date
// descending.
type Store interface {
	ListProjects(ctx context.Context) ([]types.Project, error)
	GetProject(ctx context.Context, id string) (*types.Project, error)
	InsertProject(ctx context.Context, p types.NewProject) (*types.Project, error)
	UpdateProject(ctx context.Context, id string, patch types.ProjectPatch) (*types.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ListProjectsOverlapping(ctx context.Context, r dates.Range) ([]types.Project, error)

	ListSeeds(ctx context.Context) ([]types.Seed, error)
	GetSeed(ctx context.Context, id string) (*types.Seed, error)
	InsertSeed(ctx context.Context, s types.NewSeed) (*types.Seed, error)
	UpdateSeed(ctx context.Context, id string, patch types.SeedPatch) (*types.Seed, error)
	DeleteSeed(ctx context.Context, id string) error

	ListTasks(ctx context.Context, projectID string) ([]types.Task, error)
	GetTask(ctx context.Context, id string) (*types.Task, error)
	InsertTask(ctx context.Context, t types.NewTask) (*types.Task, error)
	UpdateTask(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error)
	DeleteTask(ctx context.Context, id string) error
	ListTasksDueBetween(ctx context.Context, r dates.Range) ([]types.CalendarTask, error)

	ListCycles(ctx context.Context) ([]types.TwelveWeekCycle, error)
	GetCycle(ctx context.Context, id string) (*types.TwelveWeekCycle, error)
	GetActiveCycle(ctx context.Context) (*types.TwelveWeekCycle, error)
	InsertCycle(ctx context.Context, c types.NewCycle) (*types.TwelveWeekCycle, error)
	UpdateCycle(ctx context.Context, id string, patch types.CyclePatch) (*types.TwelveWeekCycle, error)
	DeleteCycle(ctx context.Context, id string) error

	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
