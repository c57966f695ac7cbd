// Package cache holds listing results between mutations.
//
// The original client kept query results in module-level state; here the
// cache is an explicit object with a defined lifecycle: each listing is
// populated on first access and discarded when a relevant mutation occurs
// or a commit fails and ground truth must be refetched.
package cache

import (
	"context"
	"sync"

	"github.com/beccaroth/muse/internal/store"
	"github.com/beccaroth/muse/internal/types"
	"github.com/beccaroth/muse/internal/undo"
)

// Listings caches per-entity list results over a Store.
type Listings struct {
	store store.Store

	mu       sync.Mutex
	projects []types.Project
	seeds    []types.Seed
	cycles   []types.TwelveWeekCycle
	tasks    map[string][]types.Task

	projectsOK bool
	seedsOK    bool
	cyclesOK   bool
}

// New creates an empty Listings cache over the given store.
func New(s store.Store) *Listings {
	return &Listings{
		store: s,
		tasks: make(map[string][]types.Task),
	}
}

// Projects returns the cached project listing, fetching it on first access.
func (c *Listings) Projects(ctx context.Context) ([]types.Project, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.projectsOK {
		projects, err := c.store.ListProjects(ctx)
		if err != nil {
			return nil, err
		}
		c.projects = projects
		c.projectsOK = true
	}
	return c.projects, nil
}

// Seeds returns the cached seed listing, fetching it on first access.
func (c *Listings) Seeds(ctx context.Context) ([]types.Seed, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.seedsOK {
		seeds, err := c.store.ListSeeds(ctx)
		if err != nil {
			return nil, err
		}
		c.seeds = seeds
		c.seedsOK = true
	}
	return c.seeds, nil
}

// Cycles returns the cached cycle listing, fetching it on first access.
func (c *Listings) Cycles(ctx context.Context) ([]types.TwelveWeekCycle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.cyclesOK {
		cycles, err := c.store.ListCycles(ctx)
		if err != nil {
			return nil, err
		}
		c.cycles = cycles
		c.cyclesOK = true
	}
	return c.cycles, nil
}

// Tasks returns the cached task listing for a project, fetching it on first
// access.
func (c *Listings) Tasks(ctx context.Context, projectID string) ([]types.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if tasks, ok := c.tasks[projectID]; ok {
		return tasks, nil
	}
	tasks, err := c.store.ListTasks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	c.tasks[projectID] = tasks
	return tasks, nil
}

// Invalidate discards the cached listing for an entity kind. Implements
// undo.Invalidator so failed commits force a refetch. Task listings are
// dropped wholesale; per-project granularity is not worth tracking at
// personal scale.
func (c *Listings) Invalidate(kind undo.Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case undo.KindProject:
		c.projectsOK = false
		c.projects = nil
		// Deleting a project cascades its tasks.
		c.tasks = make(map[string][]types.Task)
	case undo.KindSeed:
		c.seedsOK = false
		c.seeds = nil
	case undo.KindTask:
		c.tasks = make(map[string][]types.Task)
	}
}

// InvalidateCycles discards the cached cycle listing.
func (c *Listings) InvalidateCycles() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cyclesOK = false
	c.cycles = nil
}

// InvalidateAll discards every cached listing.
func (c *Listings) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.projectsOK = false
	c.seedsOK = false
	c.cyclesOK = false
	c.projects = nil
	c.seeds = nil
	c.cycles = nil
	c.tasks = make(map[string][]types.Task)
}
