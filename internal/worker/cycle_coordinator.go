package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/beccaroth/muse/internal/cycle"
	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/store"
	"github.com/beccaroth/muse/internal/types"
)

// CycleStore defines the operations required for cycle sweeping.
// Implemented by SQLiteStore.
type CycleStore interface {
	GetActiveCycle(ctx context.Context) (*types.TwelveWeekCycle, error)
	UpdateCycle(ctx context.Context, id string, patch types.CyclePatch) (*types.TwelveWeekCycle, error)
}

// CycleInvalidator drops cached cycle listings after a sweep mutates one.
// Implemented by cache.Listings.
type CycleInvalidator interface {
	InvalidateCycles()
}

// CycleCoordinator deactivates the active cycle once its buffer week has
// fully elapsed, so a stale cycle never lingers as "active" on the dashboard.
type CycleCoordinator struct {
	store       CycleStore
	invalidator CycleInvalidator
	interval    time.Duration
}

// NewCycleCoordinator creates a coordinator sweeping at the given interval.
func NewCycleCoordinator(s CycleStore, inv CycleInvalidator, interval time.Duration) *CycleCoordinator {
	return &CycleCoordinator{
		store:       s,
		invalidator: inv,
		interval:    interval,
	}
}

// Run starts the sweep loop. It blocks until ctx is cancelled.
//
// The first sweep happens immediately on start: a server that was down while
// a cycle's buffer week elapsed should correct the stale flag right away
// rather than waiting out a full interval.
func (c *CycleCoordinator) Run(ctx context.Context) {
	slog.Info("cycle coordinator started",
		"component", "worker",
		"worker", "cycle-coordinator",
		"interval", c.interval.String(),
	)

	c.sweep(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cycle coordinator stopped",
				"component", "worker",
				"worker", "cycle-coordinator",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep deactivates the active cycle if today is past its buffer week.
func (c *CycleCoordinator) sweep(ctx context.Context) {
	active, err := c.store.GetActiveCycle(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNoActiveCycle) {
			return
		}
		if ctx.Err() != nil {
			return // Graceful shutdown
		}
		slog.Error("failed to fetch active cycle",
			"component", "worker",
			"worker", "cycle-coordinator",
			"error", err,
		)
		return
	}

	today := dates.Today()
	if cycle.Contains(today, *active) || today.Before(active.StartDate) {
		return
	}

	inactive := false
	if _, err := c.store.UpdateCycle(ctx, active.ID, types.CyclePatch{IsActive: &inactive}); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("failed to deactivate expired cycle",
			"component", "worker",
			"worker", "cycle-coordinator",
			"cycle_id", active.ID,
			"error", err,
		)
		return
	}

	c.invalidator.InvalidateCycles()

	slog.Info("expired cycle deactivated",
		"component", "worker",
		"worker", "cycle-coordinator",
		"cycle_id", active.ID,
		"end_date", active.EndDate.String(),
	)
}
