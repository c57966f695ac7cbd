// Package calendar aggregates projects and due tasks for a date range.
package calendar

import (
	"context"
	"fmt"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
)

// Fetcher is the data-access surface the aggregator needs.
type Fetcher interface {
	ListProjectsOverlapping(ctx context.Context, r dates.Range) ([]types.Project, error)
	ListTasksDueBetween(ctx context.Context, r dates.Range) ([]types.CalendarTask, error)
}

// Aggregator shapes calendar-ready data for rendering. Results are flat
// lists; grouping by day or week is the presentation layer's job, using the
// dates and cycle packages.
type Aggregator struct {
	fetcher Fetcher
}

// NewAggregator creates an Aggregator over the given fetcher.
func NewAggregator(f Fetcher) *Aggregator {
	return &Aggregator{fetcher: f}
}

// Range returns all projects whose effective span overlaps [start, end] and
// all tasks due inside it, with each task carrying its parent project's name
// and icon. No pagination; personal-scale data is assumed small.
func (a *Aggregator) Range(ctx context.Context, r dates.Range) (*types.CalendarData, error) {
	if r.End.Before(r.Start) {
		return nil, fmt.Errorf("invalid range: end %s before start %s", r.End, r.Start)
	}

	projects, err := a.fetcher.ListProjectsOverlapping(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("fetch overlapping projects: %w", err)
	}

	tasks, err := a.fetcher.ListTasksDueBetween(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("fetch due tasks: %w", err)
	}

	return &types.CalendarData{Projects: projects, Tasks: tasks}, nil
}

// Month returns calendar data for the full month grid containing d,
// padded to complete weeks at both ends.
func (a *Aggregator) Month(ctx context.Context, d dates.Date) (*types.CalendarData, error) {
	return a.Range(ctx, dates.MonthGridRange(d))
}

// Week returns calendar data for the Sunday–Saturday week containing d.
func (a *Aggregator) Week(ctx context.Context, d dates.Date) (*types.CalendarData, error) {
	return a.Range(ctx, dates.WeekRange(d))
}
