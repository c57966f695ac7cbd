package types

import (
	"encoding/json"
	"time"

	"github.com/beccaroth/muse/internal/dates"
)

// ProjectStatus represents where a project sits in its lifecycle.
type ProjectStatus string

const (
	StatusNotStarted ProjectStatus = "Not started"
	StatusOnHold     ProjectStatus = "On hold"
	StatusInProgress ProjectStatus = "In progress"
	StatusDone       ProjectStatus = "Done"
)

// ProjectStatuses lists all valid statuses in kanban column order.
func ProjectStatuses() []ProjectStatus {
	return []ProjectStatus{StatusNotStarted, StatusOnHold, StatusInProgress, StatusDone}
}

// Valid reports whether s is a known status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusOnHold, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ColumnOrder returns the kanban column position for the status.
// Unknown statuses sort last.
func (s ProjectStatus) ColumnOrder() int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusOnHold:
		return 1
	case StatusInProgress:
		return 2
	case StatusDone:
		return 3
	}
	return 4
}

// ProjectPriority represents scheduling urgency.
type ProjectPriority string

const (
	PriorityNow     ProjectPriority = "Now"
	PriorityNext    ProjectPriority = "Next"
	PrioritySomeday ProjectPriority = "Someday"
)

// ProjectPriorities lists all valid priorities from most to least urgent.
func ProjectPriorities() []ProjectPriority {
	return []ProjectPriority{PriorityNow, PriorityNext, PrioritySomeday}
}

// Valid reports whether p is a known priority.
func (p ProjectPriority) Valid() bool {
	switch p {
	case PriorityNow, PriorityNext, PrioritySomeday:
		return true
	}
	return false
}

// Rank returns the sort position for the priority. Unknown priorities sort last.
func (p ProjectPriority) Rank() int {
	switch p {
	case PriorityNow:
		return 0
	case PriorityNext:
		return 1
	case PrioritySomeday:
		return 2
	}
	return 3
}

// Project is a tracked creative project.
type Project struct {
	ID          string          `json:"id"`
	Name        string          `json:"project_name"`
	Icon        string          `json:"icon,omitempty"`
	Status      ProjectStatus   `json:"status"`
	Priority    ProjectPriority `json:"priority"`
	Types       []string        `json:"project_types"`
	Description string          `json:"description,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	StartDate   *dates.Date     `json:"start_date"`
	EndDate     *dates.Date     `json:"end_date"`
	Progress    int             `json:"progress"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// MarshalJSON ensures a nil Types slice marshals as [] not null.
func (p Project) MarshalJSON() ([]byte, error) {
	if p.Types == nil {
		p.Types = []string{}
	}
	type Alias Project
	return json.Marshal(Alias(p))
}

// NewProject is the input type for creating projects (without generated fields).
type NewProject struct {
	Name        string          `json:"project_name"`
	Icon        string          `json:"icon,omitempty"`
	Status      ProjectStatus   `json:"status"`
	Priority    ProjectPriority `json:"priority"`
	Types       []string        `json:"project_types"`
	Description string          `json:"description,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	StartDate   *dates.Date     `json:"start_date"`
	EndDate     *dates.Date     `json:"end_date"`
	Progress    int             `json:"progress"`
}

// ProjectPatch is a partial update; nil fields are left unchanged.
type ProjectPatch struct {
	Name        *string          `json:"project_name"`
	Icon        *string          `json:"icon"`
	Status      *ProjectStatus   `json:"status"`
	Priority    *ProjectPriority `json:"priority"`
	Types       *[]string        `json:"project_types"`
	Description *string          `json:"description"`
	Notes       *string          `json:"notes"`
	StartDate   *dates.Date      `json:"start_date"`
	EndDate     *dates.Date      `json:"end_date"`
	Progress    *int             `json:"progress"`
}

// Seed is a pre-project idea. It ends its life either deleted or promoted
// into a Project.
type Seed struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Icon        string     `json:"icon,omitempty"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"project_type,omitempty"`
	DateAdded   dates.Date `json:"date_added"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewSeed is the input type for creating seeds.
type NewSeed struct {
	Title       string     `json:"title"`
	Icon        string     `json:"icon,omitempty"`
	Description string     `json:"description,omitempty"`
	Type        string     `json:"project_type,omitempty"`
	DateAdded   dates.Date `json:"date_added"`
}

// SeedPatch is a partial update; nil fields are left unchanged.
type SeedPatch struct {
	Title       *string `json:"title"`
	Icon        *string `json:"icon"`
	Description *string `json:"description"`
	Type        *string `json:"project_type"`
}

// Task is a sub-task belonging to exactly one project. SortOrder defines
// manual ordering within the project.
type Task struct {
	ID        string      `json:"id"`
	ProjectID string      `json:"project_id"`
	Title     string      `json:"title"`
	Completed bool        `json:"completed"`
	SortOrder int         `json:"sort_order"`
	DueDate   *dates.Date `json:"due_date"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewTask is the input type for creating tasks.
type NewTask struct {
	ProjectID string      `json:"project_id"`
	Title     string      `json:"title"`
	Completed bool        `json:"completed"`
	SortOrder int         `json:"sort_order"`
	DueDate   *dates.Date `json:"due_date"`
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title     *string     `json:"title"`
	Completed *bool       `json:"completed"`
	SortOrder *int        `json:"sort_order"`
	DueDate   *dates.Date `json:"due_date"`
}

// TwelveWeekCycle is a fixed 84-day planning period: 12 one-week segments
// plus a 13th buffer week past the end date.
type TwelveWeekCycle struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartDate dates.Date `json:"start_date"`
	EndDate   dates.Date `json:"end_date"`
	Goal      string     `json:"goal,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCycle is the input type for creating cycles. EndDate is derived from
// StartDate by the cycle engine, never supplied by callers.
type NewCycle struct {
	Name      string     `json:"name"`
	StartDate dates.Date `json:"start_date"`
	Goal      string     `json:"goal,omitempty"`
	IsActive  bool       `json:"is_active"`
}

// CyclePatch is a partial update; nil fields are left unchanged.
// Patching StartDate recomputes EndDate.
type CyclePatch struct {
	Name      *string     `json:"name"`
	StartDate *dates.Date `json:"start_date"`
	Goal      *string     `json:"goal"`
	IsActive  *bool       `json:"is_active"`
}

// CalendarTask is a read-only projection of Task enriched with its parent
// project's name and icon for display. Not separately persisted.
type CalendarTask struct {
	Task
	ProjectName string `json:"project_name"`
	ProjectIcon string `json:"project_icon,omitempty"`
}

// CalendarData is the flat result of a calendar range query. Grouping by
// day or week is the caller's concern.
type CalendarData struct {
	Projects []Project      `json:"projects"`
	Tasks    []CalendarTask `json:"tasks"`
}

// MarshalJSON ensures nil slices in CalendarData marshal as [] not null.
func (c CalendarData) MarshalJSON() ([]byte, error) {
	if c.Projects == nil {
		c.Projects = []Project{}
	}
	if c.Tasks == nil {
		c.Tasks = []CalendarTask{}
	}
	type Alias CalendarData
	return json.Marshal(Alias(c))
}

// StoreStats holds aggregate entity counts.
type StoreStats struct {
	ProjectCount int64 `json:"project_count"`
	SeedCount    int64 `json:"seed_count"`
	TaskCount    int64 `json:"task_count"`
	CycleCount   int64 `json:"cycle_count"`
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	ProjectCount  int64  `json:"project_count"`
	SeedCount     int64  `json:"seed_count"`
	TaskCount     int64  `json:"task_count"`
	ActiveCycleID string `json:"active_cycle_id,omitempty"`
}
