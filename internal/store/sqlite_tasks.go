package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
	"github.com/oklog/ulid/v2"
)

const taskColumns = `id, project_id, title, completed, sort_order, due_date, created_at, updated_at`

func scanTask(sc scanner) (*types.Task, error) {
	var t types.Task
	var dueDate sql.NullString
	var createdAt, updatedAt string

	err := sc.Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Completed,
		&t.SortOrder,
		&dueDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if t.DueDate, err = nullDate(dueDate); err != nil {
		return nil, fmt.Errorf("parse due_date: %w", err)
	}
	t.CreatedAt = parseTimestamp(createdAt)
	t.UpdatedAt = parseTimestamp(updatedAt)

	return &t, nil
}

// ListTasks returns a project's tasks ordered by sort order ascending.
func (s *SQLiteStore) ListTasks(ctx context.Context, projectID string) ([]types.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE project_id = ?
		ORDER BY sort_order ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		tasks = append(tasks, *t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return tasks, nil
}

// GetTask retrieves a task by ID.
func (s *SQLiteStore) GetTask(ctx context.Context, id string) (*types.Task, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = ?
	`, id)

	t, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	return t, nil
}

// InsertTask stores a new task with a generated ID and timestamps.
func (s *SQLiteStore) InsertTask(ctx context.Context, nt types.NewTask) (*types.Task, error) {
	now := time.Now().UTC()
	t := types.Task{
		ID:        ulid.Make().String(),
		ProjectID: nt.ProjectID,
		Title:     nt.Title,
		Completed: nt.Completed,
		SortOrder: nt.SortOrder,
		DueDate:   nt.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.ProjectID, t.Title, t.Completed, t.SortOrder,
		dateArg(t.DueDate), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	return &t, nil
}

// UpdateTask applies a partial update and returns the updated task.
func (s *SQLiteStore) UpdateTask(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error) {
	var sets []string
	var args []any

	if patch.Title != nil {
		sets, args = append(sets, "title = ?"), append(args, *patch.Title)
	}
	if patch.Completed != nil {
		sets, args = append(sets, "completed = ?"), append(args, *patch.Completed)
	}
	if patch.SortOrder != nil {
		sets, args = append(sets, "sort_order = ?"), append(args, *patch.SortOrder)
	}
	if patch.DueDate != nil {
		sets, args = append(sets, "due_date = ?"), append(args, patch.DueDate.String())
	}

	if len(sets) == 0 {
		return s.GetTask(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id)

	result, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	return s.GetTask(ctx, id)
}

// DeleteTask removes a task.
func (s *SQLiteStore) DeleteTask(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTasksDueBetween returns tasks with a due date inside the range, each
// denormalized with its parent project's name and icon for display.
func (s *SQLiteStore) ListTasksDueBetween(ctx context.Context, r dates.Range) ([]types.CalendarTask, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.project_id, t.title, t.completed, t.sort_order, t.due_date,
		       t.created_at, t.updated_at, p.project_name, p.icon
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.due_date IS NOT NULL AND t.due_date >= ? AND t.due_date <= ?
		ORDER BY t.due_date ASC, t.sort_order ASC
	`, r.Start.String(), r.End.String())
	if err != nil {
		return nil, fmt.Errorf("query due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []types.CalendarTask
	for rows.Next() {
		var ct types.CalendarTask
		var dueDate sql.NullString
		var createdAt, updatedAt string

		err := rows.Scan(
			&ct.ID,
			&ct.ProjectID,
			&ct.Title,
			&ct.Completed,
			&ct.SortOrder,
			&dueDate,
			&createdAt,
			&updatedAt,
			&ct.ProjectName,
			&ct.ProjectIcon,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		if ct.DueDate, err = nullDate(dueDate); err != nil {
			return nil, fmt.Errorf("parse due_date: %w", err)
		}
		ct.CreatedAt = parseTimestamp(createdAt)
		ct.UpdatedAt = parseTimestamp(updatedAt)

		tasks = append(tasks, ct)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return tasks, nil
}
