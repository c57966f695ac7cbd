package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
	"github.com/oklog/ulid/v2"
)

const projectColumns = `id, project_name, icon, status, priority, project_types,
	description, notes, start_date, end_date, progress, created_at, updated_at`

func scanProject(sc scanner) (*types.Project, error) {
	var p types.Project
	var typesJSON string
	var startDate, endDate sql.NullString
	var createdAt, updatedAt string

	err := sc.Scan(
		&p.ID,
		&p.Name,
		&p.Icon,
		&p.Status,
		&p.Priority,
		&typesJSON,
		&p.Description,
		&p.Notes,
		&startDate,
		&endDate,
		&p.Progress,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if typesJSON != "" {
		if err := json.Unmarshal([]byte(typesJSON), &p.Types); err != nil {
			return nil, fmt.Errorf("parse project_types JSON: %w", err)
		}
	}
	if p.StartDate, err = nullDate(startDate); err != nil {
		return nil, fmt.Errorf("parse start_date: %w", err)
	}
	if p.EndDate, err = nullDate(endDate); err != nil {
		return nil, fmt.Errorf("parse end_date: %w", err)
	}
	p.CreatedAt = parseTimestamp(createdAt)
	p.UpdatedAt = parseTimestamp(updatedAt)

	return &p, nil
}

// ListProjects returns all projects ordered by creation time descending.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]types.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		projects = append(projects, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return projects, nil
}

// GetProject retrieves a project by ID.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = ?
	`, id)

	p, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	return p, nil
}

// InsertProject stores a new project with a generated ID and timestamps.
func (s *SQLiteStore) InsertProject(ctx context.Context, np types.NewProject) (*types.Project, error) {
	now := time.Now().UTC()
	p := types.Project{
		ID:          ulid.Make().String(),
		Name:        np.Name,
		Icon:        np.Icon,
		Status:      np.Status,
		Priority:    np.Priority,
		Types:       np.Types,
		Description: np.Description,
		Notes:       np.Notes,
		StartDate:   np.StartDate,
		EndDate:     np.EndDate,
		Progress:    np.Progress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if p.Types == nil {
		p.Types = []string{}
	}

	typesJSON, err := json.Marshal(p.Types)
	if err != nil {
		return nil, fmt.Errorf("marshal project_types: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Icon, p.Status, p.Priority, string(typesJSON),
		p.Description, p.Notes, dateArg(p.StartDate), dateArg(p.EndDate),
		p.Progress, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	return &p, nil
}

// UpdateProject applies a partial update and returns the updated project.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, patch types.ProjectPatch) (*types.Project, error) {
	var sets []string
	var args []any

	if patch.Name != nil {
		sets, args = append(sets, "project_name = ?"), append(args, *patch.Name)
	}
	if patch.Icon != nil {
		sets, args = append(sets, "icon = ?"), append(args, *patch.Icon)
	}
	if patch.Status != nil {
		sets, args = append(sets, "status = ?"), append(args, *patch.Status)
	}
	if patch.Priority != nil {
		sets, args = append(sets, "priority = ?"), append(args, *patch.Priority)
	}
	if patch.Types != nil {
		typesJSON, err := json.Marshal(*patch.Types)
		if err != nil {
			return nil, fmt.Errorf("marshal project_types: %w", err)
		}
		sets, args = append(sets, "project_types = ?"), append(args, string(typesJSON))
	}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	if patch.Notes != nil {
		sets, args = append(sets, "notes = ?"), append(args, *patch.Notes)
	}
	if patch.StartDate != nil {
		sets, args = append(sets, "start_date = ?"), append(args, patch.StartDate.String())
	}
	if patch.EndDate != nil {
		sets, args = append(sets, "end_date = ?"), append(args, patch.EndDate.String())
	}
	if patch.Progress != nil {
		sets, args = append(sets, "progress = ?"), append(args, *patch.Progress)
	}

	if len(sets) == 0 {
		return s.GetProject(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id)

	result, err := s.db.ExecContext(ctx,
		"UPDATE projects SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	return s.GetProject(ctx, id)
}

// DeleteProject removes a project. Tasks cascade via foreign key.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListProjectsOverlapping returns projects whose effective span intersects
// the range. A project with only one of start/end set uses that date for
// both ends of its span; a project with neither date never matches.
func (s *SQLiteStore) ListProjectsOverlapping(ctx context.Context, r dates.Range) ([]types.Project, error) {
	start, end := r.Start.String(), r.End.String()
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE COALESCE(start_date, end_date) <= ?
		  AND COALESCE(end_date, start_date) >= ?
		ORDER BY created_at DESC
	`, end, start)
	if err != nil {
		return nil, fmt.Errorf("query overlapping projects: %w", err)
	}
	defer rows.Close()

	var projects []types.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		projects = append(projects, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return projects, nil
}
