package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/beccaroth/muse/internal/cycle"
	"github.com/beccaroth/muse/internal/dates"
	"github.com/beccaroth/muse/internal/types"
	"github.com/oklog/ulid/v2"
)

const cycleColumns = `id, name, start_date, end_date, goal, is_active, created_at, updated_at`

func scanCycle(sc scanner) (*types.TwelveWeekCycle, error) {
	var c types.TwelveWeekCycle
	var startDate, endDate, createdAt, updatedAt string

	err := sc.Scan(
		&c.ID,
		&c.Name,
		&startDate,
		&endDate,
		&c.Goal,
		&c.IsActive,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if c.StartDate, err = dates.Parse(startDate); err != nil {
		return nil, fmt.Errorf("parse start_date: %w", err)
	}
	if c.EndDate, err = dates.Parse(endDate); err != nil {
		return nil, fmt.Errorf("parse end_date: %w", err)
	}
	c.CreatedAt = parseTimestamp(createdAt)
	c.UpdatedAt = parseTimestamp(updatedAt)

	return &c, nil
}

// ListCycles returns all cycles ordered by start date descending.
func (s *SQLiteStore) ListCycles(ctx context.Context) ([]types.TwelveWeekCycle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+cycleColumns+`
		FROM twelve_week_cycles
		ORDER BY start_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query cycles: %w", err)
	}
	defer rows.Close()

	var cycles []types.TwelveWeekCycle
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		cycles = append(cycles, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return cycles, nil
}

// GetCycle retrieves a cycle by ID.
func (s *SQLiteStore) GetCycle(ctx context.Context, id string) (*types.TwelveWeekCycle, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cycleColumns+`
		FROM twelve_week_cycles
		WHERE id = ?
	`, id)

	c, err := scanCycle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	return c, nil
}

// GetActiveCycle retrieves the currently active cycle, or ErrNoActiveCycle.
func (s *SQLiteStore) GetActiveCycle(ctx context.Context) (*types.TwelveWeekCycle, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+cycleColumns+`
		FROM twelve_week_cycles
		WHERE is_active = 1
		ORDER BY start_date DESC
		LIMIT 1
	`)

	c, err := scanCycle(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNoActiveCycle
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	return c, nil
}

// InsertCycle stores a new cycle. The end date is derived from the start
// date. Inserting an active cycle first deactivates any other active cycle;
// at most one cycle is active at a time.
func (s *SQLiteStore) InsertCycle(ctx context.Context, nc types.NewCycle) (*types.TwelveWeekCycle, error) {
	now := time.Now().UTC()
	c := types.TwelveWeekCycle{
		ID:        ulid.Make().String(),
		Name:      nc.Name,
		StartDate: nc.StartDate,
		EndDate:   cycle.EndDate(nc.StartDate),
		Goal:      nc.Goal,
		IsActive:  nc.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if c.IsActive {
		if _, err := tx.ExecContext(ctx,
			"UPDATE twelve_week_cycles SET is_active = 0 WHERE is_active = 1"); err != nil {
			return nil, fmt.Errorf("deactivate cycles: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO twelve_week_cycles (`+cycleColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.StartDate.String(), c.EndDate.String(), c.Goal,
		c.IsActive, now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert cycle: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &c, nil
}

// UpdateCycle applies a partial update and returns the updated cycle.
// Patching the start date recomputes the end date; activating a cycle
// deactivates all others first.
func (s *SQLiteStore) UpdateCycle(ctx context.Context, id string, patch types.CyclePatch) (*types.TwelveWeekCycle, error) {
	var sets []string
	var args []any

	if patch.Name != nil {
		sets, args = append(sets, "name = ?"), append(args, *patch.Name)
	}
	if patch.StartDate != nil {
		sets, args = append(sets, "start_date = ?"), append(args, patch.StartDate.String())
		sets, args = append(sets, "end_date = ?"), append(args, cycle.EndDate(*patch.StartDate).String())
	}
	if patch.Goal != nil {
		sets, args = append(sets, "goal = ?"), append(args, *patch.Goal)
	}
	if patch.IsActive != nil {
		sets, args = append(sets, "is_active = ?"), append(args, *patch.IsActive)
	}

	if len(sets) == 0 {
		return s.GetCycle(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if patch.IsActive != nil && *patch.IsActive {
		if _, err := tx.ExecContext(ctx,
			"UPDATE twelve_week_cycles SET is_active = 0 WHERE is_active = 1 AND id != ?", id); err != nil {
			return nil, fmt.Errorf("deactivate cycles: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE twelve_week_cycles SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update cycle: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return s.GetCycle(ctx, id)
}

// DeleteCycle removes a cycle.
func (s *SQLiteStore) DeleteCycle(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM twelve_week_cycles WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete cycle: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
