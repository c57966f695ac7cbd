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

const seedColumns = `id, title, icon, description, project_type, date_added, created_at, updated_at`

func scanSeed(sc scanner) (*types.Seed, error) {
	var s types.Seed
	var dateAdded, createdAt, updatedAt string

	err := sc.Scan(
		&s.ID,
		&s.Title,
		&s.Icon,
		&s.Description,
		&s.Type,
		&dateAdded,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if s.DateAdded, err = dates.Parse(dateAdded); err != nil {
		return nil, fmt.Errorf("parse date_added: %w", err)
	}
	s.CreatedAt = parseTimestamp(createdAt)
	s.UpdatedAt = parseTimestamp(updatedAt)

	return &s, nil
}

// ListSeeds returns all seeds ordered by date added descending.
func (s *SQLiteStore) ListSeeds(ctx context.Context) ([]types.Seed, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+seedColumns+`
		FROM seeds
		ORDER BY date_added DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query seeds: %w", err)
	}
	defer rows.Close()

	var seeds []types.Seed
	for rows.Next() {
		seed, err := scanSeed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		seeds = append(seeds, *seed)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return seeds, nil
}

// GetSeed retrieves a seed by ID.
func (s *SQLiteStore) GetSeed(ctx context.Context, id string) (*types.Seed, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+seedColumns+`
		FROM seeds
		WHERE id = ?
	`, id)

	seed, err := scanSeed(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan row: %w", err)
	}

	return seed, nil
}

// InsertSeed stores a new seed with a generated ID and timestamps.
// A zero DateAdded defaults to today.
func (s *SQLiteStore) InsertSeed(ctx context.Context, ns types.NewSeed) (*types.Seed, error) {
	now := time.Now().UTC()
	seed := types.Seed{
		ID:          ulid.Make().String(),
		Title:       ns.Title,
		Icon:        ns.Icon,
		Description: ns.Description,
		Type:        ns.Type,
		DateAdded:   ns.DateAdded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if seed.DateAdded.IsZero() {
		seed.DateAdded = dates.FromTime(now)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO seeds (`+seedColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, seed.ID, seed.Title, seed.Icon, seed.Description, seed.Type,
		seed.DateAdded.String(), now.Format(time.RFC3339), now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert seed: %w", err)
	}

	return &seed, nil
}

// UpdateSeed applies a partial update and returns the updated seed.
func (s *SQLiteStore) UpdateSeed(ctx context.Context, id string, patch types.SeedPatch) (*types.Seed, error) {
	var sets []string
	var args []any

	if patch.Title != nil {
		sets, args = append(sets, "title = ?"), append(args, *patch.Title)
	}
	if patch.Icon != nil {
		sets, args = append(sets, "icon = ?"), append(args, *patch.Icon)
	}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	if patch.Type != nil {
		sets, args = append(sets, "project_type = ?"), append(args, *patch.Type)
	}

	if len(sets) == 0 {
		return s.GetSeed(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339), id)

	result, err := s.db.ExecContext(ctx,
		"UPDATE seeds SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update seed: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return nil, ErrNotFound
	}

	return s.GetSeed(ctx, id)
}

// DeleteSeed removes a seed.
func (s *SQLiteStore) DeleteSeed(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM seeds WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete seed: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}
	return nil
}
