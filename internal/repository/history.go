package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/basetutor/internal/models"
)

// SQLHistoryRepository stores conversion history.
type SQLHistoryRepository struct {
	DB *sql.DB
}

// NewSQLHistoryRepository creates a new SQLHistoryRepository using the provided *sql.DB.
func NewSQLHistoryRepository(db *sql.DB) *SQLHistoryRepository {
	return &SQLHistoryRepository{DB: db}
}

// InsertConversion appends e and returns its ID. An unknown owner yields
// models.ErrNotFound through the foreign key on users.username.
func (r *SQLHistoryRepository) InsertConversion(ctx context.Context, e models.ConversionEntry) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO conversions (username, input_value, input_base, output_value, output_base, created_at)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id
	`, e.Username, e.InputValue, e.InputBase, e.OutputValue, e.OutputBase, e.Timestamp).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("InsertConversion: %w", err)
	}
	return id, nil
}

// ListConversions returns the user's entries most-recent-first. A positive
// limit caps the result to that many entries.
func (r *SQLHistoryRepository) ListConversions(ctx context.Context, username string, limit int) ([]models.ConversionEntry, error) {
	query := `
		SELECT id, username, input_value, input_base, output_value, output_base, created_at
		FROM conversions WHERE username = $1 ORDER BY created_at DESC, id DESC`
	args := []any{username}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListConversions: %w", err)
	}
	defer rows.Close()

	entries := []models.ConversionEntry{}
	for rows.Next() {
		var e models.ConversionEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.InputValue, &e.InputBase, &e.OutputValue, &e.OutputBase, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListConversions: %w", err)
	}
	return entries, nil
}

// DeleteConversions removes every entry owned by username and reports how many were removed.
func (r *SQLHistoryRepository) DeleteConversions(ctx context.Context, username string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM conversions WHERE username = $1`, username)
	if err != nil {
		return 0, fmt.Errorf("DeleteConversions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteConversions: %w", err)
	}
	return n, nil
}
