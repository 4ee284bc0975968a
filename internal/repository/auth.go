package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/basetutor/internal/models"
)

// SQLAuthRepository stores user accounts.
type SQLAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewSQLAuthRepository creates a new SQLAuthRepository with the given database connection.
func NewSQLAuthRepository(db *sql.DB) *SQLAuthRepository {
	return &SQLAuthRepository{DB: db}
}

// CreateUser inserts u and returns its assigned ID. The insert relies on the
// UNIQUE constraints of username and email; a violation yields
// models.ErrAlreadyExists and leaves no row behind.
func (r *SQLAuthRepository) CreateUser(ctx context.Context, u models.User) (int64, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5) RETURNING id
	`, u.Username, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, models.ErrAlreadyExists
		}
		return 0, fmt.Errorf("CreateUser: %w", err)
	}
	return id, nil
}

// GetUser fetches the user with the given username, or models.ErrNotFound.
func (r *SQLAuthRepository) GetUser(ctx context.Context, username string) (models.User, error) {
	var u models.User
	var role string
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, email, password_hash, role, created_at FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, models.ErrNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("GetUser: %w", err)
	}
	u.Role = models.Role(role)
	return u, nil
}

// UserExists checks the username and the email independently.
func (r *SQLAuthRepository) UserExists(ctx context.Context, username, email string) (bool, bool, error) {
	var usernameTaken, emailTaken bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE username = $1), EXISTS(SELECT 1 FROM users WHERE email = $2)
	`, username, email).Scan(&usernameTaken, &emailTaken)
	if err != nil {
		return false, false, fmt.Errorf("UserExists: %w", err)
	}
	return usernameTaken, emailTaken, nil
}

// ListUsernamesByRole returns the usernames holding role, sorted.
func (r *SQLAuthRepository) ListUsernamesByRole(ctx context.Context, role models.Role) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT username FROM users WHERE role = $1 ORDER BY username
	`, string(role))
	if err != nil {
		return nil, fmt.Errorf("ListUsernamesByRole: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsernamesByRole: %w", err)
	}
	return names, nil
}
