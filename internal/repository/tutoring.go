package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/basetutor/internal/models"
)

// SQLTutoringRepository stores tutor requests and tutoring sessions.
type SQLTutoringRepository struct {
	DB *sql.DB
}

// NewSQLTutoringRepository creates a new SQLTutoringRepository using the provided *sql.DB.
func NewSQLTutoringRepository(db *sql.DB) *SQLTutoringRepository {
	return &SQLTutoringRepository{DB: db}
}

const requestColumns = `id, student_username, tutor_username, status, created_at, updated_at`

const sessionColumns = `id, request_id, student_username, tutor_username, topic, status, created_at, updated_at`

// CreateRequest inserts a pending request from student to tutor at time now.
//
// The insert only selects rows when student holds the student role and tutor
// the tutor role, otherwise models.ErrNotFound is returned. The partial unique
// index on active requests turns a second pending/accepted request for the
// same pair into models.ErrActiveRequestExists.
func (r *SQLTutoringRepository) CreateRequest(ctx context.Context, student, tutor string, now int64) (models.TutorRequest, error) {
	var id int64
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO tutor_requests (student_username, tutor_username, status, created_at, updated_at)
		SELECT s.username, t.username, 'pending', CAST($1 AS BIGINT), CAST($1 AS BIGINT)
		FROM users s, users t
		WHERE s.username = $2 AND s.role = 'student' AND t.username = $3 AND t.role = 'tutor'
		RETURNING id
	`, now, student, tutor).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return models.TutorRequest{}, models.ErrNotFound
	case err != nil && isUniqueViolation(err):
		return models.TutorRequest{}, models.ErrActiveRequestExists
	case err != nil:
		return models.TutorRequest{}, fmt.Errorf("CreateRequest: %w", err)
	}

	return models.TutorRequest{
		ID:              id,
		StudentUsername: student,
		TutorUsername:   tutor,
		Status:          models.RequestPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// GetRequest fetches a request by ID, or models.ErrNotFound.
func (r *SQLTutoringRepository) GetRequest(ctx context.Context, id int64) (models.TutorRequest, error) {
	return getRequest(ctx, r.DB, id)
}

// ListRequestsByStudent returns the requests made by student, oldest first.
func (r *SQLTutoringRepository) ListRequestsByStudent(ctx context.Context, student string) ([]models.TutorRequest, error) {
	return r.listRequests(ctx, `SELECT `+requestColumns+` FROM tutor_requests WHERE student_username = $1 ORDER BY id`, student)
}

// ListRequestsByTutor returns the requests addressed to tutor, oldest first.
func (r *SQLTutoringRepository) ListRequestsByTutor(ctx context.Context, tutor string) ([]models.TutorRequest, error) {
	return r.listRequests(ctx, `SELECT `+requestColumns+` FROM tutor_requests WHERE tutor_username = $1 ORDER BY id`, tutor)
}

func (r *SQLTutoringRepository) listRequests(ctx context.Context, query, username string) ([]models.TutorRequest, error) {
	rows, err := r.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("listRequests: %w", err)
	}
	defer rows.Close()

	requests := []models.TutorRequest{}
	for rows.Next() {
		var req models.TutorRequest
		var status string
		if err := rows.Scan(&req.ID, &req.StudentUsername, &req.TutorUsername, &status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		req.Status = models.RequestStatus(status)
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listRequests: %w", err)
	}
	return requests, nil
}

// DeclineRequest moves a pending request to declined.
func (r *SQLTutoringRepository) DeclineRequest(ctx context.Context, id int64, now int64) (models.TutorRequest, error) {
	return transitionRequest(ctx, r.DB, id, models.RequestDeclined, now)
}

// AcceptRequest moves a pending request to accepted and creates its
// scheduled session in the same transaction.
func (r *SQLTutoringRepository) AcceptRequest(ctx context.Context, id int64, topic string, now int64) (models.Session, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Session{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	req, err := transitionRequest(ctx, tx, id, models.RequestAccepted, now)
	if err != nil {
		return models.Session{}, err
	}

	sess := models.Session{
		RequestID:       req.ID,
		StudentUsername: req.StudentUsername,
		TutorUsername:   req.TutorUsername,
		Topic:           topic,
		Status:          models.SessionScheduled,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sessions (request_id, student_username, tutor_username, topic, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id
	`, sess.RequestID, sess.StudentUsername, sess.TutorUsername, sess.Topic, string(sess.Status), now, now).Scan(&sess.ID)
	if err != nil {
		return models.Session{}, fmt.Errorf("insert session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Session{}, fmt.Errorf("commit: %w", err)
	}
	return sess, nil
}

// ListSessions returns the sessions where username is the tutor (isTutor)
// or the student, oldest first.
func (r *SQLTutoringRepository) ListSessions(ctx context.Context, username string, isTutor bool) ([]models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE student_username = $1 ORDER BY id`
	if isTutor {
		query = `SELECT ` + sessionColumns + ` FROM sessions WHERE tutor_username = $1 ORDER BY id`
	}

	rows, err := r.DB.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("ListSessions: %w", err)
	}
	defer rows.Close()

	sessions := []models.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListSessions: %w", err)
	}
	return sessions, nil
}

// UpdateSessionStatus moves a scheduled session to next.
func (r *SQLTutoringRepository) UpdateSessionStatus(ctx context.Context, id int64, next models.SessionStatus, now int64) (models.Session, error) {
	row := r.DB.QueryRowContext(ctx, `
		UPDATE sessions SET status = $1, updated_at = $2
		WHERE id = $3 AND status = 'scheduled'
		RETURNING `+sessionColumns, string(next), now, id)
	s, err := scanSession(row)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Session{}, fmt.Errorf("UpdateSessionStatus: %w", err)
	}

	var exists bool
	if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return models.Session{}, fmt.Errorf("UpdateSessionStatus: %w", err)
	}
	if !exists {
		return models.Session{}, models.ErrNotFound
	}
	return models.Session{}, models.ErrInvalidTransition
}

// transitionRequest moves a pending request to next. It reports
// models.ErrNotFound for an unknown ID and models.ErrInvalidTransition when
// the request already left the pending state.
func transitionRequest(ctx context.Context, q querier, id int64, next models.RequestStatus, now int64) (models.TutorRequest, error) {
	var req models.TutorRequest
	var status string
	err := q.QueryRowContext(ctx, `
		UPDATE tutor_requests SET status = $1, updated_at = $2
		WHERE id = $3 AND status = 'pending'
		RETURNING `+requestColumns, string(next), now, id).
		Scan(&req.ID, &req.StudentUsername, &req.TutorUsername, &status, &req.CreatedAt, &req.UpdatedAt)
	if err == nil {
		req.Status = models.RequestStatus(status)
		return req, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.TutorRequest{}, fmt.Errorf("transition request: %w", err)
	}

	if _, err := getRequest(ctx, q, id); err != nil {
		return models.TutorRequest{}, err
	}
	return models.TutorRequest{}, models.ErrInvalidTransition
}

func getRequest(ctx context.Context, q querier, id int64) (models.TutorRequest, error) {
	var req models.TutorRequest
	var status string
	err := q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM tutor_requests WHERE id = $1`, id).
		Scan(&req.ID, &req.StudentUsername, &req.TutorUsername, &status, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.TutorRequest{}, models.ErrNotFound
	}
	if err != nil {
		return models.TutorRequest{}, fmt.Errorf("GetRequest: %w", err)
	}
	req.Status = models.RequestStatus(status)
	return req, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (models.Session, error) {
	var s models.Session
	var status string
	if err := row.Scan(&s.ID, &s.RequestID, &s.StudentUsername, &s.TutorUsername, &s.Topic, &status, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return models.Session{}, err
	}
	s.Status = models.SessionStatus(status)
	return s, nil
}
