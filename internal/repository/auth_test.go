package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/atinyakov/basetutor/internal/models"
)

func setupAuthMock(t *testing.T) (*SQLAuthRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewSQLAuthRepository(db)
	cleanup := func() { db.Close() }
	return repo, mock, cleanup
}

const insertUserSQL = `INSERT INTO users (username, email, password_hash, role, created_at)`

func TestCreateUser_Success(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	u := models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "abc", Role: models.RoleStudent, CreatedAt: 42}
	mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
		WithArgs("alice", "alice@x.com", "abc", "student", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	id, err := repo.CreateUser(context.Background(), u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("expected id 7, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := repo.CreateUser(context.Background(), models.User{Username: "alice", Email: "a@x.com", Role: models.RoleStudent})
	if !errors.Is(err, models.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreateUser_Error(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(insertUserSQL)).
		WillReturnError(errors.New("disk I/O error"))

	_, err := repo.CreateUser(context.Background(), models.User{Username: "bob"})
	if err == nil || errors.Is(err, models.ErrAlreadyExists) {
		t.Errorf("expected wrapped driver error, got %v", err)
	}
	if !regexp.MustCompile(`CreateUser`).MatchString(err.Error()) {
		t.Errorf("expected CreateUser prefix, got %v", err)
	}
}

func TestGetUser_Found(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email, password_hash, role, created_at FROM users WHERE username = $1`)).
		WithArgs("carol").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at"}).
			AddRow(int64(3), "carol", "carol@x.com", "hash", "tutor", int64(100)))

	u, err := repo.GetUser(context.Background(), "carol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.ID != 3 || u.Email != "carol@x.com" || u.Role != models.RoleTutor || u.PasswordHash != "hash" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password_hash", "role", "created_at"}))

	_, err := repo.GetUser(context.Background(), "ghost")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUserExists(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1), EXISTS(SELECT 1 FROM users WHERE email = $2)`)).
		WithArgs("alice", "bob@x.com").
		WillReturnRows(sqlmock.NewRows([]string{"u", "e"}).AddRow(true, false))

	usernameTaken, emailTaken, err := repo.UserExists(context.Background(), "alice", "bob@x.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !usernameTaken || emailTaken {
		t.Errorf("expected (true, false), got (%v, %v)", usernameTaken, emailTaken)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestUserExists_Error(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WillReturnError(errors.New("query failed"))

	if _, _, err := repo.UserExists(context.Background(), "a", "b"); err == nil {
		t.Errorf("expected error, got nil")
	}
}

func TestListUsernamesByRole(t *testing.T) {
	repo, mock, cleanup := setupAuthMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT username FROM users WHERE role = $1 ORDER BY username`)).
		WithArgs("tutor").
		WillReturnRows(sqlmock.NewRows([]string{"username"}).AddRow("dan").AddRow("erin"))

	names, err := repo.ListUsernamesByRole(context.Background(), models.RoleTutor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(names) != 2 || names[0] != "dan" || names[1] != "erin" {
		t.Errorf("unexpected names: %v", names)
	}
}
