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

func setupHistoryMock(t *testing.T) (*SQLHistoryRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	return NewSQLHistoryRepository(db), mock, func() { db.Close() }
}

var conversionColumns = []string{"id", "username", "input_value", "input_base", "output_value", "output_base", "created_at"}

func TestInsertConversion_Success(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO conversions`)).
		WithArgs("alice", "255", 10, "ff", 16, int64(1000)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := repo.InsertConversion(context.Background(), models.ConversionEntry{
		Username: "alice", InputValue: "255", InputBase: 10, OutputValue: "ff", OutputBase: 16, Timestamp: 1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 1 {
		t.Errorf("expected id 1, got %d", id)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestInsertConversion_UnknownUser(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO conversions`)).
		WillReturnError(&pq.Error{Code: "23503"})

	_, err := repo.InsertConversion(context.Background(), models.ConversionEntry{Username: "ghost", InputBase: 2, OutputBase: 8})
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListConversions_WithLimit(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM conversions WHERE username = $1 ORDER BY created_at DESC, id DESC LIMIT $2`)).
		WithArgs("alice", 10).
		WillReturnRows(sqlmock.NewRows(conversionColumns).
			AddRow(int64(2), "alice", "7", 10, "111", 2, int64(20)).
			AddRow(int64(1), "alice", "ff", 16, "255", 10, int64(10)))

	entries, err := repo.ListConversions(context.Background(), "alice", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != 2 || entries[1].OutputValue != "255" {
		t.Errorf("unexpected entries: %+v", entries)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestListConversions_NoLimit(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectQuery(`ORDER BY created_at DESC, id DESC$`).
		WithArgs("bob").
		WillReturnRows(sqlmock.NewRows(conversionColumns))

	entries, err := repo.ListConversions(context.Background(), "bob", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestListConversions_ScanError(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM conversions`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	if _, err := repo.ListConversions(context.Background(), "bob", 0); err == nil {
		t.Error("expected scan error, got nil")
	}
}

func TestDeleteConversions(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM conversions WHERE username = $1`)).
		WithArgs("alice").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteConversions(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 rows removed, got %d", n)
	}
}

func TestDeleteConversions_Error(t *testing.T) {
	repo, mock, cleanup := setupHistoryMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM conversions`)).
		WillReturnError(errors.New("locked"))

	if _, err := repo.DeleteConversions(context.Background(), "alice"); err == nil {
		t.Error("expected error, got nil")
	}
}
