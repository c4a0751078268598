package postgres

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

func newMockDataRepo(t *testing.T) (*DataRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := &DataRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func TestDataRepositoryUpsert(t *testing.T) {
	repo, mock := newMockDataRepo(t)

	payload := []byte{0x01, 0xde, 0xad, 0xbe, 0xef}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO data (username,data) VALUES ($1,$2) ON CONFLICT (username) DO UPDATE SET data = EXCLUDED.data, updated_at = now()")).
		WithArgs("alice", payload).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Upsert(context.Background(), "alice", payload); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDataRepositoryGet(t *testing.T) {
	repo, mock := newMockDataRepo(t)

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte{0x01, 0x02, 0x03}
	rows := pgxmock.NewRows([]string{"id", "username", "data", "created_at", "updated_at"}).
		AddRow(int64(7), "alice", payload, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, data, created_at, updated_at FROM data WHERE username = $1")).
		WithArgs("alice").
		WillReturnRows(rows)

	rec, err := repo.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if rec.ID != 7 || !bytes.Equal(rec.Payload, payload) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestDataRepositoryGetNotFound(t *testing.T) {
	repo, mock := newMockDataRepo(t)

	mock.ExpectQuery("SELECT id, username, data").
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "data", "created_at", "updated_at"}))

	if _, err := repo.Get(context.Background(), "nobody"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
