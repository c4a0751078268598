package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

func newMockUserRepo(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)

	repo := &UserRepository{
		exec:    mock,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
	return repo, mock
}

func TestUserRepositoryCreate(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	user := domain.User{
		ID:           "3e2b906c-3a7b-4a43-8a2f-3e2d6f431001",
		Username:     "alice",
		PasswordHash: "argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		PasswordAlgo: "argon2id",
		CreatedAt:    time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (id,username,password_hash,password_algo,created_at) VALUES ($1,$2,$3,$4,$5)")).
		WithArgs(user.ID, user.Username, user.PasswordHash, user.PasswordAlgo, user.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation, ConstraintName: "users_username_key"})

	err := repo.Create(context.Background(), domain.User{ID: "id", Username: "alice"})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestUserRepositoryGetByUsername(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	created := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "password_algo", "created_at"}).
		AddRow("uid-1", "alice", "hash", "argon2id", created)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, username, password_hash, password_algo, created_at FROM users WHERE username = $1")).
		WithArgs("alice").
		WillReturnRows(rows)

	user, err := repo.GetByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetByUsername returned error: %v", err)
	}
	if user.Username != "alice" || user.PasswordHash != "hash" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestUserRepositoryGetByUsernameNotFound(t *testing.T) {
	repo, mock := newMockUserRepo(t)

	mock.ExpectQuery("SELECT id, username").
		WithArgs("nobody").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "password_algo", "created_at"}))

	if _, err := repo.GetByUsername(context.Background(), "nobody"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
