package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

const pgUniqueViolation = "23505"

// UserRepository implements port.UserRepository using PostgreSQL.
type UserRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository wires a PostgreSQL-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create inserts a new credential record. A username collision surfaces as
// repository.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user domain.User) error {
	stmt, args, err := r.builder.Insert("users").
		Columns("id", "username", "password_hash", "password_algo", "created_at").
		Values(user.ID, user.Username, user.PasswordHash, user.PasswordAlgo, user.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByUsername retrieves a user by its unique username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	stmt, args, err := r.builder.
		Select("id", "username", "password_hash", "password_algo", "created_at").
		From("users").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	var user domain.User
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.PasswordAlgo, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}

	return &user, nil
}

// Exists reports whether a username is already registered.
func (r *UserRepository) Exists(ctx context.Context, username string) (bool, error) {
	stmt, args, err := r.builder.
		Select("1").
		From("users").
		Where(squirrel.Eq{"username": username}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists sql: %w", err)
	}

	var one int
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("scan exists: %w", err)
	}

	return true, nil
}
