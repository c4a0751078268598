package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

// DataRepository implements port.DataRepository using PostgreSQL.
// Each user owns at most one row; saves are upserts.
type DataRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewDataRepository wires a PostgreSQL-backed data repository.
func NewDataRepository(pool *pgxpool.Pool) *DataRepository {
	return &DataRepository{
		pool:    pool,
		exec:    pool,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Upsert stores the encrypted payload for a user, overwriting any previous
// record and bumping updated_at.
func (r *DataRepository) Upsert(ctx context.Context, username string, payload []byte) error {
	stmt, args, err := r.builder.Insert("data").
		Columns("username", "data").
		Values(username, payload).
		Suffix("ON CONFLICT (username) DO UPDATE SET data = EXCLUDED.data, updated_at = now()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert data sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("upsert data: %w", err)
	}

	return nil
}

// Get retrieves the encrypted record for a user.
func (r *DataRepository) Get(ctx context.Context, username string) (*domain.DataRecord, error) {
	stmt, args, err := r.builder.
		Select("id", "username", "data", "created_at", "updated_at").
		From("data").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select data sql: %w", err)
	}

	var rec domain.DataRecord
	row := r.exec.QueryRow(ctx, stmt, args...)
	if err := row.Scan(&rec.ID, &rec.Username, &rec.Payload, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan data record: %w", err)
	}

	return &rec, nil
}
