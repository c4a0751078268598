package port

import (
	"context"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
)

// UserRepository persists credential records.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// DataRepository persists the per-user encrypted blob with upsert semantics.
type DataRepository interface {
	Upsert(ctx context.Context, username string, payload []byte) error
	Get(ctx context.Context, username string) (*domain.DataRecord, error)
}

// SessionStore keeps server-side session state keyed by session ID.
type SessionStore interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context, session domain.Session) error
}
