package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/core/port"
	"github.com/JorgeDuranS/AppSegura/internal/infra/security"
	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

// ErrUserExists indicates the requested username is already taken.
var ErrUserExists = errors.New("username already exists")

// RegistrationService creates new accounts.
type RegistrationService struct {
	users     port.UserRepository
	passwords *security.PasswordValidator
	audit     port.AuditPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewRegistrationService constructs a RegistrationService instance.
func NewRegistrationService(
	users port.UserRepository,
	passwords *security.PasswordValidator,
	audit port.AuditPublisher,
	log *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		users:     users,
		passwords: passwords,
		audit:     audit,
		logger:    log,
		now:       time.Now,
	}
}

// Register validates the credentials, hashes the password and creates the
// account. A taken username is reported before the expensive hash; the race
// between that check and the insert is settled by the database constraint.
func (s *RegistrationService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username, err := ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	if err := s.passwords.Validate(password); err != nil {
		return nil, err
	}

	taken, err := s.users.Exists(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, ErrUserExists
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		PasswordAlgo: "argon2id",
		CreatedAt:    s.now().UTC(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.audit.PublishUserRegistered(ctx, domain.UserRegisteredEvent{
		UserID:       user.ID,
		Username:     user.Username,
		RegisteredAt: user.CreatedAt,
	}); err != nil {
		s.logger.Warn("Failed to publish registration event", zap.Error(err))
	}

	return &user, nil
}
