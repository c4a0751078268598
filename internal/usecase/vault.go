package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/core/port"
	"github.com/JorgeDuranS/AppSegura/internal/infra/security"
	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

// ErrNoData indicates the user has not stored anything yet.
var ErrNoData = errors.New("no data stored")

// VaultService encrypts and stores the per-user text blob. Plaintext only
// exists inside a request; the repository sees ciphertext exclusively.
type VaultService struct {
	data   port.DataRepository
	cipher *security.Cipher
	audit  port.AuditPublisher
	logger *zap.Logger
	now    func() time.Time
}

// NewVaultService constructs a VaultService instance.
func NewVaultService(
	data port.DataRepository,
	cipher *security.Cipher,
	audit port.AuditPublisher,
	log *zap.Logger,
) *VaultService {
	return &VaultService{
		data:   data,
		cipher: cipher,
		audit:  audit,
		logger: log,
		now:    time.Now,
	}
}

// Save validates the plaintext, encrypts it and upserts the user's record.
// A second save replaces the first.
func (s *VaultService) Save(ctx context.Context, username, data string) error {
	data, err := ValidateData(data)
	if err != nil {
		return err
	}

	payload, err := s.cipher.Encrypt(data)
	if err != nil {
		return fmt.Errorf("encrypt data: %w", err)
	}

	if err := s.data.Upsert(ctx, username, payload); err != nil {
		return fmt.Errorf("store data: %w", err)
	}

	if err := s.audit.PublishDataSaved(ctx, domain.DataSavedEvent{
		Username:   username,
		PayloadLen: len(data),
		SavedAt:    s.now().UTC(),
	}); err != nil {
		s.logger.Warn("Failed to publish data saved event", zap.Error(err))
	}

	return nil
}

// Load fetches and decrypts the user's blob. A decryption failure means
// either the stored record or the key file is damaged; it is surfaced as-is
// so it shows up as a server error, never as someone else's data.
func (s *VaultService) Load(ctx context.Context, username string) (string, error) {
	record, err := s.data.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNoData
		}
		return "", fmt.Errorf("load data: %w", err)
	}

	plaintext, err := s.cipher.Decrypt(record.Payload)
	if err != nil {
		return "", fmt.Errorf("decrypt data for %s: %w", username, err)
	}

	return plaintext, nil
}
