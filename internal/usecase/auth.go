package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/core/port"
	"github.com/JorgeDuranS/AppSegura/internal/infra/logger"
	"github.com/JorgeDuranS/AppSegura/internal/infra/security"
	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

var (
	// ErrInvalidCredentials indicates the username or password is incorrect.
	// Callers must not reveal which one.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited indicates too many failed logins from the same client.
	ErrRateLimited = errors.New("too many login attempts")
	// ErrSessionNotFound indicates the session is missing or expired.
	ErrSessionNotFound = errors.New("session not found")
)

// RateLimitedError carries the wait until the oldest attempt leaves the
// window. It unwraps to ErrRateLimited.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many login attempts, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}

// AuthService coordinates login, logout and session validation.
type AuthService struct {
	users       port.UserRepository
	sessions    port.SessionStore
	limiter     port.RateLimitStore
	audit       port.AuditPublisher
	logger      *zap.Logger
	window      time.Duration
	maxAttempts int
	sessionTTL  time.Duration
	now         func() time.Time
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(
	users port.UserRepository,
	sessions port.SessionStore,
	limiter port.RateLimitStore,
	audit port.AuditPublisher,
	log *zap.Logger,
	window time.Duration,
	maxAttempts int,
	sessionTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:       users,
		sessions:    sessions,
		limiter:     limiter,
		audit:       audit,
		logger:      log,
		window:      window,
		maxAttempts: maxAttempts,
		sessionTTL:  sessionTTL,
		now:         time.Now,
	}
}

func loginLimitKey(clientIP string) string {
	return "login:" + clientIP
}

// Login authenticates a user and creates a session. Failed attempts from the
// same client IP are counted in a sliding window; a successful login clears
// the counter. Lookup failures and password mismatches both surface as
// ErrInvalidCredentials so usernames cannot be probed.
func (s *AuthService) Login(ctx context.Context, username, password, clientIP string) (*domain.Session, error) {
	// Usernames are stored trimmed; trim here too so padded input still
	// reaches the right account.
	username = strings.TrimSpace(username)
	now := s.now().UTC()
	key := loginLimitKey(clientIP)

	if err := s.limiter.TrimWindow(ctx, key, s.window, now); err != nil {
		return nil, fmt.Errorf("trim rate limit window: %w", err)
	}
	count, err := s.limiter.CountAttempts(ctx, key, s.window, now)
	if err != nil {
		return nil, fmt.Errorf("count login attempts: %w", err)
	}
	if count >= s.maxAttempts {
		retryAfter := s.window
		if oldest, ok, err := s.limiter.OldestAttempt(ctx, key, s.window, now); err == nil && ok {
			retryAfter = oldest.Add(s.window).Sub(now)
		}
		s.logger.Warn("Login rate limited",
			zap.String("client_ip", logger.MaskIP(clientIP)),
			zap.Int("attempts", count),
		)
		return nil, &RateLimitedError{RetryAfter: retryAfter}
	}

	// The attempt is recorded before the password check so that failed
	// guesses count even when the handler aborts later.
	if err := s.limiter.RecordAttempt(ctx, key, now); err != nil {
		return nil, fmt.Errorf("record login attempt: %w", err)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.publishLogin(ctx, username, clientIP, false, now)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.publishLogin(ctx, username, clientIP, false, now)
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.ClearAttempts(ctx, key); err != nil {
		s.logger.Warn("Failed to clear rate limit counter", zap.Error(err))
	}

	csrfToken, err := security.NewCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("generate csrf token: %w", err)
	}

	session := domain.Session{
		ID:        uuid.NewString(),
		Username:  user.Username,
		CSRFToken: csrfToken,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.publishLogin(ctx, username, clientIP, true, now)
	return &session, nil
}

// Logout ends the session server-side. Unknown session IDs are not an error;
// the outcome is the same.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ValidateSession resolves a session cookie value to its session and slides
// the expiry forward. Missing and expired sessions both return
// ErrSessionNotFound.
func (s *AuthService) ValidateSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, ErrSessionNotFound
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	now := s.now().UTC()
	if session.Expired(now) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("Failed to delete expired session", zap.Error(err))
		}
		return nil, ErrSessionNotFound
	}

	session.ExpiresAt = now.Add(s.sessionTTL)
	if err := s.sessions.Refresh(ctx, *session); err != nil {
		s.logger.Warn("Failed to refresh session", zap.Error(err))
	}

	return session, nil
}

func (s *AuthService) publishLogin(ctx context.Context, username, clientIP string, success bool, at time.Time) {
	err := s.audit.PublishLogin(ctx, domain.LoginEvent{
		Username:   username,
		ClientIP:   clientIP,
		Success:    success,
		OccurredAt: at,
	})
	if err != nil {
		s.logger.Warn("Failed to publish login event", zap.Error(err))
	}
}
