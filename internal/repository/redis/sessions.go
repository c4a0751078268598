package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

// SessionStore keeps server-side session state in Redis, keyed by the opaque
// session ID carried in the cookie. Entries expire with the session TTL.
type SessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewSessionStore constructs a Redis-backed session store.
func NewSessionStore(client *redis.Client, prefix string, ttl time.Duration) *SessionStore {
	if prefix == "" {
		prefix = "appsegura:session"
	}
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *SessionStore) key(id string) string {
	return fmt.Sprintf("%s:%s", s.prefix, id)
}

// Create persists a session with the configured TTL.
func (s *SessionStore) Create(ctx context.Context, session domain.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(session.ID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}

	return nil
}

// Get loads a session by ID. Missing or expired sessions surface as
// repository.ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

// Delete removes a session, ending it server-side.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Refresh re-stores a session with its updated expiry, resetting the TTL.
// Called on each authorized request so active sessions slide forward.
func (s *SessionStore) Refresh(ctx context.Context, session domain.Session) error {
	return s.Create(ctx, session)
}
