// Package memory holds process-local stores. Login attempt counters live
// here on purpose: they are best effort, reset on restart, and are not
// shared across processes.
package memory

import (
	"context"
	"sync"
	"time"
)

// RateLimitStore keeps a sliding window of attempt timestamps per identifier.
// All methods are safe for concurrent use; without the lock, concurrent
// writers to the same bucket could under- or over-count.
type RateLimitStore struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewRateLimitStore constructs an empty in-memory store.
func NewRateLimitStore() *RateLimitStore {
	return &RateLimitStore{
		attempts: make(map[string][]time.Time),
	}
}

// RecordAttempt appends an attempt timestamp for the identifier.
func (s *RateLimitStore) RecordAttempt(_ context.Context, identifier string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts[identifier] = append(s.attempts[identifier], at)
	return nil
}

// TrimWindow drops attempts older than the window relative to reference time.
func (s *RateLimitStore) TrimWindow(_ context.Context, identifier string, window time.Duration, reference time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trimLocked(identifier, window, reference)
	return nil
}

// CountAttempts returns how many attempts fall inside the window.
func (s *RateLimitStore) CountAttempts(_ context.Context, identifier string, window time.Duration, reference time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := reference.Add(-window)
	count := 0
	for _, at := range s.attempts[identifier] {
		if at.After(cutoff) && !at.After(reference) {
			count++
		}
	}
	return count, nil
}

// OldestAttempt returns the oldest attempt remaining inside the window.
func (s *RateLimitStore) OldestAttempt(_ context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := reference.Add(-window)
	var (
		oldest time.Time
		found  bool
	)
	for _, at := range s.attempts[identifier] {
		if !at.After(cutoff) || at.After(reference) {
			continue
		}
		if !found || at.Before(oldest) {
			oldest = at
			found = true
		}
	}
	return oldest, found, nil
}

// ClearAttempts removes all history for the identifier; called after a
// successful authentication.
func (s *RateLimitStore) ClearAttempts(_ context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.attempts, identifier)
	return nil
}

func (s *RateLimitStore) trimLocked(identifier string, window time.Duration, reference time.Time) {
	entries := s.attempts[identifier]
	if len(entries) == 0 {
		return
	}

	cutoff := reference.Add(-window)
	kept := entries[:0]
	for _, at := range entries {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}

	if len(kept) == 0 {
		delete(s.attempts, identifier)
		return
	}
	s.attempts[identifier] = kept
}
