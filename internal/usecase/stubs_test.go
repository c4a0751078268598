package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/JorgeDuranS/AppSegura/internal/core/domain"
	"github.com/JorgeDuranS/AppSegura/internal/repository"
)

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]domain.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return repository.ErrDuplicate
	}
	r.users[user.Username] = user
	return nil
}

func (r *stubUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *stubUserRepo) Exists(_ context.Context, username string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.users[username]
	return ok, nil
}

type stubSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *stubSessionStore) Refresh(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

type stubDataRepo struct {
	mu      sync.Mutex
	records map[string]domain.DataRecord
}

func newStubDataRepo() *stubDataRepo {
	return &stubDataRepo{records: make(map[string]domain.DataRecord)}
}

func (r *stubDataRepo) Upsert(_ context.Context, username string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	record := r.records[username]
	record.Username = username
	record.Payload = append([]byte(nil), payload...)
	r.records[username] = record
	return nil
}

func (r *stubDataRepo) Get(_ context.Context, username string) (*domain.DataRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

type recordingPublisher struct {
	mu         sync.Mutex
	registered []domain.UserRegisteredEvent
	logins     []domain.LoginEvent
	saves      []domain.DataSavedEvent
}

func (p *recordingPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return nil
}

func (p *recordingPublisher) PublishLogin(_ context.Context, event domain.LoginEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, event)
	return nil
}

func (p *recordingPublisher) PublishDataSaved(_ context.Context, event domain.DataSavedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves = append(p.saves, event)
	return nil
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
