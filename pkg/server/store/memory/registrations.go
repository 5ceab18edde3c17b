package memory

import (
	"context"
	"sync"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

var _ store.RegistrationStore = (*RegistrationStore)(nil)

// RegistrationStore keeps registrations keyed by name. The map key plays
// the role of the unique index on users.name.
type RegistrationStore struct {
	mu     sync.Mutex
	nextID int64
	byName map[string]store.Registration
}

// NewRegistrationStore creates an empty RegistrationStore
func NewRegistrationStore() *RegistrationStore {
	return &RegistrationStore{byName: make(map[string]store.Registration)}
}

func (s *RegistrationStore) FindByName(_ context.Context, name string) (*store.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byName[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *RegistrationStore) Create(_ context.Context, r *store.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byName[r.Name]; exists {
		return store.ErrDuplicate
	}
	s.nextID++
	r.ID = s.nextID
	s.byName[r.Name] = *r
	return nil
}

func (s *RegistrationStore) UpdateSchool(_ context.Context, name string, schoolID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byName[name]
	if !ok {
		return store.ErrNotFound
	}
	r.SchoolID = schoolID
	s.byName[name] = r
	return nil
}

func (s *RegistrationStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; !ok {
		return store.ErrNotFound
	}
	delete(s.byName, name)
	return nil
}

// Len returns the number of registrations.
func (s *RegistrationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byName)
}
