package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

var (
	_ store.ReferenceStore  = (*ReferenceStore)(nil)
	_ store.ReferenceSeeder = (*ReferenceStore)(nil)
)

// ReferenceStore keeps cities and schools in maps keyed by id
type ReferenceStore struct {
	mu      sync.RWMutex
	cities  map[int64]store.City
	schools map[int64]store.School
}

// NewReferenceStore creates an empty ReferenceStore
func NewReferenceStore() *ReferenceStore {
	return &ReferenceStore{
		cities:  make(map[int64]store.City),
		schools: make(map[int64]store.School),
	}
}

func (s *ReferenceStore) ListCities(_ context.Context) ([]store.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities := make([]store.City, 0, len(s.cities))
	for _, c := range s.cities {
		cities = append(cities, c)
	}
	sort.Slice(cities, func(i, j int) bool {
		if cities[i].Name != cities[j].Name {
			return cities[i].Name < cities[j].Name
		}
		return cities[i].ID < cities[j].ID
	})
	return cities, nil
}

func (s *ReferenceStore) ListSchoolsByCity(_ context.Context, cityID int64) ([]store.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schools := make([]store.School, 0)
	for _, sc := range s.schools {
		if sc.City == cityID {
			schools = append(schools, sc)
		}
	}
	sort.Slice(schools, func(i, j int) bool {
		if schools[i].Name != schools[j].Name {
			return schools[i].Name < schools[j].Name
		}
		return schools[i].ID < schools[j].ID
	})
	return schools, nil
}

func (s *ReferenceStore) GetCity(_ context.Context, id int64) (*store.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.cities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *ReferenceStore) GetSchool(_ context.Context, id int64) (*store.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.schools[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &sc, nil
}

// SeedReference inserts or replaces the given rows by id
func (s *ReferenceStore) SeedReference(_ context.Context, cities []store.City, schools []store.School) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range cities {
		s.cities[c.ID] = c
	}
	for _, sc := range schools {
		s.schools[sc.ID] = sc
	}
	return nil
}
