// Package cache wraps a store.ReferenceStore with an in-process TTL cache.
// Cities and schools don't change while the server runs, so lookups only
// reach the database once per TTL.
package cache

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

const citiesKey = "cities"

var _ store.ReferenceStore = (*ReferenceStore)(nil)

// ReferenceStore caches successful reads of the wrapped store. Errors,
// including store.ErrNotFound, are never cached.
type ReferenceStore struct {
	next  store.ReferenceStore
	cache *gocache.Cache
}

// NewReferenceStore wraps next. A ttl of zero disables expiry.
func NewReferenceStore(next store.ReferenceStore, ttl time.Duration) *ReferenceStore {
	expiration := ttl
	cleanup := 2 * ttl
	if ttl <= 0 {
		expiration = gocache.NoExpiration
		cleanup = 0
	}
	return &ReferenceStore{
		next:  next,
		cache: gocache.New(expiration, cleanup),
	}
}

func (s *ReferenceStore) ListCities(ctx context.Context) ([]store.City, error) {
	if v, ok := s.cache.Get(citiesKey); ok {
		return v.([]store.City), nil
	}
	cities, err := s.next.ListCities(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(citiesKey, cities)
	return cities, nil
}

func (s *ReferenceStore) ListSchoolsByCity(ctx context.Context, cityID int64) ([]store.School, error) {
	key := fmt.Sprintf("schools:%d", cityID)
	if v, ok := s.cache.Get(key); ok {
		return v.([]store.School), nil
	}
	schools, err := s.next.ListSchoolsByCity(ctx, cityID)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, schools)
	return schools, nil
}

func (s *ReferenceStore) GetCity(ctx context.Context, id int64) (*store.City, error) {
	key := fmt.Sprintf("city:%d", id)
	if v, ok := s.cache.Get(key); ok {
		c := v.(store.City)
		return &c, nil
	}
	c, err := s.next.GetCity(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, *c)
	return c, nil
}

func (s *ReferenceStore) GetSchool(ctx context.Context, id int64) (*store.School, error) {
	key := fmt.Sprintf("school:%d", id)
	if v, ok := s.cache.Get(key); ok {
		sc := v.(store.School)
		return &sc, nil
	}
	sc, err := s.next.GetSchool(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, *sc)
	return sc, nil
}

// Flush drops every cached entry, e.g. after the reference data is reseeded.
func (s *ReferenceStore) Flush() {
	s.cache.Flush()
}
