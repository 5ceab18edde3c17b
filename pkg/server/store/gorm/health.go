package gorm

import (
	"context"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

var _ store.HealthStore = (*HealthStore)(nil)

// HealthStore provides health check operations using GORM
type HealthStore struct {
	dbs []*gorm.DB
}

// NewHealthStore creates a new HealthStore. Every given connection is
// checked, so split reference and users databases are both covered.
func NewHealthStore(dbs ...*gorm.DB) *HealthStore {
	return &HealthStore{dbs: dbs}
}

// CheckConnectivity verifies database connectivity
func (s *HealthStore) CheckConnectivity(ctx context.Context) error {
	for _, db := range s.dbs {
		if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
			return err
		}
	}
	return nil
}
