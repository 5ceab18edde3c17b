package gorm

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/doodlesbykumbi/inscricao/pkg/model"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// Ensure ReferenceStore implements store.ReferenceStore
var (
	_ store.ReferenceStore  = (*ReferenceStore)(nil)
	_ store.ReferenceSeeder = (*ReferenceStore)(nil)
)

// ReferenceStore implements store.ReferenceStore using GORM
type ReferenceStore struct {
	db *gorm.DB
}

// NewReferenceStore creates a new ReferenceStore
func NewReferenceStore(db *gorm.DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

// ListCities returns every city ordered by name
func (s *ReferenceStore) ListCities(ctx context.Context) ([]store.City, error) {
	var rows []model.City
	if err := s.db.WithContext(ctx).Order("name, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("listing cities: %w", err)
	}

	cities := make([]store.City, 0, len(rows))
	for _, row := range rows {
		cities = append(cities, cityFromRow(row))
	}
	return cities, nil
}

// ListSchoolsByCity returns the schools of one city ordered by name
func (s *ReferenceStore) ListSchoolsByCity(ctx context.Context, cityID int64) ([]store.School, error) {
	var rows []model.School
	err := s.db.WithContext(ctx).
		Where("city = ?", cityID).
		Order("name, id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing schools of city %d: %w", cityID, err)
	}

	schools := make([]store.School, 0, len(rows))
	for _, row := range rows {
		schools = append(schools, schoolFromRow(row))
	}
	return schools, nil
}

// GetCity retrieves a city by id
func (s *ReferenceStore) GetCity(ctx context.Context, id int64) (*store.City, error) {
	var rows []model.City
	if err := s.db.WithContext(ctx).Where("id = ?", id).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching city %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	city := cityFromRow(rows[0])
	return &city, nil
}

// GetSchool retrieves a school by id
func (s *ReferenceStore) GetSchool(ctx context.Context, id int64) (*store.School, error) {
	var rows []model.School
	if err := s.db.WithContext(ctx).Where("id = ?", id).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("fetching school %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	school := schoolFromRow(rows[0])
	return &school, nil
}

// SeedReference upserts cities and schools by id in a single transaction
func (s *ReferenceStore) SeedReference(ctx context.Context, cities []store.City, schools []store.School) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}

		if len(cities) > 0 {
			rows := make([]model.City, 0, len(cities))
			for _, c := range cities {
				rows = append(rows, model.City{ID: c.ID, Name: c.Name, State: c.State})
			}
			if err := tx.Clauses(upsert).Create(&rows).Error; err != nil {
				return fmt.Errorf("seeding cities: %w", err)
			}
		}

		if len(schools) > 0 {
			rows := make([]model.School, 0, len(schools))
			for _, sc := range schools {
				rows = append(rows, model.School{ID: sc.ID, Name: sc.Name, City: sc.City})
			}
			if err := tx.Clauses(upsert).Create(&rows).Error; err != nil {
				return fmt.Errorf("seeding schools: %w", err)
			}
		}

		return nil
	})
}

func cityFromRow(row model.City) store.City {
	return store.City{ID: row.ID, Name: row.Name, State: row.State}
}

func schoolFromRow(row model.School) store.School {
	return store.School{ID: row.ID, Name: row.Name, City: row.City}
}
