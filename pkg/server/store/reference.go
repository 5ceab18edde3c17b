package store

import "context"

// City is a municipality a school belongs to
type City struct {
	ID    int64  `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	State string `json:"state" yaml:"state"`
}

// School is a selectable school
type School struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	City int64  `json:"city" yaml:"city"`
}

// ReferenceStore abstracts read access to the city and school tables
type ReferenceStore interface {
	// ListCities returns every city ordered by name, then id.
	ListCities(ctx context.Context) ([]City, error)

	// ListSchoolsByCity returns the schools whose city is cityID. An unknown
	// city yields an empty slice, not an error.
	ListSchoolsByCity(ctx context.Context, cityID int64) ([]School, error)

	// GetCity returns ErrNotFound if the city doesn't exist.
	GetCity(ctx context.Context, id int64) (*City, error)

	// GetSchool returns ErrNotFound if the school doesn't exist.
	GetSchool(ctx context.Context, id int64) (*School, error)
}

// ReferenceSeeder loads reference data. It is only used by the CLI.
type ReferenceSeeder interface {
	// SeedReference inserts or replaces cities and schools by id.
	SeedReference(ctx context.Context, cities []City, schools []School) error
}
