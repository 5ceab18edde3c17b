package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// Data is the content of a seed file
type Data struct {
	Cities  []store.City   `yaml:"cities" json:"cities"`
	Schools []store.School `yaml:"schools" json:"schools"`
}

// LoadResult reports what a load wrote
type LoadResult struct {
	Cities  int `json:"cities"`
	Schools int `json:"schools"`
}

// Parse decodes a seed file. Unknown keys are rejected so typos do not
// silently drop data.
func Parse(r io.Reader) (*Data, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var data Data
	if err := dec.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return &data, nil
		}
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	return &data, nil
}

// ParseFile is Parse for a path.
func ParseFile(path string) (*Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Parse(f)
}

// Validate checks ids, names and lengths against the table definitions.
// A school may reference a city that is not in the file; the foreign key
// decides in that case.
func (d *Data) Validate() error {
	var errs []error

	cityIDs := make(map[int64]bool, len(d.Cities))
	for i, c := range d.Cities {
		switch {
		case c.ID <= 0:
			errs = append(errs, fmt.Errorf("cities[%d]: id must be positive", i))
		case cityIDs[c.ID]:
			errs = append(errs, fmt.Errorf("cities[%d]: duplicate id %d", i, c.ID))
		}
		cityIDs[c.ID] = true

		if strings.TrimSpace(c.Name) == "" {
			errs = append(errs, fmt.Errorf("cities[%d]: name is required", i))
		} else if len([]rune(c.Name)) > 150 {
			errs = append(errs, fmt.Errorf("cities[%d]: name longer than 150 characters", i))
		}
		if len([]rune(c.State)) != 2 {
			errs = append(errs, fmt.Errorf("cities[%d]: state must have 2 letters, got %q", i, c.State))
		}
	}

	schoolIDs := make(map[int64]bool, len(d.Schools))
	for i, s := range d.Schools {
		switch {
		case s.ID <= 0:
			errs = append(errs, fmt.Errorf("schools[%d]: id must be positive", i))
		case schoolIDs[s.ID]:
			errs = append(errs, fmt.Errorf("schools[%d]: duplicate id %d", i, s.ID))
		}
		schoolIDs[s.ID] = true

		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Errorf("schools[%d]: name is required", i))
		} else if len([]rune(s.Name)) > 300 {
			errs = append(errs, fmt.Errorf("schools[%d]: name longer than 300 characters", i))
		}
		if s.City <= 0 {
			errs = append(errs, fmt.Errorf("schools[%d]: city must be positive", i))
		}
	}

	return errors.Join(errs...)
}

// Load validates d and upserts it through seeder in one transaction.
func Load(ctx context.Context, seeder store.ReferenceSeeder, d *Data) (*LoadResult, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := seeder.SeedReference(ctx, d.Cities, d.Schools); err != nil {
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}
	return &LoadResult{Cities: len(d.Cities), Schools: len(d.Schools)}, nil
}
