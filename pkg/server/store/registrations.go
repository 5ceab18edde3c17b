package store

import (
	"context"
	"time"
)

// Registration links one identity to one school
type Registration struct {
	ID          int64
	Name        string
	SchoolID    int64
	DateConsent time.Time
}

// RegistrationStore abstracts registration storage operations. Name is the
// plaintext identity; implementations decide how it is stored.
type RegistrationStore interface {
	// FindByName returns ErrNotFound if no registration exists for name.
	FindByName(ctx context.Context, name string) (*Registration, error)

	// Create inserts r and sets r.ID. Returns ErrDuplicate if a registration
	// for r.Name already exists.
	Create(ctx context.Context, r *Registration) error

	// UpdateSchool changes only the school of name's registration.
	// Returns ErrNotFound if there is none.
	UpdateSchool(ctx context.Context, name string, schoolID int64) error

	// Delete removes name's registration. Returns ErrNotFound if there is none.
	Delete(ctx context.Context, name string) error
}
