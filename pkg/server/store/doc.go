// Package store provides storage abstractions for the inscricao server.
//
// This package defines interfaces for database operations, allowing the
// registration service and the endpoints to be decoupled from the specific
// database implementation.
//
// # Available Stores
//
//   - ReferenceStore: read-only cities and schools
//   - ReferenceSeeder: bulk load of reference data (CLI)
//   - RegistrationStore: one registration per identity
//   - HealthStore: database connectivity
//
// # Implementations
//
//   - store/gorm: PostgreSQL through GORM, with encrypted registration columns
//   - store/memory: in-process maps, for tests and local runs
//   - store/cache: a TTL cache in front of any ReferenceStore
//
// # Usage
//
//	registrations := gormstore.NewRegistrationStore(db, cipher)
//	r, err := registrations.FindByName(ctx, "alice")
//	if err != nil {
//	    if errors.Is(err, store.ErrNotFound) {
//	        // Not registered
//	    }
//	}
package store
