package store

import "context"

// HealthStore provides health check operations
type HealthStore interface {
	// CheckConnectivity verifies database connectivity
	CheckConnectivity(ctx context.Context) error
}

// HealthCheckFunc adapts a function to HealthStore.
type HealthCheckFunc func(ctx context.Context) error

func (f HealthCheckFunc) CheckConnectivity(ctx context.Context) error {
	return f(ctx)
}
