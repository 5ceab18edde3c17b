package registration

import (
	"context"
	"time"
)

// Event describes one finished Register, UpdateSchool or Unregister call.
type Event struct {
	Op       string
	Username string
	SchoolID int64
	// Outcome is zero when Err is set.
	Outcome  Outcome
	Err      error
	Duration time.Duration
}

// Failed reports whether the operation returned an error.
func (e Event) Failed() bool {
	return e.Err != nil
}

// Observer is notified after every mutating operation. Implementations
// must not block; they run on the request goroutine.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) {
	f(ctx, ev)
}
