package registration

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

const tracerName = "github.com/doodlesbykumbi/inscricao/pkg/registration"

// Operation names used in errors, spans and events.
const (
	OpRegister     = "register"
	OpLookup       = "lookup"
	OpUpdateSchool = "update_school"
	OpUnregister   = "unregister"
	OpProfile      = "profile"
)

// Profile is a registration together with the school and city it points to.
// School and City are nil when the stored school no longer resolves.
type Profile struct {
	Registration store.Registration
	School       *store.School
	City         *store.City
}

// Service runs the registration state machine on top of the stores.
type Service struct {
	reference     store.ReferenceStore
	registrations store.RegistrationStore
	now           func() time.Time
	tracer        trace.Tracer
	observers     []Observer
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for date_consent.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTracer sets the tracer used for operation spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// WithObserver adds an observer notified after every mutating operation.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observers = append(s.observers, o) }
}

// NewService creates a Service.
func NewService(reference store.ReferenceStore, registrations store.RegistrationStore, opts ...Option) *Service {
	s := &Service{
		reference:     reference,
		registrations: registrations,
		now:           func() time.Time { return time.Now().UTC() },
		tracer:        otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a registration for username at schoolID. An existing
// registration is left untouched and reported as OutcomeAlreadyRegistered.
func (s *Service) Register(ctx context.Context, username string, schoolID int64) (outcome Outcome, err error) {
	ctx, finish := s.begin(ctx, OpRegister, username, schoolID)
	defer func() { finish(outcome, err) }()

	if username == "" {
		return 0, newError(KindUnauthenticated, OpRegister, nil)
	}

	_, err = s.registrations.FindByName(ctx, username)
	switch {
	case err == nil:
		return OutcomeAlreadyRegistered, nil
	case !errors.Is(err, store.ErrNotFound):
		return 0, newError(KindPersistence, OpRegister, err)
	}

	if schoolID <= 0 {
		return 0, newError(KindInvalidSchool, OpRegister, nil)
	}
	if _, err = s.reference.GetSchool(ctx, schoolID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, newError(KindInvalidSchool, OpRegister, err)
		}
		return 0, newError(KindPersistence, OpRegister, err)
	}

	r := &store.Registration{
		Name:        username,
		SchoolID:    schoolID,
		DateConsent: s.now(),
	}
	if err = s.registrations.Create(ctx, r); err != nil {
		return 0, newError(KindPersistence, OpRegister, err)
	}
	return OutcomeRegistered, nil
}

// Lookup returns username's registration, or nil if there is none.
func (s *Service) Lookup(ctx context.Context, username string) (*store.Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registration."+OpLookup)
	defer span.End()

	if username == "" {
		return nil, nil
	}

	r, err := s.registrations.FindByName(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, newError(KindPersistence, OpLookup, err)
	}
	return r, nil
}

// UpdateSchool moves username's registration to schoolID. Only the school
// changes; the school id is not checked against the reference data.
func (s *Service) UpdateSchool(ctx context.Context, username string, schoolID int64) (outcome Outcome, err error) {
	ctx, finish := s.begin(ctx, OpUpdateSchool, username, schoolID)
	defer func() { finish(outcome, err) }()

	if username == "" {
		return 0, newError(KindUnauthenticated, OpUpdateSchool, nil)
	}
	if schoolID <= 0 {
		// Existence is reported first: an unregistered user gets NOT_REGISTERED
		// whatever the form carried.
		if _, err = s.registrations.FindByName(ctx, username); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return 0, newError(KindNotRegistered, OpUpdateSchool, err)
			}
			return 0, newError(KindPersistence, OpUpdateSchool, err)
		}
		return 0, newError(KindInvalidSchool, OpUpdateSchool, nil)
	}

	if err = s.registrations.UpdateSchool(ctx, username, schoolID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return 0, newError(KindNotRegistered, OpUpdateSchool, err)
		}
		return 0, newError(KindPersistence, OpUpdateSchool, err)
	}
	return OutcomeUpdated, nil
}

// Unregister deletes username's registration when confirm is set.
func (s *Service) Unregister(ctx context.Context, username string, confirm bool) (outcome Outcome, err error) {
	ctx, finish := s.begin(ctx, OpUnregister, username, 0)
	defer func() { finish(outcome, err) }()

	if !confirm {
		return OutcomeNotConfirmed, nil
	}
	if username == "" {
		return 0, newError(KindUnauthenticated, OpUnregister, nil)
	}

	if err = s.registrations.Delete(ctx, username); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return OutcomeNothingToDelete, nil
		}
		return 0, newError(KindPersistence, OpUnregister, err)
	}
	return OutcomeUnregistered, nil
}

// Profile returns username's registration with its school and city.
// Returns an error of KindNotRegistered when there is no registration.
func (s *Service) Profile(ctx context.Context, username string) (*Profile, error) {
	ctx, span := s.tracer.Start(ctx, "registration."+OpProfile)
	defer span.End()

	r, err := s.Lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, newError(KindNotRegistered, OpProfile, nil)
	}

	p := &Profile{Registration: *r}
	school, err := s.reference.GetSchool(ctx, r.SchoolID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return p, nil
	case err != nil:
		return nil, newError(KindPersistence, OpProfile, err)
	}
	p.School = school

	city, err := s.reference.GetCity(ctx, school.City)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return p, nil
	case err != nil:
		return nil, newError(KindPersistence, OpProfile, err)
	}
	p.City = city
	return p, nil
}

// begin starts the span for a mutating operation and returns a function
// that closes it and notifies the observers.
func (s *Service) begin(ctx context.Context, op, username string, schoolID int64) (context.Context, func(Outcome, error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "registration."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
	)
	if schoolID != 0 {
		span.SetAttributes(attribute.Int64("registration.school_id", schoolID))
	}

	return ctx, func(outcome Outcome, err error) {
		defer span.End()

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			span.SetAttributes(attribute.String("registration.error_kind", KindOf(err).String()))
		} else {
			span.SetAttributes(attribute.String("registration.outcome", outcome.String()))
			span.SetStatus(codes.Ok, "")
		}

		ev := Event{
			Op:       op,
			Username: username,
			SchoolID: schoolID,
			Outcome:  outcome,
			Err:      err,
			Duration: time.Since(start),
		}
		for _, o := range s.observers {
			o.Observe(ctx, ev)
		}
	}
}
