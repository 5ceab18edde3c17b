package registration

//go:generate go run github.com/dmarkham/enumer -type Outcome -trimprefix Outcome -transform snake -output outcome.gen.go

// Outcome is the result of an operation that did not fail. Several of them
// are no-ops that the caller turns into a redirect.
type Outcome int

const (
	// OutcomeRegistered means a new registration was stored.
	OutcomeRegistered Outcome = iota + 1
	// OutcomeAlreadyRegistered means a registration existed and was left untouched.
	OutcomeAlreadyRegistered
	// OutcomeUpdated means the school of an existing registration was replaced.
	OutcomeUpdated
	// OutcomeUnregistered means the registration was deleted.
	OutcomeUnregistered
	// OutcomeNotConfirmed means a delete was requested without confirmation.
	OutcomeNotConfirmed
	// OutcomeNothingToDelete means there was no registration to delete.
	OutcomeNothingToDelete
)
