// Package registration implements the registration state machine for one
// identity:
//
//	{Unregistered} --Register--> {Registered} --UpdateSchool--> {Registered}
//	{Registered} --Unregister--> {Unregistered}
//
// Register and Unregister are no-ops when the identity is already in the
// target state; those cases are reported as an Outcome, never as an error.
// Failures carry a Kind so callers can pick a response without string
// matching:
//
//	outcome, err := svc.Register(ctx, username, schoolID)
//	switch registration.KindOf(err) {
//	case registration.KindUnauthenticated:
//	    // send to login
//	case registration.KindPersistence:
//	    // show registration.Diagnostic(err, support)
//	}
//
// Uniqueness of registrations is enforced by the store. When two Register
// calls for the same identity race past the existence check, the loser gets
// KindPersistence; nothing is retried.
package registration
