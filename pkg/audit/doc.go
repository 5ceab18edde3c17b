// Package audit provides audit logging for inscricao.
//
// Security-relevant actions are written as RFC5424 syslog lines and, when an
// audit database is configured, persisted to the audit_events table.
//
// # Event Types
//
//   - LoginEvent: end of a wiki OAuth handshake (success/failure)
//   - LogoutEvent: session cleared
//   - RegistrationEvent: register, update_school and unregister calls,
//     including every PERSISTENCE_ERROR
//
// # Usage
//
//	auditor := audit.NewAuditor(audit.NewLogger(), store)
//	auditor.Log(ctx, audit.LoginEvent{Username: "alice", Success: true})
//
// An *Auditor is also a registration.Observer, so it can be handed to the
// registration service with registration.WithObserver.
package audit
