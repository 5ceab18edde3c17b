// Package identity carries the authenticated wiki user through a request.
//
// An Identity is produced by a Provider (the session cookie manager in
// pkg/session) and stored in the request context by the identity
// middleware in pkg/server/middleware.
//
// # Basic Usage
//
//	// Store in request context
//	ctx = identity.Set(ctx, id)
//
//	// Retrieve from context
//	id, ok := identity.Get(ctx)
//
//	// Or just the name; "" means anonymous
//	username := identity.Username(ctx)
//
// Absence of an identity is the normal state of an anonymous visitor and is
// never reported as an error.
package identity
