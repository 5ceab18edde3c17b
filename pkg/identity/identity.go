package identity

import (
	"context"
	"net"
	"net/http"
	"time"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity is the verified wiki user behind a request.
type Identity struct {
	// Session claims
	Username  string
	IssuedAt  time.Time
	ExpiresAt time.Time

	// Request context
	RemoteIP net.IP
}

// Provider resolves the identity of a request. A request without a valid
// session yields ok == false; that is not an error.
type Provider interface {
	Resolve(r *http.Request) (id *Identity, ok bool)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(r *http.Request) (*Identity, bool)

func (f ProviderFunc) Resolve(r *http.Request) (*Identity, bool) {
	return f(r)
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok && id != nil
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}

// Username returns the username stored in ctx, or "" for anonymous requests.
func Username(ctx context.Context) string {
	if id, ok := Get(ctx); ok {
		return id.Username
	}
	return ""
}
