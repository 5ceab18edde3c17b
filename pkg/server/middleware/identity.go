package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/doodlesbykumbi/inscricao/pkg/identity"
)

type contextKey string

const requestIDKey contextKey = "requestId"

// RequestIDHeader is echoed on every response.
const RequestIDHeader = "X-Request-Id"

// RequestID returns the request id stored by Identity, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Identity returns an HTTP middleware that tags the request with an id and
// stores the identity resolved by provider, if any, in its context.
// Anonymous requests pass through unchanged.
func Identity(provider identity.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get(RequestIDHeader)
			if _, err := uuid.Parse(requestID); err != nil {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)
			ctx := context.WithValue(r.Context(), requestIDKey, requestID)

			if id, ok := provider.Resolve(r); ok {
				ctx = identity.Set(ctx, id.WithRemoteIP(RemoteIP(r)))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RemoteIP returns the client address of r without the port.
func RemoteIP(r *http.Request) net.IP {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

// ClientIP is RemoteIP as text, or "" when the address does not parse.
func ClientIP(r *http.Request) string {
	ip := RemoteIP(r)
	if ip == nil {
		return ""
	}
	return ip.String()
}
