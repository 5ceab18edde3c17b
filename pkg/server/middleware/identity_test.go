package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/inscricao/pkg/identity"
)

func TestIdentityMiddleware(t *testing.T) {
	provider := identity.ProviderFunc(func(r *http.Request) (*identity.Identity, bool) {
		if c, err := r.Cookie("user"); err == nil {
			return &identity.Identity{Username: c.Value}, true
		}
		return nil, false
	})

	var seenUser, seenRequestID string
	handler := Identity(provider)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser = identity.Username(r.Context())
		seenRequestID = RequestID(r.Context())
		if id, ok := identity.Get(r.Context()); ok {
			assert.Equal(t, "192.0.2.1", id.RemoteIP.String())
		}
	}))

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "", seenUser)
		_, err := uuid.Parse(seenRequestID)
		require.NoError(t, err)
		assert.Equal(t, seenRequestID, w.Header().Get(RequestIDHeader))
	})

	t.Run("logged in", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(&http.Cookie{Name: "user", Value: "alice"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, "alice", seenUser)
	})

	t.Run("keeps a valid incoming request id", func(t *testing.T) {
		incoming := uuid.NewString()
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, incoming)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.Equal(t, incoming, seenRequestID)
	})

	t.Run("replaces a garbage request id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(RequestIDHeader, "<script>")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		assert.NotEqual(t, "<script>", seenRequestID)
	})
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", ClientIP(req))

	req.RemoteAddr = "pipe"
	assert.Nil(t, RemoteIP(req))
	assert.Equal(t, "", ClientIP(req))
}
