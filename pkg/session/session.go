// Package session keeps the logged-in wiki user and the in-flight OAuth
// handshake in signed cookies.
//
// Both cookies are HS256 JWTs signed with a key derived from the data key.
// The handshake cookie also carries the OAuth request-token secret, which
// is encrypted before it is put into the token.
package session

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/doodlesbykumbi/inscricao/pkg/crypt"
	"github.com/doodlesbykumbi/inscricao/pkg/identity"
)

const (
	// CookieName holds the session token.
	CookieName = "inscricao_session"
	// HandshakeCookieName holds the pending OAuth handshake.
	HandshakeCookieName = "inscricao_handshake"

	// HandshakeTTL bounds the time between /login and /oauth-callback.
	HandshakeTTL = 10 * time.Minute

	issuer            = "inscricao"
	sessionAudience   = "inscricao/session"
	handshakeAudience = "inscricao/handshake"
	handshakeAAD      = "inscricao/handshake/secret"
)

// ErrNoHandshake is returned when the handshake cookie is missing or invalid.
var ErrNoHandshake = errors.New("no pending login")

// Handshake is the state kept between /login and /oauth-callback.
type Handshake struct {
	RequestToken  string
	RequestSecret string
	Next          string
}

type handshakeClaims struct {
	RequestToken  string `json:"rt"`
	RequestSecret string `json:"rs"`
	Next          string `json:"next,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues and reads the session and handshake cookies.
type Manager struct {
	signingKey []byte
	cipher     crypt.Cipher
	ttl        time.Duration
	secure     bool
	now        func() time.Time
}

var _ identity.Provider = (*Manager)(nil)

// NewManager derives the cookie keys from dataKey.
func NewManager(dataKey []byte, ttl time.Duration, secure bool) (*Manager, error) {
	signingKey, err := crypt.DeriveKey(dataKey, "inscricao/session")
	if err != nil {
		return nil, err
	}
	cipher, err := crypt.NewSymmetric(dataKey)
	if err != nil {
		return nil, err
	}
	return &Manager{
		signingKey: signingKey,
		cipher:     cipher,
		ttl:        ttl,
		secure:     secure,
		now:        time.Now,
	}, nil
}

// WithClock replaces the clock used for issuing and validating tokens.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Issue sets the session cookie for username.
func (m *Manager) Issue(w http.ResponseWriter, username string) error {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    issuer,
		Audience:  jwt.ClaimStrings{sessionAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		ID:        uuid.NewString(),
	})
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return fmt.Errorf("signing session: %w", err)
	}

	http.SetCookie(w, m.cookie(CookieName, signed, m.ttl))
	return nil
}

// Resolve implements identity.Provider.
func (m *Manager) Resolve(r *http.Request) (*identity.Identity, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return nil, false
	}

	claims := &jwt.RegisteredClaims{}
	if _, err := m.parse(c.Value, claims, sessionAudience); err != nil {
		return nil, false
	}
	if claims.Subject == "" {
		return nil, false
	}

	id := &identity.Identity{Username: claims.Subject}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, true
}

// Clear removes the session cookie.
func (m *Manager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(CookieName, "", -1))
}

// IssueHandshake stores h in the handshake cookie.
func (m *Manager) IssueHandshake(w http.ResponseWriter, h Handshake) error {
	secret, err := m.cipher.Encrypt([]byte(handshakeAAD), []byte(h.RequestSecret))
	if err != nil {
		return fmt.Errorf("encrypting request secret: %w", err)
	}

	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, handshakeClaims{
		RequestToken:  h.RequestToken,
		RequestSecret: base64.RawURLEncoding.EncodeToString(secret),
		Next:          SafeNext(h.Next),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{handshakeAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(HandshakeTTL)),
		},
	})
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return fmt.Errorf("signing handshake: %w", err)
	}

	http.SetCookie(w, m.cookie(HandshakeCookieName, signed, HandshakeTTL))
	return nil
}

// ReadHandshake returns the pending handshake, or ErrNoHandshake.
func (m *Manager) ReadHandshake(r *http.Request) (*Handshake, error) {
	c, err := r.Cookie(HandshakeCookieName)
	if err != nil || c.Value == "" {
		return nil, ErrNoHandshake
	}

	claims := &handshakeClaims{}
	if _, err := m.parse(c.Value, claims, handshakeAudience); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoHandshake, err)
	}

	packed, err := base64.RawURLEncoding.DecodeString(claims.RequestSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoHandshake, err)
	}
	secret, err := m.cipher.Decrypt([]byte(handshakeAAD), packed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoHandshake, err)
	}

	return &Handshake{
		RequestToken:  claims.RequestToken,
		RequestSecret: string(secret),
		Next:          SafeNext(claims.Next),
	}, nil
}

// ClearHandshake removes the handshake cookie.
func (m *Manager) ClearHandshake(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie(HandshakeCookieName, "", -1))
}

func (m *Manager) parse(raw string, claims jwt.Claims, audience string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return m.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
}

func (m *Manager) cookie(name, value string, ttl time.Duration) *http.Cookie {
	c := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(ttl.Seconds())
	}
	return c
}

// SafeNext returns next if it is a local absolute path, and "/" otherwise.
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return "/"
	}
	return next
}
