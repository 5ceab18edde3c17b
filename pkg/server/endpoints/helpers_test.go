package endpoints

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/doodlesbykumbi/inscricao/pkg/audit"
	"github.com/doodlesbykumbi/inscricao/pkg/config"
	"github.com/doodlesbykumbi/inscricao/pkg/crypt"
	"github.com/doodlesbykumbi/inscricao/pkg/metrics"
	"github.com/doodlesbykumbi/inscricao/pkg/server"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
	gormstore "github.com/doodlesbykumbi/inscricao/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store/memory"
	"github.com/doodlesbykumbi/inscricao/pkg/session"
)

func testDataKey() []byte {
	dataKey := make([]byte, crypt.KeySize)
	for i := range dataKey {
		dataKey[i] = byte(i)
	}
	return dataKey
}

// fakeWiki answers the OAuth1 handshake without a network.
type fakeWiki struct {
	username string
	err      error
}

func (f *fakeWiki) Begin(_ context.Context) (string, string, string, error) {
	return "rt-1", "rs-1", "https://wiki.test/wiki/Special:OAuth/authorize?oauth_token=rt-1", nil
}

func (f *fakeWiki) Complete(_ context.Context, requestToken, requestSecret, verifier string) (string, error) {
	if requestToken != "rt-1" || requestSecret != "rs-1" || verifier != "v-1" {
		return "", errors.New("bad handshake")
	}
	return f.username, f.err
}

// testServer bundles a server with the pieces tests look at.
type testServer struct {
	*server.Server
	Registrations *memory.RegistrationStore
	AuditLog      *bytes.Buffer
	Wiki          *fakeWiki
}

func seededReference(t *testing.T) *memory.ReferenceStore {
	t.Helper()
	ref := memory.NewReferenceStore()
	require.NoError(t, ref.SeedReference(context.Background(),
		[]store.City{
			{ID: 1, Name: "Salvador", State: "BA"},
			{ID: 2, Name: "Feira de Santana", State: "BA"},
		},
		[]store.School{
			{ID: 10, Name: "Escola A", City: 1},
			{ID: 11, Name: "Escola B", City: 1},
			{ID: 20, Name: "Escola C", City: 2},
		},
	))
	return ref
}

func newTestSessions(t *testing.T) *session.Manager {
	t.Helper()
	sessions, err := session.NewManager(testDataKey(), time.Hour, false)
	require.NoError(t, err)
	return sessions
}

func newTestAuditor() (*audit.Auditor, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := audit.NewLogger()
	logger.SetWriter(&buf)
	return audit.NewAuditor(logger, nil), &buf
}

// newTestServer creates a server over in-memory stores with every endpoint
// registered.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	ref := seededReference(t)
	registrations := memory.NewRegistrationStore()
	auditor, auditLog := newTestAuditor()
	wiki := &fakeWiki{username: "alice"}

	s := server.NewServer(config.Default(), server.Deps{
		ReferenceStore:    ref,
		RegistrationStore: registrations,
		HealthStore:       store.HealthCheckFunc(func(context.Context) error { return nil }),
		Sessions:          newTestSessions(t),
		Wiki:              wiki,
		Auditor:           auditor,
		Metrics:           metrics.New(),
	}, "127.0.0.1", "0")
	RegisterAll(s)

	return &testServer{Server: s, Registrations: registrations, AuditLog: auditLog, Wiki: wiki}
}

// newMockTestServer creates a server whose registrations live in a sqlmock
// backed gorm store, for exercising database failures.
func newMockTestServer(t *testing.T) (*server.Server, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{
			Conn:                 mockDB,
			PreferSimpleProtocol: true,
		}),
		&gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		},
	)
	require.NoError(t, err)

	cipher, err := crypt.NewDeterministic(testDataKey())
	require.NoError(t, err)

	auditor, _ := newTestAuditor()
	s := server.NewServer(config.Default(), server.Deps{
		ReferenceStore:    seededReference(t),
		RegistrationStore: gormstore.NewRegistrationStore(gormDB, cipher),
		HealthStore:       gormstore.NewHealthStore(gormDB),
		Sessions:          newTestSessions(t),
		Wiki:              &fakeWiki{username: "alice"},
		Auditor:           auditor,
		Metrics:           metrics.New(),
	}, "127.0.0.1", "0")
	RegisterAll(s)

	return s, mock
}

// sessionCookie returns a valid session cookie for username.
func sessionCookie(t *testing.T, s *server.Server, username string) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	require.NoError(t, s.Sessions.Issue(w, username))
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatalf("no session cookie issued")
	return nil
}

// do serves a request through the full router. form, when non-nil, is sent
// as an urlencoded body.
func do(s *server.Server, method, target string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}
