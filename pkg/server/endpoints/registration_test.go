package endpoints

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHome(t *testing.T) {
	ts := newTestServer(t)

	t.Run("anonymous", func(t *testing.T) {
		w := do(ts.Server, "GET", "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "Entrar e inscrever-se")
	})

	t.Run("logged in, not registered", func(t *testing.T) {
		w := do(ts.Server, "GET", "/", nil, sessionCookie(t, ts.Server, "alice"))
		assert.Contains(t, w.Body.String(), "ainda não está inscrito")
	})

	t.Run("registered", func(t *testing.T) {
		_, err := ts.Service.Register(context.Background(), "bob", 10)
		require.NoError(t, err)

		w := do(ts.Server, "GET", "/", nil, sessionCookie(t, ts.Server, "bob"))
		assert.Contains(t, w.Body.String(), "Sua inscrição está confirmada")
	})
}

func TestSubscriptionForm(t *testing.T) {
	ts := newTestServer(t)

	t.Run("anonymous is sent to login", func(t *testing.T) {
		w := do(ts.Server, "GET", "/inscricao", nil)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?next=%2Finscricao", w.Header().Get("Location"))
	})

	t.Run("lists cities and the consent terms", func(t *testing.T) {
		w := do(ts.Server, "GET", "/inscricao", nil, sessionCookie(t, ts.Server, "alice"))
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `<option value="2">Feira de Santana</option>`)
		assert.Contains(t, body, `<option value="1">Salvador</option>`)
		assert.Contains(t, body, "<h2>Termo de consentimento</h2>")
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("registers and returns home", func(t *testing.T) {
		ts := newTestServer(t)
		cookie := sessionCookie(t, ts.Server, "alice")

		w := do(ts.Server, "POST", "/inscricao", url.Values{"school": {"10"}}, cookie)
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))

		reg, err := ts.Service.Lookup(context.Background(), "alice")
		require.NoError(t, err)
		require.NotNil(t, reg)
		assert.Equal(t, int64(10), reg.SchoolID)
		assert.Contains(t, ts.AuditLog.String(), "alice register: registered")
	})

	t.Run("second registration is a no-op", func(t *testing.T) {
		ts := newTestServer(t)
		cookie := sessionCookie(t, ts.Server, "alice")

		do(ts.Server, "POST", "/inscricao", url.Values{"school": {"10"}}, cookie)
		w := do(ts.Server, "POST", "/inscricao", url.Values{"school": {"11"}}, cookie)
		require.Equal(t, http.StatusFound, w.Code)

		reg, err := ts.Service.Lookup(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(10), reg.SchoolID)
		assert.Equal(t, 1, ts.Registrations.Len())
	})

	t.Run("anonymous is sent to login", func(t *testing.T) {
		ts := newTestServer(t)

		w := do(ts.Server, "POST", "/inscricao", url.Values{"school": {"10"}})
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login?next=%2Finscricao", w.Header().Get("Location"))
		assert.Equal(t, 0, ts.Registrations.Len())
	})

	t.Run("unknown or malformed school", func(t *testing.T) {
		ts := newTestServer(t)
		cookie := sessionCookie(t, ts.Server, "alice")

		for _, school := range []string{"999", "abc", ""} {
			w := do(ts.Server, "POST", "/inscricao", url.Values{"school": {school}}, cookie)
			assert.Equal(t, http.StatusBadRequest, w.Code, "school %q", school)
		}
		assert.Equal(t, 0, ts.Registrations.Len())
	})
}

func TestSubscribePersistenceError(t *testing.T) {
	s, mock := newMockTestServer(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE name = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "school", "date_consent"}))
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "users"`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	w := do(s, "POST", "/inscricao", url.Values{"school": {"10"}}, sessionCookie(t, s, "alice"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Aconteceu um erro!<br>Tente novamente")
	assert.Contains(t, body, "wikilovesbahia@wmnobrasil.org")
	assert.Contains(t, body, "disk full")
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.PersistenceErrors.WithLabelValues("register")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateForm(t *testing.T) {
	ts := newTestServer(t)

	t.Run("anonymous is sent to login", func(t *testing.T) {
		w := do(ts.Server, "GET", "/atualizar-cadastro", nil)
		assert.Equal(t, "/login?next=%2Fatualizar-cadastro", w.Header().Get("Location"))
	})

	t.Run("unregistered is sent to the subscription form", func(t *testing.T) {
		w := do(ts.Server, "GET", "/atualizar-cadastro", nil, sessionCookie(t, ts.Server, "carol"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/inscricao", w.Header().Get("Location"))
	})

	t.Run("pre-fills the current city and school", func(t *testing.T) {
		_, err := ts.Service.Register(context.Background(), "alice", 20)
		require.NoError(t, err)

		w := do(ts.Server, "GET", "/atualizar-cadastro", nil, sessionCookie(t, ts.Server, "alice"))
		require.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, `<option value="2" selected>Feira de Santana</option>`)
		assert.Contains(t, body, `<option value="1">Salvador</option>`)
		assert.Contains(t, body, `data-selected="20"`)
		assert.Contains(t, body, "<strong>Escola C</strong>")
	})
}

func TestUpdate(t *testing.T) {
	t.Run("moves the registration", func(t *testing.T) {
		ts := newTestServer(t)
		_, err := ts.Service.Register(context.Background(), "alice", 10)
		require.NoError(t, err)
		before, _ := ts.Service.Lookup(context.Background(), "alice")

		w := do(ts.Server, "POST", "/atualizar-cadastro", url.Values{"school": {"20"}}, sessionCookie(t, ts.Server, "alice"))
		require.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/atualizar-cadastro", w.Header().Get("Location"))

		after, err := ts.Service.Lookup(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(20), after.SchoolID)
		assert.True(t, before.DateConsent.Equal(after.DateConsent))
	})

	t.Run("unregistered returns home", func(t *testing.T) {
		ts := newTestServer(t)

		w := do(ts.Server, "POST", "/atualizar-cadastro", url.Values{"school": {"20"}}, sessionCookie(t, ts.Server, "alice"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("unregistered with a malformed school returns home", func(t *testing.T) {
		ts := newTestServer(t)

		w := do(ts.Server, "POST", "/atualizar-cadastro", url.Values{"school": {"abc"}}, sessionCookie(t, ts.Server, "bob"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("registered with a malformed school is rejected", func(t *testing.T) {
		ts := newTestServer(t)
		_, err := ts.Service.Register(context.Background(), "alice", 10)
		require.NoError(t, err)

		w := do(ts.Server, "POST", "/atualizar-cadastro", url.Values{"school": {"abc"}}, sessionCookie(t, ts.Server, "alice"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		after, err := ts.Service.Lookup(context.Background(), "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(10), after.SchoolID)
	})

	t.Run("anonymous is sent to login", func(t *testing.T) {
		ts := newTestServer(t)

		w := do(ts.Server, "POST", "/atualizar-cadastro", url.Values{"school": {"20"}})
		assert.Equal(t, "/login?next=%2Fatualizar-cadastro", w.Header().Get("Location"))
	})
}

func TestDelete(t *testing.T) {
	t.Run("unchecked box goes back to the update form", func(t *testing.T) {
		ts := newTestServer(t)
		_, err := ts.Service.Register(context.Background(), "alice", 10)
		require.NoError(t, err)

		w := do(ts.Server, "POST", "/deletar_cadastro", url.Values{}, sessionCookie(t, ts.Server, "alice"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/atualizar-cadastro", w.Header().Get("Location"))
		assert.Equal(t, 1, ts.Registrations.Len())
	})

	t.Run("checked box removes the registration", func(t *testing.T) {
		ts := newTestServer(t)
		_, err := ts.Service.Register(context.Background(), "alice", 10)
		require.NoError(t, err)

		w := do(ts.Server, "POST", "/deletar_cadastro", url.Values{"delete": {"1"}}, sessionCookie(t, ts.Server, "alice"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
		assert.Equal(t, 0, ts.Registrations.Len())
	})

	t.Run("nothing to delete still returns home", func(t *testing.T) {
		ts := newTestServer(t)

		w := do(ts.Server, "POST", "/deletar_cadastro", url.Values{"delete": {"1"}}, sessionCookie(t, ts.Server, "alice"))
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("anonymous is sent to login", func(t *testing.T) {
		ts := newTestServer(t)

		w := do(ts.Server, "POST", "/deletar_cadastro", url.Values{"delete": {"1"}})
		assert.Equal(t, "/login?next=%2Fatualizar-cadastro", w.Header().Get("Location"))
	})
}
