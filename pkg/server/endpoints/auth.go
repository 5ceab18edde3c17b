package endpoints

import (
	"errors"
	"log"
	"net/http"

	"github.com/doodlesbykumbi/inscricao/pkg/audit"
	"github.com/doodlesbykumbi/inscricao/pkg/identity"
	"github.com/doodlesbykumbi/inscricao/pkg/metrics"
	"github.com/doodlesbykumbi/inscricao/pkg/server"
	"github.com/doodlesbykumbi/inscricao/pkg/server/middleware"
	"github.com/doodlesbykumbi/inscricao/pkg/session"
	"github.com/doodlesbykumbi/inscricao/pkg/wiki"
)

// RegisterAuthEndpoints registers the wiki login endpoints
func RegisterAuthEndpoints(s *server.Server) {
	s.Router.HandleFunc("/login", handleLogin(s.Wiki, s.Sessions)).Methods("GET")
	s.Router.HandleFunc("/oauth-callback", handleOAuthCallback(s.Wiki, s.Sessions, s.Auditor, s.Metrics)).Methods("GET")
	s.Router.HandleFunc("/logout", handleLogout(s.Sessions, s.Auditor)).Methods("GET")
}

func handleLogin(hs server.Handshaker, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestToken, requestSecret, authorizeURL, err := hs.Begin(r.Context())
		if err != nil {
			log.Printf("starting wiki login: %v", err)
			http.Error(w, "Não foi possível contactar a Wikiversidade", http.StatusBadGateway)
			return
		}

		err = sessions.IssueHandshake(w, session.Handshake{
			RequestToken:  requestToken,
			RequestSecret: requestSecret,
			Next:          session.SafeNext(r.URL.Query().Get("next")),
		})
		if err != nil {
			log.Printf("storing handshake: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		http.Redirect(w, r, authorizeURL, http.StatusFound)
	}
}

func handleOAuthCallback(hs server.Handshaker, sessions *session.Manager, auditor *audit.Auditor, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := middleware.ClientIP(r)

		fail := func(code int, message string, err error) {
			auditor.Log(r.Context(), audit.LoginEvent{
				ClientIP:     clientIP,
				ErrorMessage: err.Error(),
			})
			m.IncrementLogins(false)
			http.Error(w, message, code)
		}

		pending, err := sessions.ReadHandshake(r)
		if err != nil {
			fail(http.StatusBadRequest, "Login expirado, tente novamente", err)
			return
		}

		requestToken, verifier, err := wiki.ParseCallback(r)
		if err != nil {
			fail(http.StatusBadRequest, "Resposta inválida da Wikiversidade", err)
			return
		}
		if requestToken != pending.RequestToken {
			fail(http.StatusBadRequest, "Resposta inválida da Wikiversidade", errors.New("request token mismatch"))
			return
		}

		username, err := hs.Complete(r.Context(), pending.RequestToken, pending.RequestSecret, verifier)
		if err != nil {
			if errors.Is(err, wiki.ErrAnonymous) {
				fail(http.StatusForbidden, "A Wikiversidade não identificou o usuário", err)
				return
			}
			log.Printf("completing wiki login: %v", err)
			fail(http.StatusBadGateway, "Não foi possível contactar a Wikiversidade", err)
			return
		}

		sessions.ClearHandshake(w)
		if err := sessions.Issue(w, username); err != nil {
			log.Printf("issuing session: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		auditor.Log(r.Context(), audit.LoginEvent{
			Username: username,
			ClientIP: clientIP,
			Success:  true,
		})
		m.IncrementLogins(true)

		http.Redirect(w, r, session.SafeNext(pending.Next), http.StatusFound)
	}
}

func handleLogout(sessions *session.Manager, auditor *audit.Auditor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id, ok := identity.Get(r.Context()); ok {
			auditor.Log(r.Context(), audit.LogoutEvent{
				Username: id.Username,
				ClientIP: middleware.ClientIP(r),
			})
		}
		sessions.Clear(w)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}
