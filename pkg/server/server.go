package server

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/trace"

	"github.com/doodlesbykumbi/inscricao/pkg/audit"
	"github.com/doodlesbykumbi/inscricao/pkg/config"
	"github.com/doodlesbykumbi/inscricao/pkg/metrics"
	"github.com/doodlesbykumbi/inscricao/pkg/registration"
	"github.com/doodlesbykumbi/inscricao/pkg/server/middleware"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
	"github.com/doodlesbykumbi/inscricao/pkg/session"
	"github.com/doodlesbykumbi/inscricao/pkg/tracing"
)

// Handshaker runs the OAuth1 dance with the identity provider.
// *wiki.Client implements it.
type Handshaker interface {
	Begin(ctx context.Context) (requestToken, requestSecret, authorizeURL string, err error)
	Complete(ctx context.Context, requestToken, requestSecret, verifier string) (string, error)
}

// Deps are the collaborators handed to NewServer.
type Deps struct {
	ReferenceStore    store.ReferenceStore
	RegistrationStore store.RegistrationStore
	HealthStore       store.HealthStore
	Sessions          *session.Manager
	Wiki              Handshaker
	Auditor           *audit.Auditor
	Metrics           *metrics.Metrics
	Tracer            trace.Tracer
}

type Server struct {
	Config *config.Config
	Router *mux.Router

	ReferenceStore    store.ReferenceStore
	RegistrationStore store.RegistrationStore
	HealthStore       store.HealthStore

	Service  *registration.Service
	Sessions *session.Manager
	Wiki     Handshaker
	Auditor  *audit.Auditor
	Metrics  *metrics.Metrics

	srv *http.Server
}

func NewServer(
	cfg *config.Config,
	deps Deps,
	host string,
	port string,
) *Server {
	opts := []registration.Option{}
	if deps.Tracer != nil {
		opts = append(opts, registration.WithTracer(deps.Tracer))
	}
	if deps.Auditor != nil {
		opts = append(opts, registration.WithObserver(deps.Auditor))
	}
	if deps.Metrics != nil {
		opts = append(opts, registration.WithObserver(deps.Metrics))
	}
	service := registration.NewService(deps.ReferenceStore, deps.RegistrationStore, opts...)

	router := mux.NewRouter()
	router.Use(tracing.Middleware(deps.Tracer))
	if deps.Sessions != nil {
		router.Use(middleware.Identity(deps.Sessions))
	}

	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Config:            cfg,
		Router:            router,
		ReferenceStore:    deps.ReferenceStore,
		RegistrationStore: deps.RegistrationStore,
		HealthStore:       deps.HealthStore,
		Service:           service,
		Sessions:          deps.Sessions,
		Wiki:              deps.Wiki,
		Auditor:           deps.Auditor,
		Metrics:           deps.Metrics,
		srv:               srv,
	}
}

// Handler returns the full handler chain, access log included.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
