// Package server provides the HTTP server for inscricao.
//
// The server uses gorilla/mux for routing and wraps the router with an
// access log, a tracing span per request and the identity middleware that
// resolves the session cookie into the request context.
//
// # Server Setup
//
//	srv := server.NewServer(cfg, server.Deps{...}, "0.0.0.0", "8080")
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Config: immutable process configuration
//   - Router: HTTP request router
//   - ReferenceStore, RegistrationStore, HealthStore: storage
//   - Service: the registration service built from the stores
//   - Sessions: session and handshake cookies
//   - Wiki: OAuth1 handshake with the wiki
//   - Auditor, Metrics: observers of every registration change
//
// # Endpoints
//
// Endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
//
// This registers:
//
//   - /login, /oauth-callback, /logout - wiki login
//   - / - home page
//   - /inscricao - registration form
//   - /pegar-escola - schools of a city, as JSON
//   - /atualizar-cadastro, /deletar_cadastro - change or remove a registration
//   - /status, /metrics - health and Prometheus metrics
package server
