package endpoints

import (
	"log"
	"net/http"

	"github.com/doodlesbykumbi/inscricao/pkg/server"
	"github.com/doodlesbykumbi/inscricao/pkg/server/store"
)

// StatusResponse represents the response from /status
type StatusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// RegisterStatusEndpoints registers the health and metrics endpoints
func RegisterStatusEndpoints(s *server.Server) {
	// GET /status - database connectivity (no auth required)
	s.Router.HandleFunc("/status", handleStatus(s.HealthStore)).Methods("GET")

	// GET /metrics - Prometheus exposition
	if s.Metrics != nil {
		s.Router.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
	}
}

func handleStatus(healthStore store.HealthStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := healthStore.CheckConnectivity(r.Context()); err != nil {
			log.Printf("health check: %v", err)
			respondWithJSON(w, http.StatusServiceUnavailable, StatusResponse{
				Status: "error",
				Error:  "database connectivity check failed",
			})
			return
		}

		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	}
}
