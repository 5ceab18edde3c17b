package endpoints

import (
	"github.com/doodlesbykumbi/inscricao/pkg/server"
)

// RegisterAll registers all endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterAuthEndpoints(srv)
	RegisterRegistrationEndpoints(srv)
	RegisterSchoolLookupEndpoint(srv)
	RegisterStatusEndpoints(srv)

	// Static files
	RegisterStaticFiles(srv)
}
