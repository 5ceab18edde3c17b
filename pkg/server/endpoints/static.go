package endpoints

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/doodlesbykumbi/inscricao/pkg/server"
)

//go:embed static/css static/js
var staticFiles embed.FS

// RegisterStaticFiles registers static file serving for CSS and scripts.
// Static files are embedded in the binary.
func RegisterStaticFiles(srv *server.Server) {
	// Create sub-filesystem rooted at "static"
	staticFS, _ := fs.Sub(staticFiles, "static")

	// Serve /css/* from embedded static/css/
	cssFS, _ := fs.Sub(staticFS, "css")
	srv.Router.PathPrefix("/css/").Handler(
		http.StripPrefix("/css/", http.FileServer(http.FS(cssFS))),
	)

	// Serve /js/* from embedded static/js/
	jsFS, _ := fs.Sub(staticFS, "js")
	srv.Router.PathPrefix("/js/").Handler(
		http.StripPrefix("/js/", http.FileServer(http.FS(jsFS))),
	)

	// Serve favicon.ico (return 404 if not present)
	srv.Router.HandleFunc("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
}
