package endpoints

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"

	"github.com/yuin/goldmark"

	"github.com/doodlesbykumbi/inscricao/pkg/registration"
)

//go:embed templates/*.html templates/termos.md
var templateFiles embed.FS

var pages = template.Must(template.ParseFS(templateFiles, "templates/*.html"))

// consentTerms is the Markdown consent text rendered once at startup.
var consentTerms = mustRenderMarkdown("templates/termos.md")

func mustRenderMarkdown(name string) template.HTML {
	source, err := templateFiles.ReadFile(name)
	if err != nil {
		panic(err)
	}
	var buf bytes.Buffer
	if err := goldmark.Convert(source, &buf); err != nil {
		panic(err)
	}
	return template.HTML(buf.String())
}

// cityOption is one entry of the city select.
type cityOption struct {
	ID       int64
	Name     string
	Selected bool
}

// schoolOption is one entry of the /pegar-escola response.
type schoolOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type pageData struct {
	Title      string
	Path       string
	Username   string
	Registered bool

	Terms          template.HTML
	Cities         []cityOption
	Profile        *registration.Profile
	SelectedSchool int64
}

// render executes the named page into a buffer so a template failure can
// still produce a clean 500.
func render(w http.ResponseWriter, name string, data pageData) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("rendering %s: %v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
