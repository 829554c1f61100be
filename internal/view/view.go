// Package view renders the HTML pages.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageHome     = "home"
	PageAbout    = "about"
	PageServices = "services"
	PageExtra    = "extra"
	PageLogin    = "login"
	PageSignup   = "signup"
	PageGenerate = "generate"
	PageNotFound = "not_found"
	PageError    = "error"
)

var pages = []string{
	PageHome, PageAbout, PageServices, PageExtra,
	PageLogin, PageSignup, PageGenerate, PageNotFound, PageError,
}

// Data is the model passed to every page.
type Data struct {
	Title   string
	Email   string // signed-in user, empty when anonymous
	Error   string
	Message string
	Form    map[string]string
	Kinds   []KindLink
	Kind    *KindForm
	Result  string
}

// KindLink lists a content kind in navigation.
type KindLink struct {
	Kind        string
	Title       string
	Description string
}

// KindForm describes the generation form for one kind.
type KindForm struct {
	Kind        string
	Title       string
	Description string
	Fields      []FieldInput
}

// FieldInput is one input of a generation form.
type FieldInput struct {
	Name        string
	Label       string
	Placeholder string
	Value       string
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *slog.Logger
}

// New parses every page template.
func New(logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Renderer{
		pages:  make(map[string]*template.Template, len(pages)),
		logger: logger,
	}
	for _, name := range pages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}

	return r, nil
}

// Render writes page with the given status. Output is buffered so a
// template failure never produces a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data Data) {
	tmpl, ok := r.pages[page]
	if !ok {
		r.logger.Error("unknown page", "page", page)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
