// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/copydesk/copydesk/internal/auth"
	"github.com/copydesk/copydesk/internal/prompt"
	"github.com/copydesk/copydesk/internal/view"
)

// Handler serves the public pages and the shared error pages.
type Handler struct {
	views   *view.Renderer
	catalog *prompt.Catalog
	logger  *slog.Logger
}

// New creates a new Handler instance.
func New(views *view.Renderer, catalog *prompt.Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		views:   views,
		catalog: catalog,
		logger:  logger,
	}
}

// page returns the base view data for r.
func (h *Handler) page(r *http.Request, title string) view.Data {
	data := view.Data{
		Title: title,
		Email: auth.EmailFromContext(r.Context()),
	}
	for _, kind := range h.catalog.Kinds() {
		def, err := h.catalog.Lookup(kind)
		if err != nil {
			continue
		}
		data.Kinds = append(data.Kinds, view.KindLink{
			Kind:        string(def.Kind),
			Title:       def.Title,
			Description: def.Description,
		})
	}
	return data
}

// Home renders the landing page.
// GET / and GET /home
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageHome, h.page(r, ""))
}

// About renders the about page.
// GET /about
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageAbout, h.page(r, "About"))
}

// Services renders the list of content kinds.
// GET /services
func (h *Handler) Services(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageServices, h.page(r, "Services"))
}

// Extra renders the writing tips page.
// GET /extra
func (h *Handler) Extra(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusOK, view.PageExtra, h.page(r, "Tips"))
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusNotFound, view.PageNotFound, h.page(r, "Not found"))
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	data := h.page(r, "Method not allowed")
	data.Error = "That action is not supported on this page."
	h.views.Render(w, http.StatusMethodNotAllowed, view.PageError, data)
}

// InternalError renders the generic failure page.
func (h *Handler) InternalError(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, http.StatusInternalServerError, view.PageError, h.page(r, "Error"))
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
