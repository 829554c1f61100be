package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/copydesk/copydesk/internal/middleware"
)

// RouterConfig collects everything NewRouter wires together.
type RouterConfig struct {
	Logger   *slog.Logger
	Security middleware.SecurityConfig
	Sessions middleware.SessionLoader

	Pages   *Handler
	Health  *HealthHandler
	Auth    *AuthHandler
	Content *ContentHandler
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger, cfg.Pages.InternalError))
	r.Use(middleware.Security(cfg.Security))
	if cfg.Security.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	}

	// Health endpoints
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Session(cfg.Sessions, cfg.Logger))

		// Public pages
		r.Get("/", cfg.Pages.Home)
		r.Get("/home", cfg.Pages.Home)
		r.Get("/about", cfg.Pages.About)
		r.Get("/services", cfg.Pages.Services)
		r.Get("/extra", cfg.Pages.Extra)
		r.Get("/not-found", cfg.Pages.NotFound)

		// Account
		r.Get("/signup", cfg.Auth.SignupForm)
		r.Post("/signup", cfg.Auth.Signup)
		r.Get("/login", cfg.Auth.LoginForm)
		r.Post("/login", cfg.Auth.Login)
		r.Get("/logout", cfg.Auth.Logout)

		// Content generation, one route pair per catalog kind
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession(cfg.Auth.LoginRequired))
			for _, kind := range cfg.Pages.catalog.Kinds() {
				path := "/" + string(kind)
				r.Get(path, cfg.Content.Form(kind))
				r.Post(path, cfg.Content.Generate(kind))
			}
		})

		r.NotFound(cfg.Pages.NotFound)
		r.MethodNotAllowed(cfg.Pages.MethodNotAllowed)
	})

	return r
}
