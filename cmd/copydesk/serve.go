package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/copydesk/copydesk/internal/auth"
	"github.com/copydesk/copydesk/internal/cache"
	"github.com/copydesk/copydesk/internal/completion"
	"github.com/copydesk/copydesk/internal/config"
	"github.com/copydesk/copydesk/internal/handler"
	"github.com/copydesk/copydesk/internal/middleware"
	"github.com/copydesk/copydesk/internal/prompt"
	"github.com/copydesk/copydesk/internal/repository"
	"github.com/copydesk/copydesk/internal/server"
	"github.com/copydesk/copydesk/internal/service"
	"github.com/copydesk/copydesk/internal/session"
	"github.com/copydesk/copydesk/internal/view"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Start the web server. Configuration is read from the environment;
OPENAI_API_KEY is required.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger := initLogger(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		return err
	}

	srv := server.New(a.router, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown("database", func(context.Context) error { return a.store.Close() })
	if a.redis != nil {
		srv.OnShutdown("redis", func(context.Context) error { return a.redis.Close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store", storeKind(cfg),
		"database_url", redactURL(cfg.DatabaseURL),
		"session_store", a.sessionStore,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}

// storeKind names the credential store backend selected by DATABASE_URL.
func storeKind(cfg *config.Config) string {
	if cfg.UsesPostgres() {
		return "postgres"
	}
	return "sqlite"
}

// app holds the wired request path and the resources it owns.
type app struct {
	router       http.Handler
	store        repository.Store
	redis        *cache.Cache
	sessionStore string
}

// newApp opens every dependency named by cfg and wires the router. Anything
// opened is closed again if a later step fails.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *app, err error) {
	a := &app{sessionStore: "memory"}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	a.store, err = repository.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("database_url", redactURL(cfg.DatabaseURL)).
			Errorf("%s", sanitizeError(err, cfg.DatabaseURL))
	}
	logger.Info("connected to credential store", "store", storeKind(cfg))

	var sessions session.Store = session.NewMemoryStore()
	if cfg.RedisURL != "" {
		a.redis, err = cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, oops.Code("REDIS_CONNECT_FAILED").
				With("redis_url", redactURL(cfg.RedisURL)).
				Errorf("%s", sanitizeError(err, cfg.RedisURL))
		}
		sessions = a.redis
		a.sessionStore = "redis"
		logger.Info("connected to Redis")
	}

	secret, generated, err := auth.SessionSecret(cfg.SessionSecret)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").Wrap(err)
	}
	if generated {
		logger.Warn("SESSION_SECRET not set, using a random key; sessions end on restart")
	}

	manager := session.NewManager(sessions, session.Options{
		Secret:       secret,
		TTL:          cfg.SessionTTL,
		CookieName:   cfg.SessionCookieName,
		SecureCookie: !cfg.IsDevelopment(),
	})

	catalog, err := prompt.Load(cfg.PromptCatalog)
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("prompt_catalog", cfg.PromptCatalog).Wrap(err)
	}

	client, err := completion.New(completion.Config{
		APIKey:     cfg.OpenAIAPIKey,
		BaseURL:    cfg.OpenAIBaseURL,
		Model:      cfg.OpenAIModel,
		Timeout:    cfg.GenerationTimeout,
		MaxRetries: cfg.GenerationMaxRetries,
		RetryBase:  cfg.GenerationRetryBase,
	}, completion.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	authService, err := service.NewAuthService(a.store, auth.NewArgon2Hasher(auth.DefaultArgon2Params()), manager, logger)
	if err != nil {
		return nil, err
	}
	contentService := service.NewContentService(catalog, client, logger)

	views, err := view.New(logger)
	if err != nil {
		return nil, err
	}

	// A nil *cache.Cache inside the interface would still be called.
	var redisHealth handler.HealthChecker
	if a.redis != nil {
		redisHealth = a.redis
	}

	pages := handler.New(views, catalog, logger)
	authHandler := handler.NewAuthHandler(pages, authService, manager, logger)

	a.router = handler.NewRouter(handler.RouterConfig{
		Logger: logger,
		Security: middleware.SecurityConfig{
			IsDevelopment:      cfg.IsDevelopment(),
			MaxRequestBodySize: cfg.MaxRequestBodySize,
		},
		Sessions: manager,
		Pages:    pages,
		Health:   handler.NewHealthHandler(a.store, redisHealth),
		Auth:     authHandler,
		Content:  handler.NewContentHandler(pages, contentService, authHandler.LoginRequired, logger),
	})

	return a, nil
}

func (a *app) close() {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if err := errors.Join(errs...); err != nil {
		slog.Warn("failed to release resources", "error", err)
	}
}
