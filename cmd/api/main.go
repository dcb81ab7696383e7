// Package main is the entrypoint for the Shoply API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/shoply/shoply/internal/auth"
	"github.com/shoply/shoply/internal/cache"
	"github.com/shoply/shoply/internal/config"
	"github.com/shoply/shoply/internal/handler"
	"github.com/shoply/shoply/internal/metrics"
	"github.com/shoply/shoply/internal/middleware"
	"github.com/shoply/shoply/internal/repository"
	"github.com/shoply/shoply/internal/server"
	"github.com/shoply/shoply/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Token issuer/verifier. The secret comes from configuration only;
	// config.Load already refused to start without one.
	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		logger.Error("failed to initialize token signer", "error", err)
		os.Exit(1)
	}

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL, cache.Options{
		PoolSize:     cfg.RedisPoolSize,
		MinIdleConns: cfg.RedisMinIdleConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	// Initialize services and handlers
	recorder := metrics.NewInMemory()
	authService := service.NewAuthService(repo, tokens, logger, recorder)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	authHandler := handler.NewAuthHandler(logger, authService, repo)
	userHandler := handler.NewUserHandler(logger, repo)
	productHandler := handler.NewProductHandler(logger, repo, cacheClient, recorder)
	cartHandler := handler.NewCartHandler(logger, repo)
	metricsHandler := handler.NewMetricsHandler(recorder)

	// Setup router
	r := setupRouter(routerDeps{
		base:     h,
		health:   healthHandler,
		auth:     authHandler,
		users:    userHandler,
		products: productHandler,
		cart:     cartHandler,
		debug:    metricsHandler,
		tokens:   tokens,
		cache:    cacheClient,
		metrics:  recorder,
		cfg:      cfg,
		logger:   logger,
	})

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	// LIFO: Redis closes before the database pool.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"token_ttl", cfg.TokenTTL.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// routerDeps bundles everything setupRouter wires together.
type routerDeps struct {
	base     *handler.Handler
	health   *handler.HealthHandler
	auth     *handler.AuthHandler
	users    *handler.UserHandler
	products *handler.ProductHandler
	cart     *handler.CartHandler
	debug    *handler.MetricsHandler
	tokens   *auth.Tokens
	cache    *cache.Cache
	metrics  metrics.Recorder
	cfg      *config.Config
	logger   *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      deps.cfg.IsDevelopment(),
		MaxRequestBodySize: deps.cfg.MaxRequestBodySize,
	}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = deps.cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	authCfg := middleware.AuthConfig{
		Logger:  deps.logger,
		Tokens:  deps.tokens,
		Metrics: deps.metrics,
	}
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Limiter: deps.cache,
		Enabled: deps.cfg.RateLimitAuthEnabled,
		RPS:     deps.cfg.RateLimitAuthRPS,
		Burst:   deps.cfg.RateLimitAuthBurst,
	}

	// Credential endpoints, rate limited per client IP
	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.RateLimitAuth(rateLimitCfg)).Post("/register", deps.auth.Register)
		r.With(middleware.RateLimitAuth(rateLimitCfg)).Post("/login", deps.auth.Login)
		r.With(middleware.RequireAuth(authCfg)).Get("/role", deps.auth.Role)
	})

	// Operational counters (admin only)
	r.Route("/debug", func(r chi.Router) {
		r.Use(middleware.RequireAuth(authCfg))
		r.Use(middleware.RequireAdmin(deps.logger))
		r.Get("/metrics", deps.debug.Metrics)
	})

	// User administration (admin only)
	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth(authCfg))
		r.Use(middleware.RequireAdmin(deps.logger))
		r.Get("/", deps.users.List)
		r.Delete("/{id}", deps.users.Delete)
	})

	r.Route("/api", func(r chi.Router) {
		// Catalog: public reads, admin-only writes
		r.Route("/products", func(r chi.Router) {
			r.Get("/", deps.products.List)
			r.Get("/{id}", deps.products.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(authCfg))
				r.Use(middleware.RequireAdmin(deps.logger))
				r.Post("/", deps.products.Create)
				r.Put("/{id}", deps.products.Update)
				r.Delete("/{id}", deps.products.Delete)
			})
		})

		// Cart: any authenticated account, always scoped to the caller
		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.RequireAuth(authCfg))
			r.Post("/", deps.cart.Add)
			r.Get("/", deps.cart.List)
			r.Delete("/{id}", deps.cart.Remove)
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
