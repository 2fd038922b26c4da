package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/nanostudio/server/cmd/server/docs" // swagger docs
	"github.com/nanostudio/server/internal/infra/config"
	"github.com/nanostudio/server/internal/model"
	"github.com/nanostudio/server/internal/utils/middleware"
)

// App wires configuration, dependencies and the HTTP router together.
type App struct {
	config  *config.Config
	deps    *Dependencies
	cleanup func()
	router  *gin.Engine
	logger  *zap.Logger
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize dependencies: %w", err)
	}

	app := &App{
		config:  cfg,
		deps:    deps,
		cleanup: cleanup,
		logger:  deps.Logger,
	}
	app.router = app.setupRouter()
	app.registerRoutes()

	app.logger.Info("Application initialized",
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("panel_backend", cfg.Panel.Backend),
		zap.Bool("redis", deps.Redis != nil),
		zap.Bool("breaker", cfg.Breaker.Enabled),
		zap.Bool("rate_limit", deps.RateLimiter != nil),
	)
	return app, nil
}

// setupRouter creates the engine with global middleware and operational endpoints.
func (a *App) setupRouter() *gin.Engine {
	switch a.config.Server.Mode {
	case gin.DebugMode, gin.TestMode:
		gin.SetMode(a.config.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.deps.Metrics))
	r.Use(middleware.CORS(middleware.CORSConfig{AllowOrigins: a.config.CORS.AllowOrigins}))
	r.Use(middleware.Credential(model.Credential(a.config.Gemini.APIKey)))

	r.GET("/healthz", a.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.deps.Registry, promhttp.HandlerOpts{})))

	if a.config.Server.EnableSwagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
	}

	return r
}

// registerRoutes registers all API routes.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/v1")

	var generate []gin.HandlerFunc
	if a.deps.RateLimiter != nil {
		generate = append(generate, middleware.RateLimit(a.deps.RateLimiter, middleware.RateLimitConfig{
			Limit:   a.config.RateLimit.Limit,
			Window:  a.config.RateLimit.Window,
			KeyFunc: middleware.KeyByCredential,
		}))
	}

	var submit []gin.HandlerFunc
	if a.deps.ResponseCache != nil {
		submit = append(submit, middleware.Idempotency(a.deps.ResponseCache, middleware.IdempotencyConfig{
			TTL: a.config.Idempotency.TTL,
		}))
	}

	a.deps.MediaHandler.RegisterRoutes(v1, generate, submit)
}

// health reports liveness and, when configured, Redis reachability.
func (a *App) health(c *gin.Context) {
	status := gin.H{"status": "ok"}
	if a.deps.Redis == nil {
		c.JSON(http.StatusOK, status)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := a.deps.Redis.Ping(ctx).Err(); err != nil {
		status["status"] = "degraded"
		status["redis"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}
	status["redis"] = "ok"
	c.JSON(http.StatusOK, status)
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop stops background work and releases resources.
func (a *App) Stop() {
	if a.cleanup != nil {
		a.cleanup()
	}

	// Sync zap logger
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}
