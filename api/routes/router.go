package routes

import (
	"context"
	"net/http"
	"time"

	_ "weddingrsvp/api/docs"
	"weddingrsvp/internal/events"
	"weddingrsvp/internal/rsvp"
	"weddingrsvp/internal/shared/config"
	"weddingrsvp/pkg/logger"
	"weddingrsvp/pkg/ratelimit"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const serviceName = "weddingrsvp"

// HealthChecker is anything /health should probe, e.g. the Redis connection
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies are the wired components the routes are built from
type Dependencies struct {
	Events  events.Repository
	RSVP    rsvp.Service
	Limiter ratelimit.Limiter // nil disables rate limiting
	Health  HealthChecker     // nil means nothing to probe
	Logger  *logger.Logger
}

// Router holds all route dependencies
type Router struct {
	config *config.Config
	deps   Dependencies
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, deps Dependencies) *Router {
	if deps.Logger == nil {
		deps.Logger = logger.GetDefault()
	}
	return &Router{
		config: cfg,
		deps:   deps,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Rate limiting covers every route registered below
	if r.deps.Limiter != nil {
		engine.Use(ratelimit.Middleware(r.deps.Limiter, r.deps.Logger))
	}

	r.setupHealthRoutes(engine)

	if !r.config.IsProduction() {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	rsvpController := rsvp.NewController(r.deps.RSVP, r.deps.Logger)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		events.SetupEventRoutes(api, events.NewController(r.deps.Events))
		rsvp.SetupRSVPRoutes(api, rsvpController)
	}

	// The site posts to /api/rsvp; keep it working alongside the versioned path
	legacy := engine.Group(r.config.APIPrefix)
	rsvp.SetupRSVPRoutes(legacy, rsvpController)
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if r.deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := r.deps.Health.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":    "unhealthy",
					"error":     err.Error(),
					"timestamp": time.Now(),
					"service":   serviceName,
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"events":      len(r.deps.Events.FindAll()),
			"rate_limit":  r.deps.Limiter != nil,
			"timestamp":   time.Now(),
		})
	})
}
