package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/forage/api/handler"
	"github.com/use-agent/forage/api/middleware"
	"github.com/use-agent/forage/authbridge"
	"github.com/use-agent/forage/cache"
	"github.com/use-agent/forage/config"
	"github.com/use-agent/forage/fetch"
	"github.com/use-agent/forage/provider"
	"github.com/use-agent/forage/runtime"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(fetcher *fetch.Fetcher, rt *runtime.Facade, bridge *authbridge.Bridge,
	registry *provider.Registry, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {

	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(rt, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Single-recipe extraction
	protected.POST("/scrape", handler.Scrape(fetcher, rt, bridge, cc))

	// Provider registry
	protected.GET("/providers", handler.Providers(registry))

	// Bulk discovery
	protected.POST("/discovery", handler.PostDiscovery(registry, fetcher, rt, cfg.Discovery))
	protected.GET("/discovery/:id", handler.GetDiscovery())
	protected.POST("/discovery/:id/select", handler.PostSelection())
	protected.POST("/discovery/:id/parse", handler.PostParse())
	protected.DELETE("/discovery/:id", handler.DeleteDiscovery())

	return r
}
