package api

import (
	"time"

	"github.com/baonq-me/screenberry/api/handler"
	"github.com/baonq-me/screenberry/api/middleware"
	"github.com/baonq-me/screenberry/cache"
	"github.com/baonq-me/screenberry/config"
	"github.com/baonq-me/screenberry/scan"
	"github.com/gin-gonic/gin"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → Timing
//	Scan:    RateLimit
//
// Health and index stay outside the rate limiter so monitoring probes
// always work.
func NewRouter(co *scan.Coordinator, cc *cache.Cache, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.Timing())

	r.GET("/", handler.Index())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(startTime))

	limited := v1.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit))
	limited.GET("/screenshot/domain/:domain", handler.Scan(co, cc))

	return r
}
