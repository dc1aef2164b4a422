// Package api wires the HTTP surface: routing, authentication and
// rate limiting around the read handlers.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/use-agent/readable/api/handler"
	"github.com/use-agent/readable/api/middleware"
	"github.com/use-agent/readable/config"
)

// NewRouter builds the gin engine with all routes and middleware.
//
// Route map:
//
//	GET  /api/v1/health        (open)
//	POST /api/v1/read          (auth + rate limit)
//	POST /api/v1/batch/read    (auth + rate limit)
//	GET  /api/v1/batch/:id     (auth + rate limit)
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")

	// Health stays outside auth so load balancers can probe it.
	v1.GET("/health", handler.Health)

	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	protected.POST("/read", h.PostRead)
	protected.POST("/batch/read", h.PostBatch)
	protected.GET("/batch/:id", h.GetBatch)

	return r
}
