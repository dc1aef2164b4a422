package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/readable/models"
)

// Version is set at build time via -ldflags "-X ...handler.Version=v1.2.3".
var Version = "dev"

var startTime = time.Now()

// Health handles GET /api/v1/health. Unauthenticated.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Uptime:  time.Since(startTime).Round(time.Second).String(),
		Version: Version,
	})
}
