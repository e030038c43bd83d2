package controllers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	logger "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Logger"

	"github.com/gin-gonic/gin"
)

// HealthController handles liveness and readiness requests
type HealthController struct {
	db     *sql.DB
	logger *logger.Logger
}

// NewHealthController creates a new health controller
func NewHealthController(db *sql.DB, logger *logger.Logger) *HealthController {
	return &HealthController{
		db:     db,
		logger: logger,
	}
}

// RegisterRoutes registers the health routes with Gin
func (c *HealthController) RegisterRoutes(router *gin.Engine) {
	router.GET("/health/live", c.HealthLive)
	router.GET("/health/ready", c.HealthReady)
}

func (c *HealthController) HealthLive(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (c *HealthController) HealthReady(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := c.db.PingContext(pingCtx); err != nil {
		c.logger.ErrorWithError(err, "Database ping failed")
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"db":     false,
		})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"db":     true,
	})
}
