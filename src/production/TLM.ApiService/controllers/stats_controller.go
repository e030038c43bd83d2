package controllers

import (
	"net/http"
	"strconv"
	"time"

	stats "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/stats"
	"gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/middleware"
	logger "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Logger"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"

	"github.com/gin-gonic/gin"
)

// StatsController serves windowed aggregate statistics
type StatsController struct {
	statsService   *stats.Service
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewStatsController creates a new statistics controller
func NewStatsController(statsService *stats.Service, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *StatsController {
	return &StatsController{
		statsService:   statsService,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the statistics routes with Gin
func (c *StatsController) RegisterRoutes(router *gin.Engine) {
	router.GET("/sensor-data/statistics/:time_period", c.authMiddleware.Authenticate(), c.GetStatisticsByPeriod)
}

// GetStatisticsByPeriod returns per-equipment statistics for readings in
// the trailing time_period hours. An empty window is a 404, not an empty
// list. With an equipment_id query parameter the report is scoped to that
// one equipment and an empty window zero-fills instead.
func (c *StatsController) GetStatisticsByPeriod(ctx *gin.Context) {
	hours, err := strconv.Atoi(ctx.Param("time_period"))
	if err != nil || hours < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "time_period must be a non-negative integer number of hours"})
		return
	}

	if equipmentID := ctx.Query("equipment_id"); equipmentID != "" {
		st, err := c.statsService.ForEquipment(ctx.Request.Context(), equipmentID, time.Duration(hours)*time.Hour)
		if err != nil {
			c.logger.ErrorWithError(err, "Error computing equipment statistics")
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
			return
		}
		ctx.JSON(http.StatusOK, []stats.EquipmentStatistics{{EquipmentID: equipmentID, Statistics: *st}})
		return
	}

	results, err := c.statsService.ByPeriod(ctx.Request.Context(), hours)
	if err != nil {
		if interfaces.IsNoData(err) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "No data available for the specified time period."})
			return
		}
		c.logger.ErrorWithError(err, "Error computing sensor statistics")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	ctx.JSON(http.StatusOK, results)
}
