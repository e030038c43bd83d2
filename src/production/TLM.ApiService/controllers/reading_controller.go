package controllers

import (
	"net/http"
	"strconv"
	"time"

	bulk "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/bulk"
	"gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/middleware"
	logger "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Logger"
	tlmmodels "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models"
	api_models "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models/api"
	interfaces "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Interfaces"

	"github.com/gin-gonic/gin"
)

// ReadingController handles sensor reading ingestion and queries
type ReadingController struct {
	readingRepo    interfaces.ReadingRepository
	bulkService    *bulk.Service
	logger         *logger.Logger
	authMiddleware *middleware.AuthMiddleware
}

// NewReadingController creates a new reading controller
func NewReadingController(readingRepo interfaces.ReadingRepository, bulkService *bulk.Service, logger *logger.Logger, authMiddleware *middleware.AuthMiddleware) *ReadingController {
	return &ReadingController{
		readingRepo:    readingRepo,
		bulkService:    bulkService,
		logger:         logger,
		authMiddleware: authMiddleware,
	}
}

// RegisterRoutes registers the reading routes with Gin
func (c *ReadingController) RegisterRoutes(router *gin.Engine) {
	readings := router.Group("/sensor-data", c.authMiddleware.Authenticate())
	{
		readings.GET("/equipment-ids", c.GetEquipmentIDs)
		readings.GET("/all", c.GetAllReadings)
		readings.GET("/:equipment_id", c.GetReadingsByEquipment)
		readings.POST("", c.CreateReading)
		readings.POST("/update-values", c.UpdateValues)
	}
}

// GetEquipmentIDs returns all unique equipment ids with recorded readings
func (c *ReadingController) GetEquipmentIDs(ctx *gin.Context) {
	ids, err := c.readingRepo.GetEquipmentIDs(ctx.Request.Context())
	if err != nil {
		c.logger.ErrorWithError(err, "Error retrieving unique equipment IDs")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if ids == nil {
		ids = []string{}
	}

	ctx.JSON(http.StatusOK, ids)
}

// GetAllReadings returns every recorded reading
func (c *ReadingController) GetAllReadings(ctx *gin.Context) {
	readings, err := c.readingRepo.GetAll(ctx.Request.Context())
	if err != nil {
		c.logger.ErrorWithError(err, "Error retrieving all sensor readings")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if readings == nil {
		readings = []tlmmodels.SensorReading{}
	}

	ctx.JSON(http.StatusOK, readings)
}

// GetReadingsByEquipment returns readings for one equipment id with
// optional start_time/end_time bounds and a row limit
func (c *ReadingController) GetReadingsByEquipment(ctx *gin.Context) {
	params := interfaces.ReadingQueryParams{
		EquipmentID: ctx.Param("equipment_id"),
	}

	if fromStr := ctx.Query("start_time"); fromStr != "" {
		from, err := parseQueryTime(fromStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_time"})
			return
		}
		params.From = &from
	}
	if toStr := ctx.Query("end_time"); toStr != "" {
		to, err := parseQueryTime(toStr)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_time"})
			return
		}
		params.To = &to
	}

	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	params.Limit = limit

	readings, err := c.readingRepo.GetByEquipment(ctx.Request.Context(), params)
	if err != nil {
		c.logger.ErrorWithError(err, "Error retrieving sensor readings")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if readings == nil {
		readings = []tlmmodels.SensorReading{}
	}

	ctx.JSON(http.StatusOK, readings)
}

// CreateReading stores a single new reading
func (c *ReadingController) CreateReading(ctx *gin.Context) {
	var req api_models.CreateReadingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := c.readingRepo.Create(ctx.Request.Context(), &tlmmodels.SensorReading{
		EquipmentID: req.EquipmentID,
		Timestamp:   req.Timestamp,
		Value:       req.Value,
	})
	if err != nil {
		if interfaces.IsDuplicateKey(err) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "reading already exists for this equipment and timestamp"})
			return
		}
		c.logger.ErrorWithError(err, "Error creating sensor reading")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	ctx.JSON(http.StatusCreated, api_models.StatusResponse{
		Status:  "success",
		Message: "Reading stored successfully",
	})
}

// UpdateValues applies a CSV batch of update-or-insert rows. Row-level
// failures are reported in the response but never fail the upload.
func (c *ReadingController) UpdateValues(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.logger.ErrorWithError(err, "Error opening uploaded file")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	defer f.Close()

	result, err := c.bulkService.ProcessCSV(ctx.Request.Context(), f)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Sensor values updated successfully",
		"applied": result.Applied,
		"failed":  result.Failed,
	})
}

// parseQueryTime accepts RFC3339 and the bare ISO form without zone
func parseQueryTime(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", raw)
}
