package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/controllers"
	container "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Container"
	implementation "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Repository/Implementation"

	authService "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/auth"
	bulk "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/bulk"
	jwt "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/jwt"
	stats "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/stats"
	authMiddleware "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/middleware"
	api_models "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models/api"
)

func main() {
	ctr, err := container.NewContainer()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize container: %v", err))
	}
	defer ctr.Shutdown(context.Background())

	logger := ctr.GetLogger()
	logger.Info("Starting Telemetry API Service")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ctr.InitializeDatabase(ctx); err != nil {
		logger.FatalWithError(err, "Failed to initialize database")
	}

	db, err := ctr.GetDatabase(ctx)
	if err != nil {
		logger.FatalWithError(err, "Failed to get database connection")
	}

	config := ctr.GetConfig()

	// Create repositories
	readingRepo := implementation.NewSQLReadingRepository(db, config.Database.Driver)
	userRepo := implementation.NewSQLUserRepository(db, config.Database.Driver)

	// Seed the reference dataset on first start
	if config.Seed.Enabled {
		if err := implementation.SeedSampleData(ctx, readingRepo, &config.Seed, logger); err != nil {
			logger.FatalWithError(err, "Failed to seed sample data")
		}
	}

	// Initialize JWT service for token issuance and validation
	jwtConfig := api_models.Config{
		SecretKey:           config.Auth.JWTSecretKey,
		AccessTokenDuration: config.Auth.AccessTokenDuration,
		LoginTokenDuration:  config.Auth.LoginTokenDuration,
		Issuer:              config.Auth.JWTIssuer,
	}
	jwtService := jwt.NewService(jwtConfig)

	authMiddlewareInstance := authMiddleware.NewAuthMiddleware(jwtService)

	// Domain services
	authServiceInstance := authService.NewAuthService(userRepo, jwtService, config.Auth.PasswordMinLength)
	statsService := stats.NewService(readingRepo)
	bulkService := bulk.NewService(readingRepo, logger)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Configure CORS from config
	corsConfig := cors.Config{
		AllowOrigins:     config.CORS.AllowedOrigins,
		AllowMethods:     config.CORS.AllowedMethods,
		AllowHeaders:     config.CORS.AllowedHeaders,
		ExposeHeaders:    config.CORS.ExposedHeaders,
		AllowCredentials: config.CORS.AllowCredentials,
		MaxAge:           time.Duration(config.CORS.MaxAge) * time.Second,
	}
	router.Use(cors.New(corsConfig))

	// Create controllers and register routes
	authController := controllers.NewAuthController(authServiceInstance, logger)
	readingController := controllers.NewReadingController(readingRepo, bulkService, logger, authMiddlewareInstance)
	statsController := controllers.NewStatsController(statsService, logger, authMiddlewareInstance)
	healthController := controllers.NewHealthController(db, logger)

	authController.RegisterRoutes(router)
	readingController.RegisterRoutes(router)
	statsController.RegisterRoutes(router)
	healthController.RegisterRoutes(router)

	port := config.Server.Port

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
		IdleTimeout:  config.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP server starting on port " + port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.FatalWithError(err, "Failed to start HTTP server")
		}
	}()

	logger.Info("API service running... press Ctrl+C to stop")

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithError(err, "Server forced to shutdown")
	}
}
