package controllers

import (
	"errors"
	"net/http"

	service "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/auth"
	logger "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Logger"
	api_models "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models/api"

	"github.com/gin-gonic/gin"
)

// AuthController handles signup and token issuance
type AuthController struct {
	authService *service.AuthService
	logger      *logger.Logger
}

// NewAuthController creates a new auth controller
func NewAuthController(authService *service.AuthService, logger *logger.Logger) *AuthController {
	return &AuthController{
		authService: authService,
		logger:      logger,
	}
}

// RegisterRoutes registers the auth routes with Gin
func (h *AuthController) RegisterRoutes(router *gin.Engine) {
	router.POST("/signup/user", h.Signup)
	router.POST("/token", h.Login)
}

// Signup handles user registration
func (h *AuthController) Signup(c *gin.Context) {
	var req api_models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		h.logger.ErrorWithError(err, "Error creating user")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error creating user"})
		return
	}

	c.JSON(http.StatusCreated, api_models.SignupResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})
}

// Login authenticates a user and returns an access token
func (h *AuthController) Login(c *gin.Context) {
	var req api_models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issued, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid credentials"})
			return
		}
		h.logger.ErrorWithError(err, "Error during login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, api_models.TokenResponse{
		AccessToken: issued.Token,
		TokenType:   "bearer",
		ExpiresAt:   issued.ExpiresAt,
	})
}
