package middleware

import (
	"errors"
	"net/http"
	"strings"

	jwt "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.ApiService/implementation/jwt"

	"github.com/gin-gonic/gin"
)

const (
	// Context keys
	UserEmailContextKey = "user_email"
	UserNameContextKey  = "user_name"
	TokenIDContextKey   = "token_id"
)

// AuthMiddleware gates requests on a valid bearer token
type AuthMiddleware struct {
	jwtService *jwt.Service
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtService *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

// extractBearerToken gets the token from the Authorization header
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// Authenticate verifies the bearer token. Missing, expired and malformed
// tokens are distinguished in the response message but all surface as 401.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c.Request)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing or invalid"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			message := "Could not validate credentials"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "Token has expired"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Set(UserEmailContextKey, claims.Subject)
		c.Set(UserNameContextKey, claims.Name)
		c.Set(TokenIDContextKey, claims.TokenID)

		c.Next()
	}
}

// GetUserEmailFromGinContext retrieves the authenticated email from Gin context
func GetUserEmailFromGinContext(c *gin.Context) (string, error) {
	emailVal, exists := c.Get(UserEmailContextKey)
	if !exists {
		return "", errors.New("user not found in context")
	}

	email, ok := emailVal.(string)
	if !ok || email == "" {
		return "", errors.New("invalid user email in context")
	}

	return email, nil
}
