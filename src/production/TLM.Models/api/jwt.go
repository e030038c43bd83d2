package api_models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds JWT configuration
type Config struct {
	SecretKey           string
	AccessTokenDuration time.Duration
	LoginTokenDuration  time.Duration
	Issuer              string
}

// AccessClaims represents the JWT claims for user access.
// Subject carries the user email.
type AccessClaims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	TokenID string `json:"token_id"`
}

// IssuedToken is a signed token together with its expiry
type IssuedToken struct {
	Token     string `json:"access_token"`
	TokenID   string `json:"token_id"`
	ExpiresAt int64  `json:"expires_at"`
}
