package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
	api_models "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models/api"
)

// ErrTokenExpired and ErrTokenInvalid are distinguished so callers can log
// the failure reason; both surface to clients as 401.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Service provides JWT operations
type Service struct {
	config api_models.Config
}

// NewService creates a new JWT service
func NewService(config api_models.Config) *Service {
	return &Service{
		config: config,
	}
}

// GenerateToken signs a bearer token for the given subject (user email).
// A zero ttl falls back to the configured default access-token duration.
func (s *Service) GenerateToken(subject, name string, ttl time.Duration) (*api_models.IssuedToken, error) {
	if ttl <= 0 {
		ttl = s.config.AccessTokenDuration
	}

	tokenID := uuid.New().String()
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := api_models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.config.Issuer,
		},
		Name:    name,
		TokenID: tokenID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		return nil, err
	}

	return &api_models.IssuedToken{
		Token:     signed,
		TokenID:   tokenID,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// GenerateLoginToken signs a token with the longer login lifetime
func (s *Service) GenerateLoginToken(subject, name string) (*api_models.IssuedToken, error) {
	return s.GenerateToken(subject, name, s.config.LoginTokenDuration)
}

// ValidateToken validates a bearer token and returns the claims
func (s *Service) ValidateToken(tokenString string) (*api_models.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &api_models.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.config.SecretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*api_models.AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
