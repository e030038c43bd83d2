package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api_models "gitlab.com/radixsense/tlm.sensor_server/src/production/TLM.Models/api"
)

func newTestService() *Service {
	return NewService(api_models.Config{
		SecretKey:           "test-secret-key",
		AccessTokenDuration: 15 * time.Minute,
		LoginTokenDuration:  90 * time.Minute,
		Issuer:              "tlm-sensor-server",
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService()

	issued, err := svc.GenerateToken("user@example.com", "Test User", 0)
	require.NoError(t, err)
	require.NotEmpty(t, issued.Token)
	require.NotEmpty(t, issued.TokenID)

	claims, err := svc.ValidateToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Subject)
	assert.Equal(t, "Test User", claims.Name)
	assert.Equal(t, issued.TokenID, claims.TokenID)
	assert.Equal(t, "tlm-sensor-server", claims.Issuer)
}

func TestGenerateToken_DefaultLifetime(t *testing.T) {
	svc := newTestService()

	issued, err := svc.GenerateToken("user@example.com", "Test User", 0)
	require.NoError(t, err)

	expected := time.Now().Add(15 * time.Minute).Unix()
	assert.InDelta(t, expected, issued.ExpiresAt, 5)
}

func TestGenerateLoginToken_LongerLifetime(t *testing.T) {
	svc := newTestService()

	issued, err := svc.GenerateLoginToken("user@example.com", "Test User")
	require.NoError(t, err)

	expected := time.Now().Add(90 * time.Minute).Unix()
	assert.InDelta(t, expected, issued.ExpiresAt, 5)

	_, err = svc.ValidateToken(issued.Token)
	assert.NoError(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	// A non-positive ttl falls back to the configured default, so sign an
	// already-expired token through a service with a negative default.
	expiredSvc := NewService(api_models.Config{
		SecretKey:           "test-secret-key",
		AccessTokenDuration: -time.Minute,
		LoginTokenDuration:  -time.Minute,
		Issuer:              "tlm-sensor-server",
	})
	issued, err := expiredSvc.GenerateToken("user@example.com", "Test User", 0)
	require.NoError(t, err)

	_, err = expiredSvc.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestService()
	other := NewService(api_models.Config{
		SecretKey:           "a-different-secret",
		AccessTokenDuration: 15 * time.Minute,
		LoginTokenDuration:  90 * time.Minute,
	})

	issued, err := svc.GenerateToken("user@example.com", "Test User", 0)
	require.NoError(t, err)

	_, err = other.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestService()

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateToken_MissingSubject(t *testing.T) {
	svc := newTestService()

	issued, err := svc.GenerateToken("", "No Subject", 0)
	require.NoError(t, err)

	_, err = svc.ValidateToken(issued.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
