package auth

import (
	"testing"

	"realty_backend/internal/config"
	"realty_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestConfig(t *testing.T, secret string, ttlMinutes int) {
	t.Helper()
	cfg := &config.Config{}
	cfg.JWT.Secret = secret
	cfg.JWT.TTL = ttlMinutes
	old := config.AppConfig
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = old })
}

func TestTokenRoundTrip(t *testing.T) {
	setTestConfig(t, "test-secret", 60)

	token, err := GenerateToken("user-1", models.UserRoleOwner)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.UserRoleOwner, claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseTokenWrongSecret(t *testing.T) {
	setTestConfig(t, "secret-a", 60)
	token, err := GenerateToken("user-1", models.UserRoleUser)
	require.NoError(t, err)

	setTestConfig(t, "secret-b", 60)
	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenGarbage(t *testing.T) {
	setTestConfig(t, "test-secret", 60)
	_, err := ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2hunter2", hash)

	assert.True(t, CheckPasswordHash("hunter2hunter2", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
