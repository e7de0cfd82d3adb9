package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService() *TokenService {
	return NewTokenService(TokenConfig{Secret: "test-secret", Issuer: "task-tracker-api", Audience: "task-tracker-clients"})
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := newTestService()
	token, err := svc.GenerateToken("u-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", claims.UserID)
	require.Equal(t, "alice", claims.Username)
}

func TestValidateToken_Invalid(t *testing.T) {
	_, err := newTestService().ValidateToken("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongSecretOrAudience(t *testing.T) {
	token, err := newTestService().GenerateToken("u-1", "alice")
	require.NoError(t, err)

	other := NewTokenService(TokenConfig{Secret: "other", Issuer: "task-tracker-api", Audience: "task-tracker-clients"})
	_, err = other.ValidateToken(token)
	require.Error(t, err)

	aud := NewTokenService(TokenConfig{Secret: "test-secret", Issuer: "task-tracker-api", Audience: "someone-else"})
	_, err = aud.ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService()
	base := time.Now()
	svc.now = func() time.Time { return base }
	token, err := svc.GenerateToken("u-1", "alice")
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(25 * time.Hour) }
	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)
	require.True(t, CheckPassword(hash, "s3cret"))
	require.False(t, CheckPassword(hash, "wrong"))
	require.False(t, CheckPassword("", "s3cret"))
}
