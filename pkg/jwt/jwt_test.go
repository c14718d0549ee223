package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	token, err := GenerateToken("user-1", AccessToken, "secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, AccessToken, claims.TokenType)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken("user-1", AccessToken, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken("user-1", AccessToken, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token, "secret")
	assert.Error(t, err)
}

func TestIsTokenValid_TypeMismatch(t *testing.T) {
	token, err := GenerateToken("user-1", RefreshToken, "secret", time.Hour)
	require.NoError(t, err)

	assert.True(t, IsTokenValid(token, "secret", RefreshToken))
	assert.False(t, IsTokenValid(token, "secret", AccessToken))
	assert.False(t, IsTokenValid("garbage", "secret", AccessToken))
}
