package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionTokenRoundtrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateSessionToken("s1", "alice", secret)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := ValidateSessionToken(token, secret)
	assert.NoError(t, err)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "alice", claims.UserID)
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	token, err := GenerateSessionToken("s1", "alice", []byte("right"))
	assert.NoError(t, err)

	_, err = ValidateSessionToken(token, []byte("wrong"))
	assert.Error(t, err)
}

func TestValidateSessionToken_Garbage(t *testing.T) {
	_, err := ValidateSessionToken("not-a-token", []byte("secret"))
	assert.Error(t, err)
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := ExtractTokenFromHeader("Bearer abc123")
	assert.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ExtractTokenFromHeader("")
	assert.Error(t, err)

	_, err = ExtractTokenFromHeader("Basic abc123")
	assert.Error(t, err)
}
