package tokens_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shivang-26/techCommunity-website/internals/config"
	"github.com/shivang-26/techCommunity-website/internals/tokens"
)

func newManager(secret string) *tokens.TokenManager {
	return tokens.NewTokenManager(&config.CookieConfig{}, secret)
}

func TestGenerateVerifyRoundTrip(t *testing.T) {
	tm := newManager("test-secret")

	tokenStr, err := tm.Generate(42)
	require.NoError(t, err)

	userID, err := tm.Verify(tokenStr)
	require.NoError(t, err)
	assert.EqualValues(t, 42, userID)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tokenStr, err := newManager("secret-one").Generate(42)
	require.NoError(t, err)

	_, err = newManager("secret-two").Verify(tokenStr)
	assert.Error(t, err)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := newManager("test-secret")

	_, err := tm.Verify("not-a-token")
	assert.Error(t, err)

	_, err = tm.Verify("")
	assert.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := newManager("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": float64(42),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	tokenStr, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.Verify(tokenStr)
	assert.Error(t, err)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	tm := newManager("test-secret")

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenStr, err := noSub.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tm.Verify(tokenStr)
	assert.Error(t, err)
}
