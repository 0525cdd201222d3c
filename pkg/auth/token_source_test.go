package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticTokenSource(t *testing.T) {
	tok, err := StaticTokenSource("abc123").Token()
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", AuthorizationHeader(tok))
}

func TestDevTokenSourceMintsVerifiableToken(t *testing.T) {
	src, err := DevTokenSource("s3cret", "user-42", time.Minute)
	require.NoError(t, err)

	tok, err := src.Token()
	require.NoError(t, err)
	assert.True(t, tok.Valid())

	parsed, err := jwt.Parse(tok.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "user-42", claims["user_id"])
	sub, _ := claims.GetSubject()
	assert.Equal(t, "user-42", sub)

	again, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, tok.AccessToken, again.AccessToken, "valid token should be reused")
}

func TestDevTokenSourceRequiresSecret(t *testing.T) {
	_, err := DevTokenSource("", "user", time.Minute)
	assert.Error(t, err)
}

func TestNoTokenProducesNoHeader(t *testing.T) {
	tok, err := NoToken{}.Token()
	require.NoError(t, err)
	assert.Equal(t, "", AuthorizationHeader(tok))
}
