package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	secret := []byte("test-secret")

	token, err := Generate(secret, "site-b", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := Parse(secret, token)
	require.NoError(t, err)
	require.Equal(t, "site-b", claims.Client)
}

func TestParseWrongSecret(t *testing.T) {
	token, err := Generate([]byte("secret-a"), "agent", time.Hour)
	require.NoError(t, err)

	_, err = Parse([]byte("secret-b"), token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseExpired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := Generate(secret, "agent", -time.Minute)
	require.NoError(t, err)

	_, err = Parse(secret, token)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse([]byte("test-secret"), "not.a.token")
	require.ErrorIs(t, err, ErrInvalid)
}
