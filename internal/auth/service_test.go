package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService(nil, "duobroker", []byte("test-secret"), time.Minute)

	token, err := svc.SignToken("user-123")
	require.NoError(t, err)

	subject, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	signer := NewService(nil, "duobroker", []byte("secret-a"), time.Minute)
	verifier := NewService(nil, "duobroker", []byte("secret-b"), time.Minute)

	token, err := signer.SignToken("user-123")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	signer := NewService(nil, "someone-else", []byte("test-secret"), time.Minute)
	verifier := NewService(nil, "duobroker", []byte("test-secret"), time.Minute)

	token, err := signer.SignToken("user-123")
	require.NoError(t, err)

	_, err = verifier.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	svc := NewService(nil, "duobroker", []byte("test-secret"), -time.Minute)

	token, err := svc.SignToken("user-123")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	assert.Error(t, err)
}
