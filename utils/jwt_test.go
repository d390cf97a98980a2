package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	token, err := svc.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenExpired(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Millisecond)

	token, err := svc.Issue("alice")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenTamperedSignature(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	token, err := svc.Issue("alice")
	require.NoError(t, err)

	// flip the last signature character
	last := token[len(token)-1]
	replacement := byte('A')
	if last == replacement {
		replacement = 'B'
	}
	tampered := token[:len(token)-1] + string(replacement)

	_, err = svc.Validate(tampered)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestTokenWrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-one", time.Hour)
	verifier := NewTokenService("secret-two", time.Hour)

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrTokenBadSignature)
}

func TestTokenMalformed(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	for _, tok := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		_, err := svc.Validate(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}

func TestTokenRejectsNonHMACAlg(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	claims := jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(unsigned)
	assert.Error(t, err)
}

func TestTokenEmptySubjectRejected(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	token, err := svc.Issue("")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenValidateConcurrent(t *testing.T) {
	svc := NewTokenService("unit-test-secret", time.Hour)

	token, err := svc.Issue("alice")
	require.NoError(t, err)

	done := make(chan error, 32)
	for i := 0; i < 32; i++ {
		go func() {
			_, err := svc.Validate(token)
			done <- err
		}()
	}
	for i := 0; i < 32; i++ {
		assert.NoError(t, <-done)
	}
}
