package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "a-development-secret-of-at-least-32-chars"

func TestGenerate_RoundTripsThroughVerifier(t *testing.T) {
	t.Parallel()

	token, err := generate(testSecret, domain.Principal{Email: "donor@example.com", Name: "Dee"}, time.Hour)
	require.NoError(t, err)

	verifier, err := auth.NewHMACVerifier(config.AuthConfig{Provider: "hmac", JWTSecret: testSecret})
	require.NoError(t, err)

	principal, err := verifier.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "donor@example.com", principal.Email)
	assert.Equal(t, "Dee", principal.Name)
	assert.NotEmpty(t, principal.UID)
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		secret   string
		email    string
		lifetime time.Duration
		want     string
	}{
		{"missing email", testSecret, "", time.Hour, "-email"},
		{"non-positive lifetime", testSecret, "a@example.com", 0, "-lifetime"},
		{"short secret", "short", "a@example.com", time.Hour, "JWT_SECRET"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := generate(tc.secret, domain.Principal{Email: tc.email}, tc.lifetime)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.want), err.Error())
		})
	}
}
