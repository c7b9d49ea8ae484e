// Package main mints HMAC bearer tokens for exercising the API locally with
// auth.provider=hmac.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/service/auth"
)

func main() {
	email := flag.String("email", "", "email claim of the token (required)")
	name := flag.String("name", "", "display name claim")
	uid := flag.String("uid", "", "subject claim; a random UUID when empty")
	lifetime := flag.Duration("lifetime", time.Hour, "token lifetime")
	flag.Parse()

	token, err := generate(os.Getenv(config.EnvPrefix+"_AUTH_JWT_SECRET"), domain.Principal{
		UID:           *uid,
		Email:         *email,
		EmailVerified: true,
		Name:          *name,
	}, *lifetime)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token-generator: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}

// generate signs a development token for principal with secret.
func generate(secret string, principal domain.Principal, lifetime time.Duration) (string, error) {
	if principal.Email == "" {
		return "", fmt.Errorf("-email is required")
	}
	if lifetime <= 0 {
		return "", fmt.Errorf("-lifetime must be positive")
	}

	verifier, err := auth.NewHMACVerifier(config.AuthConfig{Provider: "hmac", JWTSecret: secret})
	if err != nil {
		return "", fmt.Errorf("set %s_AUTH_JWT_SECRET: %w", config.EnvPrefix, err)
	}

	return verifier.GenerateToken(context.Background(), principal, lifetime)
}
