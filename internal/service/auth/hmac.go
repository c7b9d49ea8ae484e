package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
)

// Issuer and audience of locally minted development tokens.
const (
	HMACIssuer   = "shareplate-dev"
	HMACAudience = "shareplate-api"
)

// HMACVerifier verifies HS256 tokens signed with a shared secret. It exists
// for local development and tests where no Firebase project is available.
type HMACVerifier struct {
	signingKey []byte
	clockSkew  time.Duration
	timeFunc   func() time.Time
	logger     *slog.Logger
}

// Ensure HMACVerifier implements Verifier interface
var _ Verifier = (*HMACVerifier)(nil)

// NewHMACVerifier creates a development verifier from cfg.JWTSecret.
func NewHMACVerifier(cfg config.AuthConfig) (*HMACVerifier, error) {
	// Validate that the secret meets minimum length requirements
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &HMACVerifier{
		signingKey: []byte(cfg.JWTSecret),
		clockSkew:  defaultClockSkew,
		timeFunc:   time.Now,
		logger:     slog.Default().With(slog.String("component", "hmac_verifier")),
	}, nil
}

// GenerateToken mints a token for principal valid for lifetime.
func (v *HMACVerifier) GenerateToken(
	ctx context.Context,
	principal domain.Principal,
	lifetime time.Duration,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, v.logger)
	now := v.timeFunc()

	uid := principal.UID
	if uid == "" {
		uid = uuid.NewString()
	}

	claims := identityClaims{
		Email:         principal.Email,
		EmailVerified: principal.EmailVerified,
		Name:          principal.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    HMACIssuer,
			Audience:  jwt.ClaimStrings{HMACAudience},
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(v.signingKey)
	if err != nil {
		log.Error("failed to sign development token",
			"error", err,
			"signing_method", jwt.SigningMethodHS256.Name)
		return "", fmt.Errorf("failed to sign token with HMAC-SHA256: %w", err)
	}

	return signedToken, nil
}

// Verify validates a development token and returns the principal it identifies.
func (v *HMACVerifier) Verify(ctx context.Context, tokenString string) (*domain.Principal, error) {
	log := logger.FromContextOrDefault(ctx, v.logger)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(HMACIssuer),
		jwt.WithAudience(HMACAudience),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(v.timeFunc),
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.signingKey, nil
	}, parserOpts...)
	if err != nil {
		return nil, classifyParseError(log, err)
	}

	principal, err := principalFromClaims(claims)
	if err != nil {
		log.Debug("token verification failed: incomplete identity", "error", err)
		return nil, err
	}
	return principal, nil
}
