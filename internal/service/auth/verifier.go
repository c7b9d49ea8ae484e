package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/domain"
)

// defaultClockSkew is the leeway applied to exp and iat checks.
const defaultClockSkew = time.Minute

// Verifier turns a bearer token into the identity it proves.
type Verifier interface {
	// Verify checks the token's signature and claims and returns the principal.
	// Credential failures wrap ErrInvalidToken, ErrExpiredToken, ErrTokenNotYetValid
	// or ErrMissingEmail; provider failures wrap ErrCertificateFetch.
	Verify(ctx context.Context, token string) (*domain.Principal, error)
}

// identityClaims mirrors the claim set of a Firebase ID token. The HMAC
// development verifier issues the same shape.
type identityClaims struct {
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Name          string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// NewVerifier builds the verifier selected by cfg.Provider.
// client is used for certificate downloads; nil selects a client with a 10s timeout.
func NewVerifier(cfg config.AuthConfig, client *http.Client, logger *slog.Logger) (Verifier, error) {
	switch cfg.Provider {
	case "firebase":
		return NewFirebaseVerifier(cfg, client, logger)
	case "hmac":
		return NewHMACVerifier(cfg)
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Provider)
	}
}

// principalFromClaims validates the identity part of the claims.
func principalFromClaims(claims *identityClaims) (*domain.Principal, error) {
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	if strings.TrimSpace(claims.Email) == "" {
		return nil, ErrMissingEmail
	}
	return &domain.Principal{
		UID:           claims.Subject,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}

// classifyParseError maps jwt parse errors onto the package sentinels.
func classifyParseError(log *slog.Logger, err error) error {
	switch {
	case errors.Is(err, ErrCertificateFetch):
		log.Error("token verification failed: certificates unavailable", "error", err)
		return ErrCertificateFetch
	case errors.Is(err, jwt.ErrTokenExpired):
		log.Debug("token verification failed: token expired", "error", err)
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenUsedBeforeIssued), errors.Is(err, jwt.ErrTokenNotValidYet):
		log.Debug("token verification failed: token not yet valid", "error", err)
		return ErrTokenNotYetValid
	case errors.Is(err, jwt.ErrTokenMalformed):
		log.Debug("token verification failed: malformed token", "error", err)
		return ErrInvalidToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		log.Debug("token verification failed: invalid signature", "error", err)
		return ErrInvalidToken
	default:
		log.Debug("token verification failed: other validation error",
			"error", err,
			"error_type", fmt.Sprintf("%T", err))
		return ErrInvalidToken
	}
}
