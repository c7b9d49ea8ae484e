package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phrazzld/shareplate-api/internal/config"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
)

// firebaseIssuerPrefix is completed with the project id to form the iss claim.
const firebaseIssuerPrefix = "https://securetoken.google.com/"

// FirebaseVerifier verifies Firebase Authentication ID tokens: RS256 JWTs
// signed by one of Google's published securetoken certificates.
type FirebaseVerifier struct {
	projectID string
	issuer    string
	certs     *certSource
	clockSkew time.Duration
	timeFunc  func() time.Time
	logger    *slog.Logger
}

// Ensure FirebaseVerifier implements Verifier interface
var _ Verifier = (*FirebaseVerifier)(nil)

// NewFirebaseVerifier creates a verifier for tokens issued to cfg.FirebaseProjectID,
// downloading certificates from cfg.CertsURL.
func NewFirebaseVerifier(cfg config.AuthConfig, client *http.Client, log *slog.Logger) (*FirebaseVerifier, error) {
	if cfg.FirebaseProjectID == "" {
		return nil, fmt.Errorf("firebase project id is required")
	}
	if cfg.CertsURL == "" {
		return nil, fmt.Errorf("certificate url is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &FirebaseVerifier{
		projectID: cfg.FirebaseProjectID,
		issuer:    firebaseIssuerPrefix + cfg.FirebaseProjectID,
		certs:     newCertSource(cfg.CertsURL, client),
		clockSkew: defaultClockSkew,
		timeFunc:  time.Now,
		logger:    log.With(slog.String("component", "firebase_verifier")),
	}, nil
}

// Verify validates an ID token and returns the principal it identifies.
func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (*domain.Principal, error) {
	log := logger.FromContextOrDefault(ctx, v.logger)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(v.clockSkew),
		jwt.WithTimeFunc(v.timeFunc),
	}

	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, fmt.Errorf("%w: missing kid header", ErrInvalidToken)
		}
		return v.certs.key(ctx, kid)
	}, parserOpts...)
	if err != nil {
		return nil, classifyParseError(log, err)
	}

	principal, err := principalFromClaims(claims)
	if err != nil {
		log.Debug("token verification failed: incomplete identity", "error", err)
		return nil, err
	}

	log.Debug("firebase token verified", "uid", principal.UID)
	return principal, nil
}
