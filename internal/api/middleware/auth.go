package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/phrazzld/shareplate-api/internal/api/shared"
	"github.com/phrazzld/shareplate-api/internal/service/auth"
)

// Messages returned to callers whose credentials are missing or rejected.
const (
	MsgNoToken      = "Unauthorized: No token provided"
	MsgInvalidToken = "Unauthorized: Invalid token"
	MsgAuthError    = "Authentication error"
)

const bearerPrefix = "Bearer "

// AuthMiddleware verifies bearer tokens and stores the resulting principal
// in the request context.
type AuthMiddleware struct {
	verifier auth.Verifier
}

// NewAuthMiddleware creates a new AuthMiddleware with the given verifier.
func NewAuthMiddleware(verifier auth.Verifier) *AuthMiddleware {
	if verifier == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("verifier cannot be nil for AuthMiddleware")
	}
	return &AuthMiddleware{verifier: verifier}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns auth.ErrMissingToken when the header is absent, lacks
// the Bearer prefix or carries an empty token.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", auth.ErrMissingToken
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", auth.ErrMissingToken
	}
	return token, nil
}

// Authenticate rejects requests without a valid bearer token and passes the
// verified principal to the next handler through the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := BearerToken(r)
		if err != nil {
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgNoToken, err)
			return
		}

		principal, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			if errors.Is(err, auth.ErrCertificateFetch) {
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, MsgAuthError, err)
				return
			}
			shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, MsgInvalidToken, err,
				shared.WithElevatedLogLevel())
			return
		}

		ctx := shared.WithPrincipal(r.Context(), *principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
