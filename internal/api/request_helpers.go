package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/shareplate-api/internal/api/shared"
	"github.com/phrazzld/shareplate-api/internal/domain"
	"github.com/phrazzld/shareplate-api/internal/platform/logger"
	"github.com/phrazzld/shareplate-api/internal/service/auth"
)

// principalOrAbort returns the principal placed in the context by the auth
// middleware. When it is missing it writes a 401 and returns false.
func principalOrAbort(w http.ResponseWriter, r *http.Request) (domain.Principal, bool) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		logger.FromContextOrDefault(r.Context(), nil).Warn("principal missing from request context")
		HandleAPIError(w, r, auth.ErrMissingToken, "")
		return domain.Principal{}, false
	}
	return principal, true
}

// pathParam returns a non-empty chi URL parameter or writes a 400.
func pathParam(w http.ResponseWriter, r *http.Request, name string, log *slog.Logger) (string, bool) {
	value := chi.URLParam(r, name)
	if value == "" {
		log.Warn("missing path parameter", slog.String("param_name", name))
		HandleAPIError(w, r, domain.NewValidationError(name, "is required", domain.ErrInvalidID), "")
		return "", false
	}
	return value, true
}
