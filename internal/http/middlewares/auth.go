package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
	httperrors "github.com/dropDatabas3/authkit/internal/http/errors"
	"github.com/dropDatabas3/authkit/internal/http/helpers"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
	"github.com/dropDatabas3/authkit/internal/security/token"
)

// WithAuth exige una sesión válida y cuelga el usuario VIVO del contexto.
//
// El token se busca primero en la cookie accessToken y después en el header
// Authorization: Bearer; la cookie tiene precedencia. Se exige que las
// claims id y email estén presentes, y el usuario se relee del store: un
// token firmado de una cuenta borrada no pasa.
//
// Cualquier fallo es 401 sin distinguir causa.
func WithAuth(issuer *token.Issuer, repo repository.UserRepository) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := extractToken(r)
			if raw == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			claims, err := issuer.Validate(raw)
			if err != nil {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			id := token.Str(claims, "id")
			email := token.Str(claims, "email")
			if id == "" || email == "" {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			u, err := repo.FindByID(ctx, id)
			if err != nil {
				if !repository.IsNotFound(err) {
					logger.From(ctx).Error("auth lookup failed", logger.Err(err))
				}
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(helpers.WithUser(ctx, u)))
		})
	}
}

// extractToken: cookie primero, bearer después.
func extractToken(r *http.Request) string {
	if c, err := r.Cookie(helpers.AccessCookie); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
