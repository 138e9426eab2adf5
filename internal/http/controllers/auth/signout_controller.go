package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authkit/internal/http/dto/auth"
	"github.com/dropDatabas3/authkit/internal/http/helpers"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
)

// SignOutController maneja el cierre de sesión.
type SignOutController struct {
	secure bool
}

// NewSignOutController crea un nuevo controller de sign-out.
func NewSignOutController(opts Options) *SignOutController {
	return &SignOutController{secure: opts.SecureCookies}
}

// SignOut maneja POST /v1/auth/sign-out (requiere sesión).
//
// Sólo borra las cookies del browser: los tokens ya emitidos siguen siendo
// válidos hasta expirar, no hay revocación server-side.
func (c *SignOutController) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if u, ok := helpers.UserFromContext(ctx); ok {
		logger.From(ctx).Info("user signed out", logger.UserID(u.ID))
	}

	http.SetCookie(w, helpers.BuildDeletionCookie(helpers.AccessCookie, c.secure))
	http.SetCookie(w, helpers.BuildDeletionCookie(helpers.RefreshCookie, c.secure))

	writeJSON(w, http.StatusOK, dto.MessageResponse{
		Status:  "success",
		Message: "Signed out successfully.",
	})
}
