package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/authkit/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authkit/internal/http/errors"
	"github.com/dropDatabas3/authkit/internal/http/helpers"
	svc "github.com/dropDatabas3/authkit/internal/http/services/auth"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
)

// RefreshController maneja la renovación de sesión.
type RefreshController struct {
	service svc.RefreshService
	secure  bool
}

// NewRefreshController crea un nuevo controller de refresh.
func NewRefreshController(service svc.RefreshService, opts Options) *RefreshController {
	return &RefreshController{service: service, secure: opts.SecureCookies}
}

// Refresh maneja POST /v1/auth/refresh-token
//
// El refresh token viaja sólo por cookie. Cualquier fallo (cookie ausente,
// token inválido o expirado, usuario borrado) es 401 sin distinguir causa.
func (c *RefreshController) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("RefreshController.Refresh"))

	cookie, err := r.Cookie(helpers.RefreshCookie)
	if err != nil || cookie.Value == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	sess, err := c.service.Refresh(ctx, cookie.Value)
	if err != nil {
		log.Debug("refresh failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	setSessionCookies(w, sess, c.secure)
	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Status:  "success",
		Message: "Session refreshed.",
		User:    toUserResponse(sess),
	})
}
