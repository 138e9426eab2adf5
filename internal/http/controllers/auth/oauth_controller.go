package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/authkit/internal/http/errors"
	svc "github.com/dropDatabas3/authkit/internal/http/services/auth"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
)

// OAuthController maneja el flujo authorization-code contra providers.
type OAuthController struct {
	service        svc.OAuthService
	secure         bool
	frontendOrigin string
}

// NewOAuthController crea un nuevo controller de OAuth.
func NewOAuthController(service svc.OAuthService, opts Options) *OAuthController {
	return &OAuthController{
		service:        service,
		secure:         opts.SecureCookies,
		frontendOrigin: opts.FrontendOrigin,
	}
}

// Start maneja GET /v1/auth/{provider} (google | github).
// Redirige al consent screen del provider con un state de un solo uso.
func (c *OAuthController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")

	url, err := c.service.Start(ctx, provider)
	if err != nil {
		logger.From(ctx).Debug("oauth start failed",
			logger.Provider(provider), logger.Err(err))
		writeOAuthError(w, err)
		return
	}

	http.Redirect(w, r, url, http.StatusFound)
}

// Callback maneja GET /v1/auth/callback/{provider}?code=...&state=...
// En éxito setea cookies de sesión y redirige al front-end.
func (c *OAuthController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("code and state are required"))
		return
	}

	sess, err := c.service.Callback(ctx, provider, code, state)
	if err != nil {
		logger.From(ctx).Debug("oauth callback failed",
			logger.Provider(provider), logger.Err(err))
		writeOAuthError(w, err)
		return
	}

	setSessionCookies(w, sess, c.secure)
	http.Redirect(w, r, c.frontendOrigin, http.StatusFound)
}

func writeOAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrUnknownProvider):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("unknown provider"))

	case errors.Is(err, svc.ErrInvalidToken):
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("invalid or expired state"))

	case errors.Is(err, svc.ErrOAuthProfile):
		httperrors.WriteError(w, httperrors.ErrOAuthProfile)

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
