package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/authkit/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authkit/internal/http/errors"
	svc "github.com/dropDatabas3/authkit/internal/http/services/auth"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
	"github.com/dropDatabas3/authkit/internal/validation"
)

// SignInController maneja el login con email y password.
type SignInController struct {
	service svc.SignInService
	secure  bool
}

// NewSignInController crea un nuevo controller de sign-in.
func NewSignInController(service svc.SignInService, opts Options) *SignInController {
	return &SignInController{service: service, secure: opts.SecureCookies}
}

// SignIn maneja POST /v1/auth/sign-in
func (c *SignInController) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SignInController.SignIn"))

	var req dto.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	if msg := validation.SignIn(req.Email, req.Password); msg != "" {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail(msg))
		return
	}

	sess, resent, err := c.service.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		log.Debug("sign-in failed", logger.Err(err))
		writeSignInError(w, err)
		return
	}

	// Cuenta sin verificar: 200 sin cookies, se reenvió el link.
	if resent {
		writeJSON(w, http.StatusOK, dto.MessageResponse{
			Status:  "success",
			Message: "Verification link sent to your email.",
		})
		return
	}

	setSessionCookies(w, sess, c.secure)
	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Status:  "success",
		Message: "Signed in successfully.",
		User:    toUserResponse(sess),
	})
}

func writeSignInError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidCredentials):
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)

	case errors.Is(err, svc.ErrMailDelivery):
		httperrors.WriteError(w, httperrors.ErrMailDelivery)

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
