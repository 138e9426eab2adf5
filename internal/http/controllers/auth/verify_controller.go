package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/authkit/internal/http/dto/auth"
	httperrors "github.com/dropDatabas3/authkit/internal/http/errors"
	svc "github.com/dropDatabas3/authkit/internal/http/services/auth"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
)

// VerifyEmailController maneja la verificación de email.
type VerifyEmailController struct {
	service svc.VerifyEmailService
	secure  bool
}

// NewVerifyEmailController crea un nuevo controller de verify-email.
func NewVerifyEmailController(service svc.VerifyEmailService, opts Options) *VerifyEmailController {
	return &VerifyEmailController{service: service, secure: opts.SecureCookies}
}

// VerifyEmail maneja POST /v1/auth/verify-email
//
// Verificar también abre sesión: es el primer login de la cuenta.
func (c *VerifyEmailController) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("VerifyEmailController.VerifyEmail"))

	var req dto.VerifyEmailRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}
	if req.Token == "" {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail("Token is required"))
		return
	}

	sess, err := c.service.VerifyEmail(ctx, req.Token)
	if err != nil {
		log.Debug("verify-email failed", logger.Err(err))
		writeVerifyError(w, err)
		return
	}

	setSessionCookies(w, sess, c.secure)
	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Status:  "success",
		Message: "Email verified successfully.",
		User:    toUserResponse(sess),
	})
}

func writeVerifyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrInvalidToken):
		httperrors.WriteError(w, httperrors.ErrInvalidToken)

	case errors.Is(err, svc.ErrAlreadyVerified):
		httperrors.WriteError(w, httperrors.ErrAlreadyVerified)

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
