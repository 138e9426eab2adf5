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

// SignUpController maneja el registro de usuarios.
type SignUpController struct {
	service svc.SignUpService
}

// NewSignUpController crea un nuevo controller de sign-up.
func NewSignUpController(service svc.SignUpService) *SignUpController {
	return &SignUpController{service: service}
}

// SignUp maneja POST /v1/auth/sign-up
func (c *SignUpController) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("SignUpController.SignUp"))

	var req dto.SignUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidJSON)
		return
	}

	if msg := validation.SignUp(req.Name, req.Email, req.Password); msg != "" {
		httperrors.WriteError(w, httperrors.ErrValidation.WithDetail(msg))
		return
	}

	if err := c.service.SignUp(ctx, req.Name, req.Email, req.Password); err != nil {
		log.Debug("sign-up failed", logger.Err(err))
		writeSignUpError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.MessageResponse{
		Status:  "success",
		Message: "User created. Please verify your email.",
	})
}

func writeSignUpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, svc.ErrEmailTaken):
		httperrors.WriteError(w, httperrors.ErrEmailAlreadyInUse)

	case errors.Is(err, svc.ErrMailDelivery):
		httperrors.WriteError(w, httperrors.ErrMailDelivery)

	default:
		httperrors.WriteError(w, httperrors.ErrInternalServerError)
	}
}
