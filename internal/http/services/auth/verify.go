package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
	"github.com/dropDatabas3/authkit/internal/metrics"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
	"github.com/dropDatabas3/authkit/internal/security/token"
)

// VerifyEmail consume el token de verificación, marca la cuenta y abre la
// primera sesión (verificar ES el primer login).
//
// Un token válido sobre una cuenta ya verificada devuelve ErrAlreadyVerified:
// los tokens de verificación son de un solo uso efectivo aunque no haya
// store server-side, porque el estado del usuario actúa de guard.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) (*Session, error) {
	claims, err := s.issuer.Validate(rawToken)
	if err != nil {
		return nil, ErrInvalidToken
	}
	mail := token.Str(claims, "email")
	if mail == "" {
		return nil, ErrInvalidToken
	}

	u, err := s.repo.FindByEmail(ctx, mail)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("verify lookup: %w", err)
	}

	if u.Verified() {
		return nil, ErrAlreadyVerified
	}

	now := time.Now().UTC()
	if _, err := s.repo.Update(ctx, u.ID, repository.UpdateUserInput{EmailVerified: &now}); err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	logger.From(ctx).Info("email verified",
		logger.UserID(u.ID), logger.Email(u.Email))
	metrics.RecordVerification()

	return s.openSession(ctx, u.ID)
}
