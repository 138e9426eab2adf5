package auth

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
	"github.com/dropDatabas3/authkit/internal/metrics"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
)

// SignIn autentica con email y password.
//
// "No existe", "cuenta sin password" y "password incorrecto" colapsan todos
// en ErrInvalidCredentials para no filtrar qué emails están registrados.
//
// Una cuenta sin verificar NUNCA abre sesión: se reenvía el link de
// verificación (el anterior pudo haber expirado, TTL de 5 minutos) y se
// devuelve resent=true. El chequeo va ANTES de comparar el password: para
// una cuenta sin verificar la respuesta es el reenvío, sea cual sea el
// password enviado.
func (s *Service) SignIn(ctx context.Context, email, pass string) (*Session, bool, error) {
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.RecordSignIn("invalid")
			return nil, false, ErrInvalidCredentials
		}
		return nil, false, fmt.Errorf("sign in lookup: %w", err)
	}

	if !u.Verified() {
		if err := s.sendVerification(ctx, u.Email); err != nil {
			return nil, false, err
		}
		logger.From(ctx).Info("verification re-sent on sign-in",
			logger.UserID(u.ID), logger.Email(u.Email))
		metrics.RecordSignIn("unverified")
		return nil, true, nil
	}

	if u.Password == nil || !s.hasher.Verify(pass, *u.Password) {
		metrics.RecordSignIn("invalid")
		return nil, false, ErrInvalidCredentials
	}

	sess, err := s.openSession(ctx, u.ID)
	if err != nil {
		return nil, false, err
	}
	logger.From(ctx).Info("user signed in", logger.UserID(u.ID))
	metrics.RecordSignIn("success")
	return sess, false, nil
}
