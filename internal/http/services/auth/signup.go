package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
	"github.com/dropDatabas3/authkit/internal/metrics"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
)

// SignUp crea la cuenta y dispara el mail de verificación.
//
// El conflicto es por CUALQUIER fila existente con ese email, incluidas las
// cuentas OAuth-only sin password: el dueño de esa cuenta entra por su
// provider, no registrando un password nuevo por encima.
func (s *Service) SignUp(ctx context.Context, name, email, pass string) error {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if !repository.IsNotFound(err) {
		return fmt.Errorf("sign up lookup: %w", err)
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	u, err := s.repo.Create(ctx, repository.CreateUserInput{
		Email:    email,
		Name:     name,
		Password: &hash,
	})
	if err != nil {
		// Carrera entre el check y el insert: el constraint manda.
		if errors.Is(err, repository.ErrConflict) {
			return ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	logger.From(ctx).Info("user registered",
		logger.UserID(u.ID), logger.Email(u.Email))
	metrics.RecordSignUp()

	return s.sendVerification(ctx, u.Email)
}
