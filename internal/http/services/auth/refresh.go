package auth

import (
	"context"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
	"github.com/dropDatabas3/authkit/internal/metrics"
	"github.com/dropDatabas3/authkit/internal/security/token"
)

// Refresh renueva la sesión a partir del refresh token.
//
// El par nuevo se emite releyendo el usuario: si la cuenta fue borrada
// entre medio, el refresh falla aunque la firma siga siendo válida. Es el
// único punto de revocación real que tiene un esquema de tokens stateless.
func (s *Service) Refresh(ctx context.Context, rawToken string) (*Session, error) {
	claims, err := s.issuer.Validate(rawToken)
	if err != nil {
		metrics.RecordRefresh("invalid")
		return nil, ErrInvalidToken
	}
	id := token.Str(claims, "id")
	if id == "" {
		metrics.RecordRefresh("invalid")
		return nil, ErrInvalidToken
	}

	sess, err := s.openSession(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			metrics.RecordRefresh("invalid")
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	metrics.RecordRefresh("success")
	return sess, nil
}
