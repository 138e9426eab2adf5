package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/authkit/internal/cache"
	"github.com/dropDatabas3/authkit/internal/domain/repository"
	"github.com/dropDatabas3/authkit/internal/metrics"
	"github.com/dropDatabas3/authkit/internal/oauth"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
	"github.com/dropDatabas3/authkit/internal/security/token"
)

// stateKey namespacea los states OAuth dentro del cache compartido.
func stateKey(state string) string { return "oauth:state:" + state }

// Start genera el state anti-CSRF, lo guarda con TTL acotado y devuelve la
// URL de autorización del provider. El state guarda el nombre del provider
// para poder cruzarlo en el callback.
func (s *Service) Start(ctx context.Context, provider string) (string, error) {
	p, ok := s.registry.Get(provider)
	if !ok {
		return "", ErrUnknownProvider
	}

	state, err := token.GenerateOpaqueToken(32)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	if err := s.cache.Set(ctx, stateKey(state), p.Name, s.stateTTL); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	return s.registry.AuthCodeURL(p, state), nil
}

// Callback cierra el flujo authorization-code: valida el state (un solo
// uso), intercambia el code, trae el perfil y resuelve el usuario local.
func (s *Service) Callback(ctx context.Context, provider, code, state string) (*Session, error) {
	p, ok := s.registry.Get(provider)
	if !ok {
		return nil, ErrUnknownProvider
	}

	stored, err := s.cache.Get(ctx, stateKey(state))
	if err != nil {
		if cache.IsNotFound(err) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("load state: %w", err)
	}
	// Consumir el state antes de cualquier otra cosa; reuso = replay.
	_ = s.cache.Delete(ctx, stateKey(state))
	if stored != p.Name {
		return nil, ErrInvalidToken
	}

	accessToken, err := s.registry.Exchange(ctx, p, code)
	if err != nil {
		logger.From(ctx).Warn("oauth exchange failed",
			logger.Provider(p.Name), logger.Err(err))
		metrics.RecordOAuthSignIn(p.Name, "failed")
		return nil, ErrOAuthProfile
	}
	prof, err := s.registry.FetchProfile(ctx, p, accessToken)
	if err != nil || prof.Email == "" || prof.ID == "" {
		logger.From(ctx).Warn("oauth profile unusable",
			logger.Provider(p.Name), logger.Err(err))
		metrics.RecordOAuthSignIn(p.Name, "failed")
		return nil, ErrOAuthProfile
	}

	u, err := s.resolveUser(ctx, p.Name, prof)
	if err != nil {
		metrics.RecordOAuthSignIn(p.Name, "failed")
		return nil, err
	}
	logger.From(ctx).Info("oauth sign-in",
		logger.Provider(p.Name), logger.UserID(u.ID))
	metrics.RecordOAuthSignIn(p.Name, "success")
	return s.openSession(ctx, u.ID)
}

// resolveUser linkea el perfil del provider a una cuenta local, creándola
// si hace falta. El link vive en MetaData["<provider>Id"].
//
// Sobre cuentas existentes los datos locales mandan: sólo se backfillea lo
// que falta (imagen o nombre vacíos, email sin verificar). Nunca se pisa
// un valor ya seteado con el del provider.
func (s *Service) resolveUser(ctx context.Context, provider string, prof *oauth.Profile) (*repository.User, error) {
	metaKey := provider + "Id"

	u, err := s.repo.FindByEmail(ctx, prof.Email)
	if err != nil {
		if !repository.IsNotFound(err) {
			return nil, fmt.Errorf("oauth lookup: %w", err)
		}
		// Cuenta nueva: el provider ya verificó este email.
		now := time.Now().UTC()
		created, err := s.repo.Create(ctx, repository.CreateUserInput{
			Email:         prof.Email,
			Name:          prof.Name,
			Image:         prof.Picture,
			EmailVerified: &now,
			MetaData:      map[string]string{metaKey: prof.ID},
		})
		if err != nil {
			return nil, fmt.Errorf("oauth create: %w", err)
		}
		return created, nil
	}

	in := repository.UpdateUserInput{}
	changed := false

	if u.MetaData[metaKey] != prof.ID {
		md := map[string]string{}
		for k, v := range u.MetaData {
			md[k] = v
		}
		md[metaKey] = prof.ID
		in.MetaData = md
		changed = true
	}
	if !u.Verified() {
		now := time.Now().UTC()
		in.EmailVerified = &now
		changed = true
	}
	if u.Image == "" && prof.Picture != "" {
		in.Image = &prof.Picture
		changed = true
	}
	if u.Name == "" && prof.Name != "" {
		in.Name = &prof.Name
		changed = true
	}

	if !changed {
		return u, nil
	}
	updated, err := s.repo.Update(ctx, u.ID, in)
	if err != nil {
		return nil, fmt.Errorf("oauth link: %w", err)
	}
	return updated, nil
}
