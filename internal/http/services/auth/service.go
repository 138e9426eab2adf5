package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/authkit/internal/cache"
	"github.com/dropDatabas3/authkit/internal/domain/repository"
	"github.com/dropDatabas3/authkit/internal/email"
	"github.com/dropDatabas3/authkit/internal/metrics"
	"github.com/dropDatabas3/authkit/internal/oauth"
	"github.com/dropDatabas3/authkit/internal/observability/logger"
	"github.com/dropDatabas3/authkit/internal/security/password"
	"github.com/dropDatabas3/authkit/internal/security/token"
)

// Service implementa todos los contratos de auth sobre las mismas deps.
type Service struct {
	repo     repository.UserRepository
	issuer   *token.Issuer
	hasher   *password.Hasher
	mailer   email.Sender
	cache    cache.Client
	registry *oauth.Registry

	// frontendOrigin es la base de los links que van por mail.
	frontendOrigin string

	// stateTTL acota la ventana del state anti-CSRF de OAuth.
	stateTTL time.Duration
}

// Options agrupa las dependencias del Service.
type Options struct {
	Repo           repository.UserRepository
	Issuer         *token.Issuer
	Hasher         *password.Hasher
	Mailer         email.Sender
	Cache          cache.Client
	Registry       *oauth.Registry
	FrontendOrigin string
	StateTTL       time.Duration
}

// NewService construye el service de auth.
func NewService(opts Options) *Service {
	if opts.StateTTL <= 0 {
		opts.StateTTL = 10 * time.Minute
	}
	return &Service{
		repo:           opts.Repo,
		issuer:         opts.Issuer,
		hasher:         opts.Hasher,
		mailer:         opts.Mailer,
		cache:          opts.Cache,
		registry:       opts.Registry,
		frontendOrigin: opts.FrontendOrigin,
		stateTTL:       opts.StateTTL,
	}
}

// openSession relee el usuario y emite el par access+refresh.
// Releer en vez de copiar claims viejas garantiza que el snapshot del
// access token refleje el estado actual (nombre, imagen, verificación).
func (s *Service) openSession(ctx context.Context, userID string) (*Session, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	var verified any
	if u.EmailVerified != nil {
		verified = u.EmailVerified.UTC().Format(time.RFC3339)
	}
	access, err := s.issuer.Issue(token.Access, map[string]any{
		"id":            u.ID,
		"email":         u.Email,
		"name":          u.Name,
		"image":         u.Image,
		"emailVerified": verified,
		"metaData":      u.MetaData,
	})
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.issuer.Issue(token.Refresh, map[string]any{"id": u.ID})
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &Session{
		User:         u,
		AccessToken:  access,
		RefreshToken: refresh,
		AccessTTL:    s.issuer.AccessTTL,
		RefreshTTL:   s.issuer.RefreshTTL,
	}, nil
}

// sendVerification emite el token de verificación y manda el mail.
func (s *Service) sendVerification(ctx context.Context, to string) error {
	tk, err := s.issuer.Issue(token.EmailVerification, map[string]any{"email": to})
	if err != nil {
		return fmt.Errorf("issue verification token: %w", err)
	}
	subject, htmlBody, textBody := email.VerificationMail(s.frontendOrigin, tk)
	if err := s.mailer.Send(to, subject, htmlBody, textBody); err != nil {
		logger.From(ctx).Error("verification mail failed",
			logger.Email(to), logger.Err(err))
		metrics.RecordMail("failed")
		return ErrMailDelivery
	}
	metrics.RecordMail("sent")
	return nil
}
