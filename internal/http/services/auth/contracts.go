// Package auth implementa la lógica de negocio del ciclo de vida de sesión:
// registro, verificación de email, login con password, login social y refresh.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
)

// Errores de negocio. Los controllers los mapean a AppError vía errors.Is.
var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrMailDelivery       = errors.New("mail delivery failed")
	ErrUnknownProvider    = errors.New("unknown oauth provider")
	ErrOAuthProfile       = errors.New("oauth profile unavailable")
)

// Session es el resultado de una operación que abre (o renueva) sesión.
// Los TTLs viajan junto a los tokens para que el controller pueda armar
// cookies con expiry consistente.
type Session struct {
	User         *repository.User
	AccessToken  string
	RefreshToken string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

// SignUpService registra usuarios nuevos.
type SignUpService interface {
	// SignUp crea el usuario y dispara el mail de verificación.
	// No abre sesión: el primer login es via verify-email.
	SignUp(ctx context.Context, name, email, password string) error
}

// SignInService autentica con email y password.
type SignInService interface {
	// SignIn devuelve (session, false, nil) en login exitoso.
	// Para cuentas sin verificar reenvía el link y devuelve (nil, true, nil):
	// el caller responde "verification sent" sin abrir sesión.
	SignIn(ctx context.Context, email, password string) (*Session, bool, error)
}

// VerifyEmailService consume tokens de verificación.
type VerifyEmailService interface {
	// VerifyEmail marca el email como verificado y abre la primera sesión.
	VerifyEmail(ctx context.Context, rawToken string) (*Session, error)
}

// RefreshService renueva sesiones.
type RefreshService interface {
	// Refresh valida el refresh token y reemite el par con el estado
	// actual del usuario.
	Refresh(ctx context.Context, rawToken string) (*Session, error)
}

// OAuthService implementa el flujo authorization-code contra providers.
type OAuthService interface {
	// Start genera el state anti-CSRF y devuelve la URL de autorización.
	Start(ctx context.Context, provider string) (string, error)

	// Callback consume code+state, resuelve el usuario local y abre sesión.
	Callback(ctx context.Context, provider, code, state string) (*Session, error)
}
