// Package auth contiene los controllers HTTP de autenticación.
package auth

import (
	"encoding/json"
	"net/http"

	dto "github.com/dropDatabas3/authkit/internal/http/dto/auth"
	"github.com/dropDatabas3/authkit/internal/http/helpers"
	svc "github.com/dropDatabas3/authkit/internal/http/services/auth"
)

const (
	maxBodySize     = 64 * 1024 // 64KB
	contentTypeJSON = "application/json; charset=utf-8"
)

// Options parámetros compartidos por los controllers.
type Options struct {
	// SecureCookies fuerza el flag Secure (deploys detrás de TLS).
	SecureCookies bool

	// FrontendOrigin destino del redirect post-callback OAuth.
	FrontendOrigin string
}

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	SignUp      *SignUpController
	SignIn      *SignInController
	VerifyEmail *VerifyEmailController
	SignOut     *SignOutController
	Refresh     *RefreshController
	OAuth       *OAuthController
}

// Services agrupa los contratos que consumen los controllers.
type Services struct {
	SignUp  svc.SignUpService
	SignIn  svc.SignInService
	Verify  svc.VerifyEmailService
	Refresh svc.RefreshService
	OAuth   svc.OAuthService
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s Services, opts Options) *Controllers {
	return &Controllers{
		SignUp:      NewSignUpController(s.SignUp),
		SignIn:      NewSignInController(s.SignIn, opts),
		VerifyEmail: NewVerifyEmailController(s.Verify, opts),
		SignOut:     NewSignOutController(opts),
		Refresh:     NewRefreshController(s.Refresh, opts),
		OAuth:       NewOAuthController(s.OAuth, opts),
	}
}

// ─── Helpers compartidos ───

// decodeJSON limita el body y decodea rechazando campos desconocidos.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// toUserResponse proyecta la vista pública del usuario.
func toUserResponse(s *svc.Session) dto.UserResponse {
	u := s.User
	return dto.UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		Name:          u.Name,
		Image:         u.Image,
		EmailVerified: u.EmailVerified,
		MetaData:      u.MetaData,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// setSessionCookies setea el par accessToken/refreshToken con expiry atado
// al TTL de cada token.
func setSessionCookies(w http.ResponseWriter, s *svc.Session, secure bool) {
	http.SetCookie(w, helpers.BuildCookie(helpers.AccessCookie, s.AccessToken, s.AccessTTL, secure))
	http.SetCookie(w, helpers.BuildCookie(helpers.RefreshCookie, s.RefreshToken, s.RefreshTTL, secure))
}

// writeJSON responde JSON con headers anti-cache (respuestas con tokens).
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
