// Package token emite y valida los tokens firmados del servicio.
//
// Hay tres kinds, cada uno con su TTL:
//
//   - ACCESS_TOKEN (15m): snapshot desnormalizado del usuario.
//   - REFRESH_TOKEN (7d): sólo el id del usuario.
//   - EMAIL_VERIFICATION (5m): sólo el email.
//
// Son bearer tokens stateless firmados con una clave HMAC process-wide:
// no hay store server-side ni revocación, un token vale hasta que expire.
package token

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

// Kind identifica el propósito del token.
type Kind string

const (
	Access            Kind = "ACCESS_TOKEN"
	Refresh           Kind = "REFRESH_TOKEN"
	EmailVerification Kind = "EMAIL_VERIFICATION"
)

// ErrInvalidToken cubre firma inválida, expirado y malformado.
// A propósito no se distingue la causa hacia el caller.
var ErrInvalidToken = errors.New("invalid token")

// ErrNoSecret indica que el issuer se construyó sin clave.
var ErrNoSecret = errors.New("missing signing secret")

// Issuer firma tokens HS256 con la clave compartida del proceso.
type Issuer struct {
	secret []byte

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	VerifyTTL  time.Duration
}

// NewIssuer crea un Issuer con los TTLs por defecto del servicio.
func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret:     []byte(secret),
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
		VerifyTTL:  5 * time.Minute,
	}
}

// TTL devuelve la vigencia configurada para un kind.
func (i *Issuer) TTL(kind Kind) time.Duration {
	switch kind {
	case Refresh:
		return i.RefreshTTL
	case EmailVerification:
		return i.VerifyTTL
	default:
		return i.AccessTTL
	}
}

// Issue firma payload con expiry derivado del kind.
// Devuelve error en fallo de firma (ej: secret ausente); el caller debe
// tratarlo como error operacional fatal, no como input inválido.
func (i *Issuer) Issue(kind Kind, payload map[string]any) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrNoSecret
	}
	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"iat": now.Unix(),
		"exp": now.Add(i.TTL(kind)).Unix(),
	}
	for k, v := range payload {
		claims[k] = v
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", err
	}
	return signed, nil
}

// Validate verifica firma y expiry y devuelve las claims decodificadas.
// Cualquier fallo colapsa en ErrInvalidToken.
func (i *Issuer) Validate(raw string) (jwtv5.MapClaims, error) {
	if len(i.secret) == 0 {
		return nil, ErrInvalidToken
	}
	tok, err := jwtv5.Parse(raw,
		func(*jwtv5.Token) (any, error) { return i.secret, nil },
		jwtv5.WithValidMethods([]string{"HS256"}),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwtv5.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Str extrae una claim string (vacío si falta o no es string).
func Str(m jwtv5.MapClaims, k string) string {
	s, _ := m[k].(string)
	return s
}
