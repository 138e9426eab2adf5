// Package oauth implementa el sign-in contra providers de identidad externos.
//
// Los providers viven en una tabla cerrada: cada entrada trae sus endpoints
// y su función de normalización de perfil. Agregar un provider es agregar
// una entrada, no un branch nuevo.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Profile es la forma normalizada del perfil, independiente del provider.
type Profile struct {
	ID      string
	Email   string
	Name    string
	Picture string
}

// Provider describe un identity provider externo.
type Provider struct {
	Name         string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	EmailURL     string // secundario; sólo github lo necesita
	Scopes       string
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// normalize convierte el JSON crudo de UserInfoURL al Profile común.
	normalize func(raw map[string]any) Profile
}

// Credentials son las credenciales de cliente de un provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Registry es la tabla cerrada de providers habilitados.
type Registry struct {
	providers map[string]*Provider
	http      *http.Client
}

// NewRegistry arma la tabla con google y github.
// Un provider sin client id queda fuera de la tabla (deshabilitado).
func NewRegistry(google, github Credentials) *Registry {
	r := &Registry{
		providers: map[string]*Provider{},
		http:      &http.Client{Timeout: 10 * time.Second},
	}
	if google.ClientID != "" {
		r.providers["google"] = &Provider{
			Name:         "google",
			AuthURL:      "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL:     "https://oauth2.googleapis.com/token",
			UserInfoURL:  "https://www.googleapis.com/oauth2/v2/userinfo",
			Scopes:       "https://www.googleapis.com/auth/userinfo.profile https://www.googleapis.com/auth/userinfo.email",
			ClientID:     google.ClientID,
			ClientSecret: google.ClientSecret,
			RedirectURL:  google.RedirectURL,
			normalize: func(raw map[string]any) Profile {
				return Profile{
					ID:      str(raw["id"]),
					Email:   str(raw["email"]),
					Name:    str(raw["name"]),
					Picture: str(raw["picture"]),
				}
			},
		}
	}
	if github.ClientID != "" {
		r.providers["github"] = &Provider{
			Name:         "github",
			AuthURL:      "https://github.com/login/oauth/authorize",
			TokenURL:     "https://github.com/login/oauth/access_token",
			UserInfoURL:  "https://api.github.com/user",
			EmailURL:     "https://api.github.com/user/emails",
			Scopes:       "user:email",
			ClientID:     github.ClientID,
			ClientSecret: github.ClientSecret,
			RedirectURL:  github.RedirectURL,
			normalize: func(raw map[string]any) Profile {
				return Profile{
					ID:      str(raw["id"]),
					Email:   str(raw["email"]),
					Name:    str(raw["name"]),
					Picture: str(raw["avatar_url"]),
				}
			},
		}
	}
	return r
}

// Get devuelve el provider por nombre.
func (r *Registry) Get(name string) (*Provider, bool) {
	p, ok := r.providers[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// AuthCodeURL construye la URL de autorización del provider.
func (r *Registry) AuthCodeURL(p *Provider, state string) string {
	u, _ := url.Parse(p.AuthURL)
	q := u.Query()
	q.Set("response_type", "code")
	q.Set("client_id", p.ClientID)
	q.Set("redirect_uri", p.RedirectURL)
	q.Set("scope", p.Scopes)
	q.Set("state", state)
	u.RawQuery = q.Encode()
	return u.String()
}

// tokenResponse es la respuesta del token endpoint.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Error       string `json:"error,omitempty"`
	ErrorDesc   string `json:"error_description,omitempty"`
}

// Exchange intercambia el authorization code por un access token del provider.
func (r *Registry) Exchange(ctx context.Context, p *Provider, code string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", p.ClientID)
	form.Set("client_secret", p.ClientSecret)
	form.Set("code", code)
	form.Set("redirect_uri", p.RedirectURL)

	req, err := http.NewRequestWithContext(ctx, "POST", p.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tr.Error != "" {
		return "", fmt.Errorf("%s oauth error: %s - %s", p.Name, tr.Error, tr.ErrorDesc)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("no access_token in %s response", p.Name)
	}
	return tr.AccessToken, nil
}

// FetchProfile trae el perfil del provider y lo normaliza.
// GitHub puede devolver email vacío en /user (emails privados); en ese caso
// se consulta el endpoint secundario y se toma la dirección primary.
func (r *Registry) FetchProfile(ctx context.Context, p *Provider, accessToken string) (*Profile, error) {
	raw, err := r.getJSON(ctx, p.UserInfoURL, accessToken)
	if err != nil {
		return nil, err
	}
	prof := p.normalize(raw)

	if prof.Email == "" && p.EmailURL != "" {
		email, err := r.fetchPrimaryEmail(ctx, p, accessToken)
		if err != nil {
			return nil, err
		}
		prof.Email = email
	}
	return &prof, nil
}

type emailInfo struct {
	Email   string `json:"email"`
	Primary bool   `json:"primary"`
}

func (r *Registry) fetchPrimaryEmail(ctx context.Context, p *Provider, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.EmailURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s emails api: status %d", p.Name, resp.StatusCode)
	}

	var emails []emailInfo
	if err := json.NewDecoder(resp.Body).Decode(&emails); err != nil {
		return "", fmt.Errorf("decode emails: %w", err)
	}
	for _, e := range emails {
		if e.Primary {
			return e.Email, nil
		}
	}
	return "", nil
}

func (r *Registry) getJSON(ctx context.Context, endpoint, accessToken string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo api: status %d", resp.StatusCode)
	}

	var raw map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return raw, nil
}

// str normaliza ids numéricos (github) y strings al mismo tipo.
func str(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.0f", t)
	default:
		return ""
	}
}
