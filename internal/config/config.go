package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
		// FrontendOrigin es el destino del redirect post-OAuth y la base
		// del link de verificación. Si está vacío se usa el primer CORS origin.
		FrontendOrigin string `yaml:"frontend_origin"`
	} `yaml:"server"`

	Storage struct {
		Driver   string `yaml:"driver"` // postgres | memory
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	Cache struct {
		Kind  string `yaml:"kind"` // memory | redis
		Redis struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Memory struct {
			DefaultTTL string `yaml:"default_ttl"`
		} `yaml:"memory"`
	} `yaml:"cache"`

	JWT struct {
		// Secret es la clave HMAC process-wide. Override: AUTHKIT_JWT_SECRET.
		Secret     string `yaml:"secret"`
		AccessTTL  string `yaml:"access_ttl"`
		RefreshTTL string `yaml:"refresh_ttl"`
		VerifyTTL  string `yaml:"verify_ttl"`
	} `yaml:"jwt"`

	Security struct {
		BcryptCost int `yaml:"bcrypt_cost"`
	} `yaml:"security"`

	SMTP struct {
		Host               string `yaml:"host"`
		Port               int    `yaml:"port"`
		Username           string `yaml:"username"`
		Password           string `yaml:"password"`
		From               string `yaml:"from"`
		TLS                string `yaml:"tls"`                  // auto | starttls | ssl | none
		InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // sólo dev
	} `yaml:"smtp"`

	Providers struct {
		// StateTTL es el TTL del state anti-CSRF del flujo OAuth.
		StateTTL time.Duration `yaml:"state_ttl"`
		Google   OAuthClient   `yaml:"google"`
		GitHub   OAuthClient   `yaml:"github"`
	} `yaml:"providers"`

	Flags struct {
		Migrate bool `yaml:"migrate"`
	} `yaml:"flags"`
}

// OAuthClient son las credenciales de un provider externo.
// Un provider sin client_id queda deshabilitado.
type OAuthClient struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// RedirectURL debe apuntar a /v1/auth/callback/<provider> de este servicio.
	RedirectURL string `yaml:"redirect_url"`
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Cache.Kind == "" {
		c.Cache.Kind = "memory"
	}
	if c.Cache.Memory.DefaultTTL == "" {
		c.Cache.Memory.DefaultTTL = "2m"
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "15m"
	}
	if c.JWT.RefreshTTL == "" {
		c.JWT.RefreshTTL = "168h" // 7d
	}
	if c.JWT.VerifyTTL == "" {
		c.JWT.VerifyTTL = "5m"
	}
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 15
	}
	if c.SMTP.TLS == "" {
		c.SMTP.TLS = "auto"
	}
	if c.Providers.StateTTL == 0 {
		c.Providers.StateTTL = 10 * time.Minute
	}
	if c.Server.FrontendOrigin == "" && len(c.Server.CORSAllowedOrigins) > 0 {
		c.Server.FrontendOrigin = c.Server.CORSAllowedOrigins[0]
	}

	c.applyEnvOverrides()

	// validate string durations
	for _, s := range []string{c.JWT.AccessTTL, c.JWT.RefreshTTL, c.JWT.VerifyTTL, c.Cache.Memory.DefaultTTL} {
		if _, err := time.ParseDuration(s); err != nil {
			return nil, err
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, err
		}
	}
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return nil, fmt.Errorf("config: jwt.secret is required (or AUTHKIT_JWT_SECRET)")
	}

	return &c, nil
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
// Los secretos nunca deberían vivir en el YAML commiteado.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("AUTHKIT_JWT_SECRET"); ok {
		c.JWT.Secret = v
	}
	if v, ok := getEnvStr("AUTHKIT_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("AUTHKIT_SMTP_PASSWORD"); ok {
		c.SMTP.Password = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_ID"); ok {
		c.Providers.Google.ClientID = v
	}
	if v, ok := getEnvStr("GOOGLE_CLIENT_SECRET"); ok {
		c.Providers.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("GITHUB_CLIENT_ID"); ok {
		c.Providers.GitHub.ClientID = v
	}
	if v, ok := getEnvStr("GITHUB_CLIENT_SECRET"); ok {
		c.Providers.GitHub.ClientSecret = v
	}
	if v, ok := getEnvBool("AUTHKIT_MIGRATE"); ok {
		c.Flags.Migrate = v
	}
}

// AccessTTL retorna la duración del access token ya parseada.
func (c *Config) AccessTTL() time.Duration { return mustDur(c.JWT.AccessTTL) }

// RefreshTTL retorna la duración del refresh token ya parseada.
func (c *Config) RefreshTTL() time.Duration { return mustDur(c.JWT.RefreshTTL) }

// VerifyTTL retorna la duración del token de verificación de email.
func (c *Config) VerifyTTL() time.Duration { return mustDur(c.JWT.VerifyTTL) }

// mustDur asume que Load ya validó el string.
func mustDur(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}
