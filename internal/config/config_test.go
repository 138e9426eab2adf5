package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: test-secret
`)
	c, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":8080", c.Server.Addr)
	require.Equal(t, "memory", c.Storage.Driver)
	require.Equal(t, "memory", c.Cache.Kind)
	require.Equal(t, 15, c.Security.BcryptCost)
	require.Equal(t, 15*time.Minute, c.AccessTTL())
	require.Equal(t, 7*24*time.Hour, c.RefreshTTL())
	require.Equal(t, 5*time.Minute, c.VerifyTTL())
	require.Equal(t, 10*time.Minute, c.Providers.StateTTL)
}

func TestLoadRequiresSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9999"
`)
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "jwt.secret")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AUTHKIT_JWT_SECRET", "env-secret")
	t.Setenv("GOOGLE_CLIENT_ID", "g-id")
	t.Setenv("AUTHKIT_MIGRATE", "true")

	path := writeConfig(t, `
jwt:
  secret: yaml-secret
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "env-secret", c.JWT.Secret)
	require.Equal(t, "g-id", c.Providers.Google.ClientID)
	require.True(t, c.Flags.Migrate)
}

func TestLoadInvalidDuration(t *testing.T) {
	path := writeConfig(t, `
jwt:
  secret: test-secret
  access_ttl: "not-a-duration"
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestFrontendOriginFallsBackToCORS(t *testing.T) {
	path := writeConfig(t, `
server:
  cors_allowed_origins: ["http://front.example", "http://other.example"]
jwt:
  secret: test-secret
`)
	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "http://front.example", c.Server.FrontendOrigin)
}
