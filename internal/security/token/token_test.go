package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	i := NewIssuer("test-secret")

	raw, err := i.Issue(Access, map[string]any{
		"id":    "u1",
		"email": "a@x.com",
		"name":  "Ann",
	})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := i.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, "u1", Str(claims, "id"))
	require.Equal(t, "a@x.com", Str(claims, "email"))
	require.Equal(t, "Ann", Str(claims, "name"))
}

func TestValidateExpired(t *testing.T) {
	i := NewIssuer("test-secret")
	i.AccessTTL = -time.Minute // ya expirado al emitir

	raw, err := i.Issue(Access, map[string]any{"id": "u1"})
	require.NoError(t, err)

	_, err = i.Validate(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	a := NewIssuer("secret-a")
	b := NewIssuer("secret-b")

	raw, err := a.Issue(Refresh, map[string]any{"id": "u1"})
	require.NoError(t, err)

	_, err = b.Validate(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTampered(t *testing.T) {
	i := NewIssuer("test-secret")

	raw, err := i.Issue(Access, map[string]any{"id": "u1"})
	require.NoError(t, err)

	// La causa (garbage, firma rota, malformado) no se distingue.
	for _, bad := range []string{
		raw + "x",
		"garbage",
		"",
		"a.b.c",
	} {
		_, err := i.Validate(bad)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTTLPerKind(t *testing.T) {
	i := NewIssuer("test-secret")
	require.Equal(t, 15*time.Minute, i.TTL(Access))
	require.Equal(t, 7*24*time.Hour, i.TTL(Refresh))
	require.Equal(t, 5*time.Minute, i.TTL(EmailVerification))
}

func TestIssueWithoutSecret(t *testing.T) {
	i := NewIssuer("")
	_, err := i.Issue(Access, map[string]any{"id": "u1"})
	require.ErrorIs(t, err, ErrNoSecret)

	_, err = i.Validate("whatever")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	b, err := GenerateOpaqueToken(32)
	require.NoError(t, err)

	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
