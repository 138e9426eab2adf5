package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignUp(t *testing.T) {
	cases := []struct {
		name     string
		n, e, p  string
		wantMsg  string
	}{
		{"valid", "Ann", "a@x.com", "secret1", ""},
		{"missing name", "", "a@x.com", "secret1", "Name is required"},
		{"short name", "Al", "a@x.com", "secret1", "Name must be at least 3 characters long"},
		{"bad email", "Ann", "not-an-email", "secret1", "Invalid email address"},
		{"short password", "Ann", "a@x.com", "12345", "Password must be at least 6 characters long"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.wantMsg, SignUp(tc.n, tc.e, tc.p))
		})
	}
}

func TestSignIn(t *testing.T) {
	require.Empty(t, SignIn("a@x.com", "secret1"))
	require.Equal(t, "Email is required", SignIn("", "secret1"))
	require.Equal(t, "Invalid email address", SignIn("a@b", "secret1"))
	require.Equal(t, "Password is required", SignIn("a@x.com", ""))
	require.Equal(t, "Password must be at least 6 characters long", SignIn("a@x.com", "12345"))
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"a@x.com", "user.name+tag@sub.dominio.ar"} {
		require.True(t, ValidEmail(ok), ok)
	}
	for _, bad := range []string{"", "a", "a@b", "a b@x.com", "@x.com", "a@.com "} {
		require.False(t, ValidEmail(bad), bad)
	}
}
