package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(4) // cost mínimo para que el test sea rápido

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	require.NotEqual(t, "secret1", hash)
	require.True(t, strings.HasPrefix(hash, "$2"))

	require.True(t, h.Verify("secret1", hash))
	require.False(t, h.Verify("secret2", hash))
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(4)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	// Salt aleatorio: mismo input, hashes distintos, ambos verifican.
	require.NotEqual(t, a, b)
	require.True(t, h.Verify("secret1", a))
	require.True(t, h.Verify("secret1", b))
}

func TestHashEmptyPassword(t *testing.T) {
	h := NewHasher(4)
	_, err := h.Hash("")
	require.Error(t, err)
}

func TestVerifyMalformedHash(t *testing.T) {
	h := NewHasher(4)
	require.False(t, h.Verify("secret1", "not-a-bcrypt-hash"))
	require.False(t, h.Verify("secret1", ""))
}

func TestNewHasherClampsCost(t *testing.T) {
	require.Equal(t, DefaultCost, NewHasher(0).Cost)
	require.Equal(t, DefaultCost, NewHasher(99).Cost)
	require.Equal(t, 10, NewHasher(10).Cost)
}
