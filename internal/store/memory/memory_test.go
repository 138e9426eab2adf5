package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
)

func strp(s string) *string { return &s }

func TestCreateAndFind(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.Create(ctx, repository.CreateUserInput{
		Email:    "a@x.com",
		Name:     "Ann",
		Password: strp("hash"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Nil(t, u.EmailVerified)
	require.False(t, u.Verified())

	byID, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", byID.Email)

	byEmail, err := s.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, byEmail.ID)
}

func TestFindNotFound(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.FindByID(ctx, "nope")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.True(t, repository.IsNotFound(err))

	_, err = s.FindByEmail(ctx, "nope@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateConflict(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.Create(ctx, repository.CreateUserInput{Email: "a@x.com"})
	require.NoError(t, err)

	// Cualquier fila existente con ese email es conflicto, verificada o no.
	_, err = s.Create(ctx, repository.CreateUserInput{Email: "a@x.com"})
	require.ErrorIs(t, err, repository.ErrConflict)
}

func TestUpdatePartial(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.Create(ctx, repository.CreateUserInput{Email: "a@x.com", Name: "Ann"})
	require.NoError(t, err)

	now := time.Now().UTC()
	got, err := s.Update(ctx, u.ID, repository.UpdateUserInput{
		EmailVerified: &now,
		MetaData:      map[string]string{"googleId": "g-1"},
	})
	require.NoError(t, err)
	require.True(t, got.Verified())
	require.Equal(t, "g-1", got.MetaData["googleId"])
	// nil = sin cambio
	require.Equal(t, "Ann", got.Name)

	_, err = s.Update(ctx, "nope", repository.UpdateUserInput{})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReturnsClones(t *testing.T) {
	s := New()
	ctx := context.Background()

	u, err := s.Create(ctx, repository.CreateUserInput{
		Email:    "a@x.com",
		MetaData: map[string]string{"googleId": "g-1"},
	})
	require.NoError(t, err)

	// Mutar lo devuelto no debe tocar el estado interno.
	u.MetaData["googleId"] = "hacked"
	u.Email = "other@x.com"

	fresh, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "g-1", fresh.MetaData["googleId"])
	require.Equal(t, "a@x.com", fresh.Email)
}
