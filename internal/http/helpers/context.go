package helpers

import (
	"context"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
)

type ctxKey int

const userKey ctxKey = iota

// WithUser guarda el usuario autenticado en el contexto del request.
func WithUser(ctx context.Context, u *repository.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext devuelve el usuario autenticado, si el middleware lo cargó.
func UserFromContext(ctx context.Context) (*repository.User, bool) {
	u, ok := ctx.Value(userKey).(*repository.User)
	return u, ok
}
