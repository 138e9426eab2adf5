// Package repository define los contratos de persistencia del dominio.
package repository

import (
	"context"
	"time"
)

// User representa un usuario del sistema.
type User struct {
	ID    string
	Email string
	Name  string

	// Password es el hash bcrypt. nil para cuentas puramente OAuth.
	Password *string

	// Image es la URL de la foto de perfil (opcional).
	Image string

	// EmailVerified es el timestamp de verificación; presencia = verificado.
	// Invariante: monotónico, una vez seteado nunca se limpia.
	EmailVerified *time.Time

	// MetaData mapea "<provider>Id" -> id de cuenta del provider
	// (ej: "googleId"). Permite linkear un email a varias identidades OAuth.
	MetaData map[string]string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Verified indica si el email del usuario está verificado.
func (u *User) Verified() bool {
	return u.EmailVerified != nil
}

// CreateUserInput contiene los datos para crear un usuario.
// Password ya viene hasheado; el repositorio nunca ve plaintext.
type CreateUserInput struct {
	Email         string
	Name          string
	Password      *string
	Image         string
	EmailVerified *time.Time
	MetaData      map[string]string
}

// UpdateUserInput contiene los campos actualizables. nil = sin cambio.
type UpdateUserInput struct {
	Name          *string
	Image         *string
	EmailVerified *time.Time
	MetaData      map[string]string
}

// UserRepository define operaciones sobre usuarios.
//
// La unicidad de email se garantiza acá (constraint del store), no en los
// services: dos sign-ups concurrentes del mismo email pueden pasar ambos el
// check de "no existe", y es el constraint el que resuelve la carrera.
type UserRepository interface {
	// FindByID busca un usuario por ID. Retorna ErrNotFound si no existe.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail busca un usuario por email. Retorna ErrNotFound si no existe.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create inserta un usuario nuevo. Retorna ErrConflict si el email ya existe.
	Create(ctx context.Context, in CreateUserInput) (*User, error)

	// Update aplica cambios parciales. Retorna ErrNotFound si no existe.
	Update(ctx context.Context, id string, in UpdateUserInput) (*User, error)
}
