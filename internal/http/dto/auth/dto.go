// Package auth define los DTOs de request/response de los endpoints de auth.
package auth

import "time"

// SignUpRequest payload de POST /v1/auth/sign-up.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInRequest payload de POST /v1/auth/sign-in.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyEmailRequest payload de POST /v1/auth/verify-email.
type VerifyEmailRequest struct {
	Token string `json:"token"`
}

// MessageResponse respuesta genérica {status, message}.
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UserResponse es la vista pública del usuario (nunca incluye el hash).
type UserResponse struct {
	ID            string            `json:"id"`
	Email         string            `json:"email"`
	Name          string            `json:"name"`
	Image         string            `json:"image,omitempty"`
	EmailVerified *time.Time        `json:"emailVerified"`
	MetaData      map[string]string `json:"metaData,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// SessionResponse respuesta de los endpoints que abren sesión.
type SessionResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}
