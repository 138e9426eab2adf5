// Package validation contiene las reglas de validación de input de auth.
package validation

import "regexp"

// Email shape: algo@algo.tld, sin espacios. No intentamos RFC 5322 completo.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail returns true if the provided address matches the allowed pattern.
func ValidEmail(s string) bool {
	return len(s) <= 254 && emailRe.MatchString(s)
}

// SignUp valida el input de registro. Devuelve el primer mensaje de error,
// vacío si todo está bien.
func SignUp(name, email, password string) string {
	if name == "" {
		return "Name is required"
	}
	if len([]rune(name)) < 3 {
		return "Name must be at least 3 characters long"
	}
	if msg := SignIn(email, password); msg != "" {
		return msg
	}
	return ""
}

// SignIn valida el input de login.
func SignIn(email, password string) string {
	if email == "" {
		return "Email is required"
	}
	if !ValidEmail(email) {
		return "Invalid email address"
	}
	if password == "" {
		return "Password is required"
	}
	if len(password) < 6 {
		return "Password must be at least 6 characters long"
	}
	return ""
}
