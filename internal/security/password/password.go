// Package password implementa el hashing one-way de contraseñas con bcrypt.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost es el work factor por defecto (equivalente a genSalt(15)).
const DefaultCost = 15

// Hasher encapsula el cost para poder bajarlo en tests/dev.
type Hasher struct {
	Cost int
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}
	return &Hasher{Cost: cost}
}

// Hash devuelve el hash bcrypt del password. El salt es aleatorio, así que
// el mismo input produce outputs distintos entre llamadas.
func (h *Hasher) Hash(plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("empty password")
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify compara en tiempo constante (el compare viene de la librería).
// Un hash malformado devuelve false, nunca panic ni error al caller.
func (h *Hasher) Verify(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}
