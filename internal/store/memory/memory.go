// Package memory implementa repository.UserRepository en memoria.
// Pensado para desarrollo y tests; replica la semántica del driver pg,
// incluido el constraint de unicidad de email.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
)

type Store struct {
	mu      sync.RWMutex
	byID    map[string]*repository.User
	byEmail map[string]string // email -> id
}

func New() *Store {
	return &Store{
		byID:    map[string]*repository.User{},
		byEmail: map[string]string{},
	}
}

func (s *Store) FindByID(_ context.Context, id string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(s.byID[id]), nil
}

func (s *Store) Create(_ context.Context, in repository.CreateUserInput) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[in.Email]; exists {
		return nil, repository.ErrConflict
	}
	now := time.Now().UTC()
	u := &repository.User{
		ID:            uuid.NewString(),
		Email:         in.Email,
		Name:          in.Name,
		Password:      in.Password,
		Image:         in.Image,
		EmailVerified: in.EmailVerified,
		MetaData:      map[string]string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for k, v := range in.MetaData {
		u.MetaData[k] = v
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return clone(u), nil
}

func (s *Store) Update(_ context.Context, id string, in repository.UpdateUserInput) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Image != nil {
		u.Image = *in.Image
	}
	if in.EmailVerified != nil {
		t := *in.EmailVerified
		u.EmailVerified = &t
	}
	if in.MetaData != nil {
		u.MetaData = map[string]string{}
		for k, v := range in.MetaData {
			u.MetaData[k] = v
		}
	}
	u.UpdatedAt = time.Now().UTC()
	return clone(u), nil
}

// clone evita que los callers muten el estado interno del store.
func clone(u *repository.User) *repository.User {
	out := *u
	if u.Password != nil {
		p := *u.Password
		out.Password = &p
	}
	if u.EmailVerified != nil {
		t := *u.EmailVerified
		out.EmailVerified = &t
	}
	out.MetaData = map[string]string{}
	for k, v := range u.MetaData {
		out.MetaData[k] = v
	}
	return &out
}
