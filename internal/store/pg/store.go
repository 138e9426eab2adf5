// Package pg implementa repository.UserRepository sobre PostgreSQL (pgx).
package pg

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/authkit/internal/domain/repository"
)

type Store struct{ pool *pgxpool.Pool }

// Config tuning opcional del pool.
type Config struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxOpenConns)
	}
	// Mapear MaxIdleConns → MinConns (pgxpool)
	if cfg.MaxIdleConns > 0 {
		pcfg.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "" {
		if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
			pcfg.MaxConnLifetime = d
			pcfg.MaxConnIdleTime = d
		}
	}
	if pcfg.MaxConns == 0 {
		pcfg.MaxConns = 5
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Pool expone el pool interno (migraciones/metrics).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

const userCols = `id, email, name, password, image, email_verified, meta_data, created_at, updated_at`

func (s *Store) FindByID(ctx context.Context, id string) (*repository.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	return s.scanUser(s.pool.QueryRow(ctx, q, id))
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*repository.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE email = $1`
	return s.scanUser(s.pool.QueryRow(ctx, q, email))
}

func (s *Store) Create(ctx context.Context, in repository.CreateUserInput) (*repository.User, error) {
	meta := in.MetaData
	if meta == nil {
		meta = map[string]string{}
	}
	const q = `
INSERT INTO users (id, email, name, password, image, email_verified, meta_data)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + userCols
	row := s.pool.QueryRow(ctx, q,
		uuid.NewString(), in.Email, in.Name, in.Password, in.Image, in.EmailVerified, meta)
	u, err := s.scanUser(row)
	if err != nil {
		// El unique index de email es el enforcement real contra sign-ups
		// concurrentes del mismo email.
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return u, nil
}

func (s *Store) Update(ctx context.Context, id string, in repository.UpdateUserInput) (*repository.User, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, col+" = $"+strconv.Itoa(len(args)))
	}
	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Image != nil {
		add("image", *in.Image)
	}
	if in.EmailVerified != nil {
		add("email_verified", *in.EmailVerified)
	}
	if in.MetaData != nil {
		add("meta_data", in.MetaData)
	}

	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id = $1 RETURNING ` + userCols
	return s.scanUser(s.pool.QueryRow(ctx, q, args...))
}

func (s *Store) scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	var verified *time.Time
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Password, &u.Image,
		&verified, &u.MetaData, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	u.EmailVerified = verified
	if u.MetaData == nil {
		u.MetaData = map[string]string{}
	}
	return &u, nil
}
