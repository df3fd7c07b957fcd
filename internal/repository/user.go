package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeevithdev/spotq/internal/model"
)

// UserRepository persists and reads users.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository using the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user and returns it with ID and CreatedAt set.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, username, name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		u.ID,
		u.Username,
		u.Name,
		u.Role,
		u.PasswordHash,
	).Scan(&u.CreatedAt)
	if isUniqueViolation(err) {
		return &DuplicateError{Field: "username", Value: u.Username}
	}
	return err
}

// GetByUsername returns one user by case-insensitive username, or ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getOne(ctx, `
		SELECT id, username, name, role, password_hash, created_at
		FROM users WHERE lower(username) = lower($1)`, username)
}

// GetByID returns one user by id, or ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.getOne(ctx, `
		SELECT id, username, name, role, password_hash, created_at
		FROM users WHERE id = $1`, id)
}

// List returns all users ordered by created_at descending.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, username, name, role, password_hash, created_at
		FROM users
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[model.User])
}

// UpdatePasswordHash replaces the stored hash of one user.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	u, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return u, err
}
