package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"hellodube-gateway/internal/database"
	"hellodube-gateway/internal/model"
)

type UserRepository struct {
	client *database.Client
}

func NewUserRepository(client *database.Client) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (model.User, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return model.User{}, err
	}

	var u model.User
	err = pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, role, last_login, created_at, updated_at
		 FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.Role, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByEmailWithPassword includes the password hash and exists only to serve
// the login path. Every other read leaves the hash behind.
func (r *UserRepository) FindByEmailWithPassword(ctx context.Context, email string) (model.User, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return model.User{}, err
	}

	var u model.User
	err = pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, password_hash, role, last_login, created_at, updated_at
		 FROM users WHERE lower(email) = lower($1)`, strings.TrimSpace(email)).
		Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role,
			&u.LastLogin, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return false, err
	}

	var exists bool
	err = pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE lower(email) = lower($1))`,
		strings.TrimSpace(email)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check email exists: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u model.User) error {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO users (id, first_name, last_name, email, password_hash, role, created_at, updated_at)
		 VALUES ($1, $2, $3, lower($4), $5, $6, $7, $8)`,
		u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// DeleteByEmail removes a user together with every session they own. Returns
// the number of users removed.
func (r *UserRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return 0, err
	}

	target := strings.TrimSpace(email)

	_, err = pool.Exec(ctx,
		`DELETE FROM refresh_tokens
		 WHERE user_id IN (SELECT id FROM users WHERE lower(email) = lower($1))`, target)
	if err != nil {
		return 0, fmt.Errorf("delete sessions by email: %w", err)
	}

	tag, err := pool.Exec(ctx,
		`DELETE FROM users WHERE lower(email) = lower($1)`, target)
	if err != nil {
		return 0, fmt.Errorf("delete user by email: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, userID string) error {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`,
		userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
