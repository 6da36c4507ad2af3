package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hellodube-gateway/internal/database"
	"hellodube-gateway/internal/model"
)

// SessionRepository owns the refresh_tokens table. One row per live session.
type SessionRepository struct {
	client *database.Client
}

func NewSessionRepository(client *database.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Store(ctx context.Context, s model.Session) error {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token, ip_address, user_agent, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.UserID, s.Token, s.IPAddress, s.UserAgent, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Find confirms a presented refresh token is still live for the given user.
func (r *SessionRepository) Find(ctx context.Context, token string, userID string) (model.Session, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return model.Session{}, err
	}

	var s model.Session
	err = pool.QueryRow(ctx,
		`SELECT id, user_id, token, ip_address, user_agent, expires_at, created_at
		 FROM refresh_tokens WHERE token = $1 AND user_id = $2`, token, userID).
		Scan(&s.ID, &s.UserID, &s.Token, &s.IPAddress, &s.UserAgent, &s.ExpiresAt, &s.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Session{}, model.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("find refresh token: %w", err)
	}
	return s, nil
}

func (r *SessionRepository) DeleteByID(ctx context.Context, id string) error {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

func (r *SessionRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token)
	if err != nil {
		return 0, fmt.Errorf("delete refresh token: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByTokenAndUser is the rotation step. The affected-row count tells the
// caller whether it won the delete; a concurrent rotation of the same token
// sees zero rows and must treat the token as already spent.
func (r *SessionRepository) DeleteByTokenAndUser(ctx context.Context, token string, userID string) (int64, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := pool.Exec(ctx,
		`DELETE FROM refresh_tokens WHERE token = $1 AND user_id = $2`, token, userID)
	if err != nil {
		return 0, fmt.Errorf("rotate refresh token: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteAllForUser(ctx context.Context, userID string) (int64, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete all refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CleanExpired sweeps rows past their expiry. Postgres has no TTL index, so
// the janitor calls this on an interval.
func (r *SessionRepository) CleanExpired(ctx context.Context) (int64, error) {
	pool, err := r.client.Pool(ctx)
	if err != nil {
		return 0, err
	}

	tag, err := pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("clean expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
