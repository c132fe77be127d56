package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/vdsasi/NoteSharingApp/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionRepository stores opaque session ids in Redis so logout revokes
// access immediately. Keys are "session:<id>" -> user id with a TTL.
type SessionRepository interface {
	Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

type sessionRepository struct {
	client *redis.Client
	prefix string
}

func NewSessionRepository(client *redis.Client, prefix string) SessionRepository {
	if prefix == "" {
		prefix = "session:"
	}
	return &sessionRepository{client: client, prefix: prefix}
}

func (r *sessionRepository) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *sessionRepository) Create(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	return withRetry(func() error {
		if err := r.client.Set(ctx, r.key(sessionID), userID, ttl).Err(); err != nil {
			return fmt.Errorf("failed to store session: %w", err)
		}
		return nil
	})
}

// Get resolves a session id to a user id. A missing or expired session is
// ErrAnonymous, not a storage failure.
func (r *sessionRepository) Get(ctx context.Context, sessionID string) (string, error) {
	var userID string
	err := withRetry(func() error {
		var err error
		userID, err = r.client.Get(ctx, r.key(sessionID)).Result()
		if err == redis.Nil {
			return domain.ErrAnonymous
		}
		if err != nil {
			return fmt.Errorf("failed to read session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	return withRetry(func() error {
		if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}
