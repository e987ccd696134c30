package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/r4nb1r/ProfilePulse/internal/domain"
	"github.com/r4nb1r/ProfilePulse/pkg/database"
	apperrors "github.com/r4nb1r/ProfilePulse/pkg/errors"
)

const keyPrefix = "session:"

// SessionRepository implements repository.SessionRepository using Redis.
// Keys expire together with the session, so no pruning is needed.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a Redis-backed session store. ttl applies to
// sessions saved without an explicit expiry.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

// Get retrieves a session by id.
func (r *SessionRepository) Get(ctx context.Context, id string) (_ *domain.Session, err error) {
	key := keyPrefix + id
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "session.get", "GET "+keyPrefix+"*")
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("session", id)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

// Save persists the session until its expiry.
func (r *SessionRepository) Save(ctx context.Context, s *domain.Session) (err error) {
	key := keyPrefix + s.ID
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "session.save", "SET "+keyPrefix+"*")
	defer func() { end(err) }()

	ttl := r.ttl
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return r.client.Del(ctx, key).Err()
		}
	}

	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes the session.
func (r *SessionRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.TraceQuery(ctx, database.SystemRedis, "session.delete", "DEL "+keyPrefix+"*")
	defer func() { end(err) }()

	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
