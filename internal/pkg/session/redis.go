package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mx-space/portfolio/internal/models"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "portfolio:session:"

// RedisStore keeps sessions as JSON values whose TTL matches the session expiry.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) key(id string) string { return redisKeyPrefix + id }

func (s *RedisStore) Save(ctx context.Context, sess *models.UserSession) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", sess.ID)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(sess.ID), data, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.UserSession, error) {
	data, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var sess models.UserSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &sess, nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string, at time.Time) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	sess.RevokedAt = &at
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(id), data, redis.KeepTTL).Err()
}
