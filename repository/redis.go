package repository

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"strings"
	"time"
)

// SessionStore holds short-lived auth state: failed sign-in counters, revoked
// tokens and password reset tokens.
type SessionStore interface {
	LoginAttempts(ctx context.Context, email string) (int64, error)
	IncrementLoginAttempts(ctx context.Context, email string, window time.Duration) (int64, error)
	ResetLoginAttempts(ctx context.Context, email string) error
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	SaveResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}

// Cache is a byte cache with expiry.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Store is both a SessionStore and a Cache.
type Store interface {
	SessionStore
	Cache
}

type redisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{client: client}
}

func attemptsKey(email string) string {
	return "auth:attempts:" + strings.ToLower(strings.TrimSpace(email))
}

func (s *redisStore) LoginAttempts(ctx context.Context, email string) (int64, error) {
	n, err := s.client.Get(ctx, attemptsKey(email)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (s *redisStore) IncrementLoginAttempts(ctx context.Context, email string, window time.Duration) (int64, error) {
	key := attemptsKey(email)
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *redisStore) ResetLoginAttempts(ctx context.Context, email string) error {
	return s.client.Del(ctx, attemptsKey(email)).Err()
}

func (s *redisStore) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, "auth:revoked:"+tokenID, 1, ttl).Err()
}

func (s *redisStore) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, "auth:revoked:"+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *redisStore) SaveResetToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.client.Set(ctx, "auth:reset:"+token, userID.String(), ttl).Err()
}

func (s *redisStore) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	val, err := s.client.GetDel(ctx, "auth:reset:"+token).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrNotFound
	}
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(val)
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}
