package config

import (
	"context"
	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"time"
)

// PingRedis waits for redis to answer, retrying with the same policy as the queue connection.
func PingRedis(ctx context.Context, client *redis.Client) error {
	operation := func() (string, error) {
		res, err := client.Ping(ctx).Result()
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("Failed to ping Redis. Retrying...")
			return "", err
		}
		return res, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 10 * time.Second
	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(5))
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Msg("Successfully connected to Redis")
	return nil
}
