package api

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/solocreator/planner/errs"
)

const loginWindow = time.Minute

// LoginThrottle limits login attempts per client.
type LoginThrottle interface {
	// Allow records an attempt by client and returns an error once the client is over its limit.
	Allow(ctx context.Context, client string) error
}

// counterStore is the part of a redis client the throttle needs.
type counterStore interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisThrottle counts attempts in fixed one minute windows.
type RedisThrottle struct {
	store counterStore
	limit int
}

func NewRedisThrottle(client *redis.Client, limit int) RedisThrottle {
	return RedisThrottle{store: client, limit: limit}
}

func (t RedisThrottle) Allow(ctx context.Context, client string) error {
	key := fmt.Sprintf("login:%s", client)
	count, err := t.store.Incr(ctx, key).Result()
	if err != nil {
		// Fail open while redis is unreachable.
		log.Warn().Err(err).Str("client", client).Msg("Login throttle unavailable")
		return nil
	}
	if count == 1 {
		if err := t.store.Expire(ctx, key, loginWindow).Err(); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Could not set throttle expiry")
		}
	}
	if count > int64(t.limit) {
		return errs.NewRateLimitError("login", loginWindow)
	}
	return nil
}

type noThrottle struct{}

func (noThrottle) Allow(context.Context, string) error {
	return nil
}
