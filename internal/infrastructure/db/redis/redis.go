// Package redis holds the short-lived state of the CRM: login sessions and
// service-order idempotency keys. Both expire on their own, so nothing here
// needs a migration or cleanup job.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout = 5 * time.Second
	// Request-path commands are single key reads and writes.
	defaultCommandTimeout = time.Second
)

type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dialing and the startup ping.
	Timeout time.Duration
}

// Connect opens the client shared by SessionStore and IdempotencyStore and
// fails fast when the server does not answer a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	dial := cfg.Timeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dial,
		ReadTimeout:  defaultCommandTimeout,
		WriteTimeout: defaultCommandTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()

	if err := Healthcheck(client)(pingCtx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Healthcheck returns the readiness probe for client.
func Healthcheck(client *redis.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping at %s: %w", client.Options().Addr, err)
		}
		return nil
	}
}
