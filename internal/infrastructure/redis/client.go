package redis

import (
	"context"
	"fmt"

	config "github.com/motorchat/datastore/configs"
	"github.com/go-redis/redis/v8"
)

// NewClient builds a Redis client from a connection URL and verifies the
// connection with a ping. The URL carries host, credentials, and DB number;
// timeouts come from config so every operation stays bounded.
func NewClient(cfg *config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}
