package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Config holds Redis configuration
type Config struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis host is configured.
func (c Config) Enabled() bool { return c.Host != "" }

// Client wraps redis.Client
type Client struct {
	*redis.Client
}

// New creates a new Redis client
func New(config Config) (*Client, error) {
	addr := fmt.Sprintf("%s:%s", config.Host, config.Port)
	logger := log.With().Str("component", "redis").Str("addr", addr).Logger()
	logger.Info().Msg("connecting to redis")

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info().Msg("connected to redis")
	return &Client{Client: client}, nil
}

// Close closes the Redis client connection
func (c *Client) Close() error {
	log.Info().Str("component", "redis").Msg("closing redis connection")
	return c.Client.Close()
}

// HealthCheck performs a health check on the Redis connection
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
