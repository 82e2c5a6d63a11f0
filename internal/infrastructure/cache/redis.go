package cache

import (
	"context"
	"fmt"

	"storefront-identity/internal/config"
	"storefront-identity/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis. It returns (nil, nil) when no address is
// configured.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", cfg.Addr))
	return client, nil
}
