package cache

import (
	"context"
	"fmt"
	"time"

	"storefront-identity/internal/logger"
	apperrors "storefront-identity/pkg/errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const resetKeyPrefix = "reset:"

// ResetThrottle limits forgot-password requests per email with a fixed
// window counter.
type ResetThrottle struct {
	redis       *redis.Client
	maxRequests int
	window      time.Duration
}

func NewResetThrottle(client *redis.Client, maxRequests int, window time.Duration) *ResetThrottle {
	if maxRequests <= 0 {
		maxRequests = 5
	}
	if window <= 0 {
		window = time.Hour
	}
	return &ResetThrottle{
		redis:       client,
		maxRequests: maxRequests,
		window:      window,
	}
}

// Allow returns apperrors.ErrRateLimited once email exceeds the window budget.
// Redis failures are logged and the request is let through.
func (t *ResetThrottle) Allow(ctx context.Context, email string) error {
	key := resetKeyPrefix + email

	count, err := t.redis.Incr(ctx, key).Result()
	if err != nil {
		logger.Warn("Reset throttle unavailable", zap.Error(err))
		return nil
	}

	if count == 1 {
		if err := t.redis.Expire(ctx, key, t.window).Err(); err != nil {
			logger.Warn("Failed to set reset throttle window", zap.Error(err))
		}
	}

	if count > int64(t.maxRequests) {
		return fmt.Errorf("%w: reset requests for this address", apperrors.ErrRateLimited)
	}
	return nil
}

// NoopThrottle is used when Redis is not configured.
type NoopThrottle struct{}

func (NoopThrottle) Allow(context.Context, string) error { return nil }
