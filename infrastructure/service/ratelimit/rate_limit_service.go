package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// Limiter decides whether a caller identified by key may proceed
type Limiter interface {
	// Allow counts one request for key. When the budget is spent it returns
	// false and the time until the window resets.
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type RateLimitConfig struct {
	Enabled   bool
	Requests  int
	Window    time.Duration
	KeyPrefix string
}

// redisLimiter is a fixed-window counter per key
type redisLimiter struct {
	client *redis.Client
	logger *logrus.Logger
	config RateLimitConfig
}

// NewRateLimitService returns a redis backed limiter, or one that allows
// everything when rate limiting is disabled
func NewRateLimitService(client *redis.Client, config RateLimitConfig, logger *logrus.Logger) Limiter {
	if !config.Enabled || client == nil {
		logger.Info("Rate limiting disabled")
		return noopLimiter{}
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "ratelimit:"
	}

	logger.WithFields(logrus.Fields{
		"requests": config.Requests,
		"window":   config.Window,
	}).Info("Rate limiting service initialized")

	return &redisLimiter{client: client, logger: logger, config: config}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	key = l.config.KeyPrefix + key

	// the counter is created with its window in the same transaction, so it always expires
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, key, 0, l.config.Window)
		incr = pipe.Incr(ctx, key)
		return nil
	})
	// SET NX answers nil when the counter already exists
	if err != nil && !errors.Is(err, redis.Nil) {
		l.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return false, 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}
	count, err := incr.Result()
	if err != nil {
		l.logger.WithContext(ctx).WithError(err).Error("Failed to increment rate limit counter")
		return false, 0, fmt.Errorf("failed to increment rate limit: %w", err)
	}

	if count <= int64(l.config.Requests) {
		return true, 0, nil
	}

	ttl, err := l.client.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = l.config.Window
	}

	l.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":   key,
		"count": count,
		"limit": l.config.Requests,
	}).Warn("Rate limit exceeded")

	return false, ttl, nil
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (bool, time.Duration, error) {
	return true, 0, nil
}
