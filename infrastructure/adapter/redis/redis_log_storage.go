package redis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/fixora/archive/application/port/outbound"
)

// DefaultKeyPrefix namespaces archive keys
const DefaultKeyPrefix = "archive:"

// RedisLogStorage stores every log as a Redis list, one element per line
type RedisLogStorage struct {
	client *redis.Client
	prefix string
	logger *logrus.Logger
}

// NewRedisClient parses a redis:// URL and checks the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisLogStorage creates a storage writing keys {prefix}{name}
func NewRedisLogStorage(client *redis.Client, prefix string, logger *logrus.Logger) *RedisLogStorage {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RedisLogStorage{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (s *RedisLogStorage) key(name string) string {
	return s.prefix + name
}

func (s *RedisLogStorage) Open(ctx context.Context, name string) (outbound.LogHandle, bool, error) {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, false, err
	}

	s.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key":    s.key(name),
		"exists": exists,
	}).Debug("Redis log opened")

	return &redisHandle{
		storage:   s,
		key:       s.key(name),
		mustExist: exists,
	}, !exists, nil
}

func (s *RedisLogStorage) ReadLines(ctx context.Context, name string) ([]string, error) {
	exists, err := s.Exists(ctx, name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, outbound.ErrLogNotFound
	}

	lines, err := s.client.LRange(ctx, s.key(name), 0, -1).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to read log")
		return nil, fmt.Errorf("failed to read log: %w", err)
	}
	return lines, nil
}

func (s *RedisLogStorage) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(name)).Result()
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).Error("Failed to check log")
		return false, fmt.Errorf("failed to check log: %w", err)
	}
	return n > 0, nil
}

// redisHandle appends with RPUSHX once the list exists, so a list deleted
// elsewhere is reported instead of silently recreated.
type redisHandle struct {
	mu        sync.Mutex
	storage   *RedisLogStorage
	key       string
	mustExist bool
	closed    bool
}

func (h *redisHandle) AppendLine(ctx context.Context, line string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return outbound.ErrLogClosed
	}

	client := h.storage.client
	if !h.mustExist {
		if err := client.RPush(ctx, h.key, line).Err(); err != nil {
			h.storage.logger.WithContext(ctx).WithError(err).Error("Failed to append log line")
			return fmt.Errorf("failed to append log line: %w", err)
		}
		h.mustExist = true
		return nil
	}

	length, err := client.RPushX(ctx, h.key, line).Result()
	if err != nil {
		h.storage.logger.WithContext(ctx).WithError(err).Error("Failed to append log line")
		return fmt.Errorf("failed to append log line: %w", err)
	}
	if length == 0 {
		h.storage.logger.WithContext(ctx).WithFields(logrus.Fields{
			"key": h.key,
		}).Warn("Log removed while open")
		return outbound.ErrLogRemoved
	}
	return nil
}

func (h *redisHandle) Delete(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	n, err := h.storage.client.Del(ctx, h.key).Result()
	if err != nil {
		h.storage.logger.WithContext(ctx).WithError(err).Error("Failed to delete log")
		return fmt.Errorf("failed to delete log: %w", err)
	}
	if n == 0 {
		return outbound.ErrLogNotFound
	}
	h.closed = true

	h.storage.logger.WithContext(ctx).WithFields(logrus.Fields{
		"key": h.key,
	}).Info("Log deleted")
	return nil
}

func (h *redisHandle) Close() error {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	return nil
}
