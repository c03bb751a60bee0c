package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/fixora/archive/application/port/outbound"
	"github.com/fixora/archive/infrastructure/adapter/file"
	"github.com/fixora/archive/infrastructure/adapter/memory"
	"github.com/fixora/archive/infrastructure/adapter/postgres"
	redisadapter "github.com/fixora/archive/infrastructure/adapter/redis"
	"github.com/fixora/archive/infrastructure/config"
)

// NewLogStorage builds the LogStorage selected by cfg.Backend.
// The returned close function releases the backend connection.
func NewLogStorage(ctx context.Context, cfg *config.Config, log *logrus.Logger) (outbound.LogStorage, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendFile:
		storage, err := file.NewFileLogStorage(cfg.ArchiveDir)
		if err != nil {
			return nil, nil, err
		}
		return storage, noop, nil

	case config.BackendMemory:
		return memory.NewMemoryLogStorage(), noop, nil

	case config.BackendPostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return postgres.NewPostgresLogStorage(db), db.Close, nil

	case config.BackendRedis:
		client, err := redisadapter.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return redisadapter.NewRedisLogStorage(client, cfg.RedisKeyPrefix, log), client.Close, nil
	}

	return nil, nil, config.ErrUnknownBackend
}
