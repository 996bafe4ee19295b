package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"forecast-api/configs"
	"forecast-api/pkg/log"
	"forecast-api/pkg/redis"
)

// NewRedisClient connects to Redis when it is enabled; a disabled Redis yields a nil client
func NewRedisClient(ctx context.Context, config configs.RedisConfig) (*redis.Client, error) {
	if !config.Enabled {
		log.Info("Redis disabled")
		return nil, nil
	}

	client, err := redis.NewClient(redis.NewRedisConfig().
		WithHost(config.Host).
		WithPort(config.Port).
		WithPassword(config.Password).
		WithDatabase(config.Database))
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", client.GetConfig().Addr(), err)
	}

	log.Info("Redis connected", zap.String("addr", client.GetConfig().Addr()), zap.Int("database", config.Database))
	return client, nil
}
