package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/majewskibartosz/railway-support-lab/internal/config"
)

// Redis wraps the go-redis client backing the object storage gateway. The
// wrapper is non-nil even when no backend is configured; Client is nil then.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis when an address is configured.
func NewRedis(cfg config.StorageConfig, logger *zap.Logger) *Redis {
	if !cfg.Configured() {
		logger.Info("object storage backend not configured")
		return &Redis{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach object storage backend", zap.Error(err))
	} else {
		logger.Info("connected to object storage backend")
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies backend connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("object storage backend not configured")
	}
	return r.Client.Ping(ctx).Err()
}
