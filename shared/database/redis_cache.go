package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"character-game-server/shared/interfaces"
	"character-game-server/shared/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.Cache = (*redisCache)(nil)

// redisCache - TTL-кэш чтения поверх Redis. Инвалидация на записи -
// best-effort: устаревшая запись в худшем случае живет до конца TTL.
type redisCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisCache создает Redis-кэш.
func NewRedisCache(client *redis.Client, logger *zap.Logger) interfaces.Cache {
	return &redisCache{
		client: client,
		logger: logger.Named("RedisCache"),
	}
}

// Get возвращает значение ключа или models.ErrNotFound при промахе.
func (c *redisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache read failed: %w", err)
	}
	return value, nil
}

// Set записывает значение с TTL. Нулевой TTL означает запись без истечения.
func (c *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache write failed: %w", err)
	}
	return nil
}

// Invalidate удаляет ключи. Отсутствующие ключи ошибкой не считаются.
func (c *redisCache) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
		return fmt.Errorf("cache invalidation failed: %w", err)
	}
	return nil
}
