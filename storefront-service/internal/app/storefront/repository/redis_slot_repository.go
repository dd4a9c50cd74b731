package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/metrics"

	"github.com/redis/go-redis/v9"
)

// redisSlotRepository реализует SlotRepository поверх Redis
type redisSlotRepository struct {
	client *redis.Client
	prefix string
	ttl    time.Duration // 0 - без истечения
}

// NewRedisSlotRepository создает Redis хранилище слотов
// prefix добавляется ко всем ключам, чтобы не пересекаться с кэшем каталога
func NewRedisSlotRepository(client *redis.Client, prefix string, ttl time.Duration) SlotRepository {
	return &redisSlotRepository{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *redisSlotRepository) key(key string) string {
	return r.prefix + key
}

// Get читает значение слота
func (r *redisSlotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotNotFound
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get slot %s from redis: %w", key, err)
	}

	return data, nil
}

// Set перезаписывает слот целиком
func (r *redisSlotRepository) Set(ctx context.Context, key string, value []byte) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, r.key(key), value, r.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to set slot %s in redis: %w", key, err)
	}

	return nil
}

// Delete удаляет слот; отсутствие слота ошибкой не считается
func (r *redisSlotRepository) Delete(ctx context.Context, key string) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete slot %s from redis: %w", key, err)
	}

	return nil
}

func (r *redisSlotRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisSlotRepository) Driver() string {
	return DriverRedis
}
