package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"storefront/pkg/metrics"
	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/infrastructure"

	"github.com/redis/go-redis/v9"
)

const (
	serviceName = "storefront-service"

	productsKey      = "catalog:products"
	productKeyPrefix = "catalog:product"
)

// RedisCatalogCache кэш ответов каталога в Redis с TTL
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCatalogCache создает кэш каталога
func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{
		client: client,
		ttl:    ttl,
	}
}

func productKey(productID int) string {
	return fmt.Sprintf("%s:%d", productKeyPrefix, productID)
}

// GetProducts возвращает закэшированный список товаров
func (c *RedisCatalogCache) GetProducts(ctx context.Context) ([]entity.Product, error) {
	var products []entity.Product
	if err := c.get(ctx, productsKey, productsKey, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SetProducts кэширует список товаров и каждую карточку отдельно
func (c *RedisCatalogCache) SetProducts(ctx context.Context, products []entity.Product) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	pipe := c.client.Pipeline()

	data, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to marshal products: %w", err)
	}
	pipe.Set(ctx, productsKey, data, c.ttl)

	for i := range products {
		item, err := json.Marshal(&products[i])
		if err != nil {
			return fmt.Errorf("failed to marshal product %d: %w", products[i].ID, err)
		}
		pipe.Set(ctx, productKey(products[i].ID), item, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to cache products: %w", err)
	}

	return nil
}

// GetProduct возвращает закэшированную карточку товара
func (c *RedisCatalogCache) GetProduct(ctx context.Context, productID int) (*entity.Product, error) {
	var product entity.Product
	if err := c.get(ctx, productKey(productID), productKeyPrefix, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// SetProduct кэширует карточку товара
func (c *RedisCatalogCache) SetProduct(ctx context.Context, product *entity.Product) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	if err := c.client.Set(ctx, productKey(product.ID), data, c.ttl).Err(); err != nil {
		metrics.RecordRedisError(serviceName, metrics.RedisOpSet)
		return fmt.Errorf("failed to cache product %d: %w", product.ID, err)
	}

	return nil
}

// get читает JSON по ключу; отсутствие ключа или битое значение - промах
func (c *RedisCatalogCache) get(ctx context.Context, key, metricPrefix string, out interface{}) error {
	timer := metrics.NewRedisTimer(serviceName, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(serviceName, metricPrefix)
			return infrastructure.ErrCacheMiss
		}
		metrics.RecordRedisError(serviceName, metrics.RedisOpGet)
		return fmt.Errorf("failed to read %s from cache: %w", key, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		metrics.RecordCacheMiss(serviceName, metricPrefix)
		return fmt.Errorf("%w: undecodable value at %s", infrastructure.ErrCacheMiss, key)
	}

	metrics.RecordCacheHit(serviceName, metricPrefix)
	return nil
}
