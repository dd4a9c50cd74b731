package repository

import (
	"context"
	"errors"
)

const serviceName = "storefront-service"

// Драйверы хранилища слотов
const (
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

var (
	// ErrSlotNotFound слот не существует
	ErrSlotNotFound = errors.New("slot not found")
)

// SlotRepository хранилище именованных слотов "ключ -> сериализованное значение".
// Ключи имеют вид "<пространство>:<сессия>", например "cart:<id>" или "user:<id>".
type SlotRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Driver() string
}
