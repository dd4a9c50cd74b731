package infrastructure

import (
	"context"
	"errors"

	"storefront/storefront-service/internal/app/storefront/entity"
)

var (
	// ErrRemoteNotFound удалённый каталог ответил 404
	ErrRemoteNotFound = errors.New("remote resource not found")
	// ErrCacheMiss значения нет в кэше
	ErrCacheMiss = errors.New("cache miss")
)

type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}

// CatalogClient клиент удалённого Catalog API
type CatalogClient interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, productID int) (*entity.Product, error)
}

// CatalogCache кэш ответов каталога
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]entity.Product, error)
	SetProducts(ctx context.Context, products []entity.Product) error
	GetProduct(ctx context.Context, productID int) (*entity.Product, error)
	SetProduct(ctx context.Context, product *entity.Product) error
}
