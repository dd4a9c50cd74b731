package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/pkg/logger"
	"storefront/pkg/metrics"
	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/infrastructure"
)

// CatalogService читает товары из удалённого каталога через кэш
type CatalogService struct {
	client infrastructure.CatalogClient
	cache  infrastructure.CatalogCache // может быть nil
}

// NewCatalogService создает сервис каталога; cache опционален
func NewCatalogService(client infrastructure.CatalogClient, cache infrastructure.CatalogCache) *CatalogService {
	return &CatalogService{
		client: client,
		cache:  cache,
	}
}

// ListProducts возвращает товары, название которых содержит search без учёта регистра.
// Пустой search возвращает весь список.
func (s *CatalogService) ListProducts(ctx context.Context, search string) ([]entity.Product, error) {
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	return filterByTitle(products, search), nil
}

// GetProduct возвращает карточку товара
func (s *CatalogService) GetProduct(ctx context.Context, productID int) (*entity.Product, error) {
	if s.cache != nil {
		product, err := s.cache.GetProduct(ctx, productID)
		switch {
		case err == nil && checkProduct(product, productID) == nil:
			return product, nil
		case err == nil:
			logger.Warn().Int("product_id", productID).Msg("Ignoring invalid cached product")
		case !errors.Is(err, infrastructure.ErrCacheMiss):
			logger.Warn().Err(err).Int("product_id", productID).Msg("Catalog cache read failed")
		}
	}

	product, err := s.client.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, infrastructure.ErrRemoteNotFound) {
			return nil, ErrProductNotFound
		}
		logger.Error().Err(err).Int("product_id", productID).Msg("Failed to fetch product from catalog")
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	if err := checkProduct(product, productID); err != nil {
		logger.Error().Err(err).Int("product_id", productID).Msg("Catalog returned an invalid product")
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProduct(ctx, product); err != nil {
			logger.Warn().Err(err).Int("product_id", productID).Msg("Failed to cache product")
		}
	}

	return product, nil
}

// Warm загружает список товаров из каталога в кэш в обход кэша
func (s *CatalogService) Warm(ctx context.Context) (int, error) {
	products, err := s.client.ListProducts(ctx)
	if err != nil {
		metrics.CatalogWarmups.WithLabelValues("failed").Inc()
		return 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			metrics.CatalogWarmups.WithLabelValues("failed").Inc()
			return 0, fmt.Errorf("failed to cache products: %w", err)
		}
	}

	metrics.CatalogWarmups.WithLabelValues("success").Inc()
	return len(products), nil
}

func (s *CatalogService) products(ctx context.Context) ([]entity.Product, error) {
	if s.cache != nil {
		products, err := s.cache.GetProducts(ctx)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, infrastructure.ErrCacheMiss) {
			logger.Warn().Err(err).Msg("Catalog cache read failed")
		}
	}

	products, err := s.client.ListProducts(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to fetch products from catalog")
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	if s.cache != nil {
		if err := s.cache.SetProducts(ctx, products); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache products")
		}
	}

	return products, nil
}

// checkProduct отклоняет карточку, которую нельзя положить в корзину:
// другой id или цена не больше нуля
func checkProduct(product *entity.Product, productID int) error {
	switch {
	case product == nil:
		return fmt.Errorf("%w: empty product %d", ErrCatalogUnavailable, productID)
	case product.ID != productID:
		return fmt.Errorf("%w: requested product %d, got %d", ErrCatalogUnavailable, productID, product.ID)
	case !product.Price.IsPositive():
		return fmt.Errorf("%w: product %d has price %s", ErrCatalogUnavailable, productID, product.Price)
	}
	return nil
}

func filterByTitle(products []entity.Product, search string) []entity.Product {
	if search == "" {
		return products
	}

	needle := strings.ToLower(search)
	result := make([]entity.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Title), needle) {
			result = append(result, p)
		}
	}
	return result
}
