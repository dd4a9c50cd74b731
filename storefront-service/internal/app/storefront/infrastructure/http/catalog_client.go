package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storefront/pkg/metrics"
	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/infrastructure"
)

const (
	endpointProducts = "products"
	endpointProduct  = "product"
)

type productsEnvelope struct {
	Products []entity.Product `json:"products"`
}

type productEnvelope struct {
	Product *entity.Product `json:"product"`
}

// CatalogClient клиент удалённого Catalog API (источник товаров витрины)
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCatalogClient создает клиент с таймаутом на каждый запрос
func NewCatalogClient(baseURL string, timeout time.Duration) *CatalogClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CatalogClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListProducts получает полный список товаров (GET /products)
func (c *CatalogClient) ListProducts(ctx context.Context) ([]entity.Product, error) {
	timer := metrics.NewCatalogTimer(endpointProducts)
	defer timer.ObserveDuration()

	var envelope productsEnvelope
	if err := c.get(ctx, c.baseURL+"/products", &envelope); err != nil {
		timer.Error()
		return nil, err
	}

	if envelope.Products == nil {
		envelope.Products = []entity.Product{}
	}
	return envelope.Products, nil
}

// GetProduct получает товар по ID (GET /products/{id})
// 404 возвращается как infrastructure.ErrRemoteNotFound
func (c *CatalogClient) GetProduct(ctx context.Context, productID int) (*entity.Product, error) {
	timer := metrics.NewCatalogTimer(endpointProduct)
	defer timer.ObserveDuration()

	var envelope productEnvelope
	err := c.get(ctx, fmt.Sprintf("%s/products/%d", c.baseURL, productID), &envelope)
	if err != nil {
		if !errors.Is(err, infrastructure.ErrRemoteNotFound) {
			timer.Error()
		}
		return nil, err
	}

	if envelope.Product == nil {
		return nil, fmt.Errorf("product %d: %w", productID, infrastructure.ErrRemoteNotFound)
	}
	return envelope.Product, nil
}

func (c *CatalogClient) get(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", url, infrastructure.ErrRemoteNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
