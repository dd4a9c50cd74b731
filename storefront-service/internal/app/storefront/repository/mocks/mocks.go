package mocks

import (
	"context"
	"sync"

	"storefront/storefront-service/internal/app/storefront/entity"

	"github.com/stretchr/testify/mock"
)

// MockSlotRepository мок для SlotRepository
type MockSlotRepository struct {
	mock.Mock
}

func (m *MockSlotRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSlotRepository) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSlotRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockSlotRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSlotRepository) Driver() string {
	return "mock"
}

// MockCatalogClient мок для CatalogClient
type MockCatalogClient struct {
	mock.Mock
}

func (m *MockCatalogClient) ListProducts(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockCatalogClient) GetProduct(ctx context.Context, productID int) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

// MockCatalogCache мок для CatalogCache
type MockCatalogCache struct {
	mock.Mock
}

func (m *MockCatalogCache) GetProducts(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockCatalogCache) SetProducts(ctx context.Context, products []entity.Product) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}

func (m *MockCatalogCache) GetProduct(ctx context.Context, productID int) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockCatalogCache) SetProduct(ctx context.Context, product *entity.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockMessagePublisher мок для MessagePublisher (Kafka)
type MockMessagePublisher struct {
	mock.Mock
	mu       sync.Mutex
	Messages [][]byte
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.Messages = append(m.Messages, value)
	m.mu.Unlock()
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Published возвращает копию отправленных сообщений
func (m *MockMessagePublisher) Published() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.Messages))
	copy(out, m.Messages)
	return out
}
