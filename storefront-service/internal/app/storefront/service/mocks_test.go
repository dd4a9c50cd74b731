package service

import (
	"context"

	"storefront/storefront-service/internal/app/storefront/entity"

	"github.com/stretchr/testify/mock"
)

// MockCatalogService мок для CatalogServiceInterface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) ListProducts(ctx context.Context, search string) ([]entity.Product, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockCatalogService) GetProduct(ctx context.Context, productID int) (*entity.Product, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockCatalogService) Warm(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockAuthService мок для AuthServiceInterface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CurrentUser(ctx context.Context, session string) (*entity.User, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, session string, req *entity.LoginRequest) (*entity.User, error) {
	args := m.Called(ctx, session, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, session string) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}
