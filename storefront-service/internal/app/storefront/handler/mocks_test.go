package handler

import (
	"context"
	"time"

	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
)

// MockCatalogService мок для CatalogServiceInterface в тестах handler
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

// MockCartService мок для CartServiceInterface
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Get(ctx context.Context, session string) (service.CartResult, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(service.CartResult), args.Error(1)
}

func (m *MockCartService) Add(ctx context.Context, session string, productID int) (service.CartResult, error) {
	args := m.Called(ctx, session, productID)
	return args.Get(0).(service.CartResult), args.Error(1)
}

func (m *MockCartService) Remove(ctx context.Context, session string, productID int) (service.CartResult, error) {
	args := m.Called(ctx, session, productID)
	return args.Get(0).(service.CartResult), args.Error(1)
}

func (m *MockCartService) Adjust(ctx context.Context, session string, productID int, quantity int) (service.CartResult, error) {
	args := m.Called(ctx, session, productID, quantity)
	return args.Get(0).(service.CartResult), args.Error(1)
}

func (m *MockCartService) Clear(ctx context.Context, session string) (service.CartResult, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(service.CartResult), args.Error(1)
}

func (m *MockCartService) PruneIdle(before time.Time) int {
	args := m.Called(before)
	return args.Int(0)
}

// MockCheckoutService мок для CheckoutServiceInterface
type MockCheckoutService struct {
	mock.Mock
}

func (m *MockCheckoutService) View(ctx context.Context, session string) (service.CheckoutView, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(service.CheckoutView), args.Error(1)
}

func (m *MockCheckoutService) ChangePaymentMethod(ctx context.Context, session string, method entity.PaymentMethod) (service.CheckoutView, error) {
	args := m.Called(ctx, session, method)
	return args.Get(0).(service.CheckoutView), args.Error(1)
}

func (m *MockCheckoutService) Submit(ctx context.Context, session string, form entity.ShippingForm) (service.CheckoutView, entity.ValidationErrors, error) {
	args := m.Called(ctx, session, form)
	var errs entity.ValidationErrors
	if args.Get(1) != nil {
		errs = args.Get(1).(entity.ValidationErrors)
	}
	return args.Get(0).(service.CheckoutView), errs, args.Error(2)
}

func (m *MockCheckoutService) Confirm(ctx context.Context, session string) (service.ConfirmResult, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(service.ConfirmResult), args.Error(1)
}

func (m *MockCheckoutService) Edit(ctx context.Context, session string) (service.CheckoutView, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(service.CheckoutView), args.Error(1)
}

func (m *MockCheckoutService) PruneIdle(before time.Time) int {
	args := m.Called(before)
	return args.Int(0)
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

const testSession = "7c1f0b8e-3f52-4a0e-9d59-2b1f6f7b6a11"

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// withSession имитирует SessionMiddleware
func withSession(session string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(sessionContextKey, session)
		c.Next()
	}
}
