package service

import (
	"context"
	"time"

	"storefront/storefront-service/internal/app/storefront/entity"
)

type CatalogServiceInterface interface {
	ListProducts(ctx context.Context, search string) ([]entity.Product, error)
	GetProduct(ctx context.Context, productID int) (*entity.Product, error)
	Warm(ctx context.Context) (int, error)
}

type CartServiceInterface interface {
	Get(ctx context.Context, session string) (CartResult, error)
	Add(ctx context.Context, session string, productID int) (CartResult, error)
	Remove(ctx context.Context, session string, productID int) (CartResult, error)
	Adjust(ctx context.Context, session string, productID int, quantity int) (CartResult, error)
	Clear(ctx context.Context, session string) (CartResult, error)
	PruneIdle(before time.Time) int
}

type CheckoutServiceInterface interface {
	View(ctx context.Context, session string) (CheckoutView, error)
	ChangePaymentMethod(ctx context.Context, session string, method entity.PaymentMethod) (CheckoutView, error)
	Submit(ctx context.Context, session string, form entity.ShippingForm) (CheckoutView, entity.ValidationErrors, error)
	Confirm(ctx context.Context, session string) (ConfirmResult, error)
	Edit(ctx context.Context, session string) (CheckoutView, error)
	PruneIdle(before time.Time) int
}

type AuthServiceInterface interface {
	CurrentUser(ctx context.Context, session string) (*entity.User, error)
	Login(ctx context.Context, session string, req *entity.LoginRequest) (*entity.User, error)
	Logout(ctx context.Context, session string) error
}
