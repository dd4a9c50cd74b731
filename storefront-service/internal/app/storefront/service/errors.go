package service

import (
	"errors"

	"storefront/storefront-service/internal/app/storefront/cart"
	"storefront/storefront-service/internal/app/storefront/checkout"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrInvalidUser        = errors.New("name and email are required")
	// ErrStorageUnavailable слот нельзя прочитать; пустая корзина вместо него не подставляется
	ErrStorageUnavailable = errors.New("storage unavailable")

	// Ошибки редьюсера и машины состояний, пробрасываемые в handlers
	ErrInvalidQuantity = cart.ErrInvalidQuantity
	ErrEmptyCart       = checkout.ErrEmptyCart
	ErrNotEditing      = checkout.ErrNotEditing
	ErrNotReviewing    = checkout.ErrNotReviewing
)
