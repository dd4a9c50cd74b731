package handler

import (
	"errors"
	"net/http"
	"time"

	"storefront/pkg/logger"
	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func buildCartItems(lines []entity.CartLine) []entity.CartItemResponse {
	items := make([]entity.CartItemResponse, 0, len(lines))
	for _, line := range lines {
		items = append(items, entity.CartItemResponse{
			ProductID: line.ProductID,
			Title:     line.Title,
			Image:     line.Image,
			Price:     line.Price.StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: line.LineTotal().StringFixed(2),
		})
	}
	return items
}

func buildCartResponse(result service.CartResult) entity.CartResponse {
	return entity.CartResponse{
		Items:         buildCartItems(result.State.Lines),
		TotalQuantity: result.State.TotalQuantity,
		TotalPrice:    result.State.TotalPrice.StringFixed(2),
		Persisted:     result.Persisted,
	}
}

func buildSummaryResponse(summary entity.OrderSummary) entity.OrderSummaryResponse {
	return entity.OrderSummaryResponse{
		OrderID:       summary.OrderID,
		Form:          summary.Form.Masked(),
		Items:         buildCartItems(summary.Lines),
		TotalQuantity: summary.TotalQuantity,
		TotalPrice:    summary.TotalPrice.StringFixed(2),
		CreatedAt:     summary.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func buildCheckoutResponse(view service.CheckoutView) entity.CheckoutResponse {
	response := entity.CheckoutResponse{
		State: view.State,
		Form:  view.Form.Masked(),
	}
	if view.Summary != nil {
		summary := buildSummaryResponse(*view.Summary)
		response.Summary = &summary
	}
	return response
}

// respondError переводит ошибки сервисов в HTTP ответы
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCatalogUnavailable):
		c.JSON(http.StatusServiceUnavailable, entity.ErrorResponse{
			Error:     "catalog_unavailable",
			Message:   "Catalog is temporarily unavailable, please retry",
			Retryable: true,
		})
	case errors.Is(err, service.ErrStorageUnavailable):
		logger.Warn().Err(err).Str("path", c.FullPath()).Msg("Cart storage unavailable")
		c.JSON(http.StatusServiceUnavailable, entity.ErrorResponse{
			Error:     "storage_unavailable",
			Message:   "Cart could not be loaded, please retry",
			Retryable: true,
		})
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, entity.ErrorResponse{Error: "product_not_found", Message: "Product not found"})
	case errors.Is(err, service.ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid_quantity", Message: "Quantity must be at least 1"})
	case errors.Is(err, service.ErrEmptyCart):
		c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "cart_empty", Message: "Cart is empty"})
	case errors.Is(err, service.ErrNotReviewing):
		c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "not_reviewing", Message: "No order summary to act on"})
	case errors.Is(err, service.ErrNotEditing):
		c.JSON(http.StatusConflict, entity.ErrorResponse{Error: "not_editing", Message: "Checkout form is under review"})
	case errors.Is(err, service.ErrInvalidUser):
		c.JSON(http.StatusBadRequest, entity.ErrorResponse{Error: "invalid_user", Message: "Name and email are required"})
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(http.StatusInternalServerError, entity.ErrorResponse{Error: "internal_error"})
	}
}

// formatValidationError форматирует ошибки валидации запроса
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}

func requireSession(c *gin.Context) (string, bool) {
	id, ok := sessionID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session required"})
	}
	return id, ok
}
