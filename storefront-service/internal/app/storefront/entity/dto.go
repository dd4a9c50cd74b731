package entity

import "github.com/google/uuid"

type AddCartItemRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// AdjustQuantityRequest нижняя граница количества проверяется редьюсером
type AdjustQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type ChangePaymentMethodRequest struct {
	PaymentMethod PaymentMethod `json:"payment_method" validate:"required,oneof=cod card upi"`
}

type LoginRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password"` // Принимается, но не проверяется
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ValidationErrorResponse struct {
	Error  string           `json:"error"`
	Errors ValidationErrors `json:"errors"`
}

type ProductsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

type CartItemResponse struct {
	ProductID int    `json:"product_id"`
	Title     string `json:"title"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type CartResponse struct {
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    string             `json:"total_price"`
	Persisted     bool               `json:"persisted"`
}

type OrderSummaryResponse struct {
	OrderID       uuid.UUID          `json:"order_id"`
	Form          ShippingForm       `json:"shipping"`
	Items         []CartItemResponse `json:"items"`
	TotalQuantity int                `json:"total_quantity"`
	TotalPrice    string             `json:"total_price"`
	CreatedAt     string             `json:"created_at"`
}

type CheckoutResponse struct {
	State    CheckoutState         `json:"state"`
	Form     ShippingForm          `json:"form"`
	Summary  *OrderSummaryResponse `json:"summary,omitempty"`
	Redirect string                `json:"redirect,omitempty"`
}

type ConfirmResponse struct {
	State    CheckoutState        `json:"state"`
	Order    OrderSummaryResponse `json:"order"`
	Redirect string               `json:"redirect"`
}

type UserResponse struct {
	User          *User `json:"user"`
	Authenticated bool  `json:"authenticated"`
}
