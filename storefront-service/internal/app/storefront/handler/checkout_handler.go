package handler

import (
	"net/http"

	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CheckoutHandler обрабатывает оформление заказа
type CheckoutHandler struct {
	checkoutService service.CheckoutServiceInterface
	validator       *validator.Validate
}

func NewCheckoutHandler(checkoutService service.CheckoutServiceInterface) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		validator:       validator.New(),
	}
}

// GetCheckout обрабатывает GET /checkout
func (h *CheckoutHandler) GetCheckout(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	view, err := h.checkoutService.View(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildCheckoutResponse(view))
}

// ChangePaymentMethod обрабатывает PUT /checkout/payment-method
func (h *CheckoutHandler) ChangePaymentMethod(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req entity.ChangePaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	view, err := h.checkoutService.ChangePaymentMethod(c.Request.Context(), session, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildCheckoutResponse(view))
}

// Submit обрабатывает POST /checkout/submit
// Ошибки полей формы возвращаются с кодом 422 и картой field -> message
func (h *CheckoutHandler) Submit(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var form entity.ShippingForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	view, errs, err := h.checkoutService.Submit(c.Request.Context(), session, form)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(errs) > 0 {
		c.JSON(http.StatusUnprocessableEntity, entity.ValidationErrorResponse{
			Error:  "validation_failed",
			Errors: errs,
		})
		return
	}

	c.JSON(http.StatusOK, buildCheckoutResponse(view))
}

// Confirm обрабатывает POST /checkout/confirm
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	result, err := h.checkoutService.Confirm(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ConfirmResponse{
		State:    entity.CheckoutCleared,
		Order:    buildSummaryResponse(result.Order),
		Redirect: service.RedirectSuccess,
	})
}

// Edit обрабатывает POST /checkout/edit
func (h *CheckoutHandler) Edit(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	view, err := h.checkoutService.Edit(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}

	response := buildCheckoutResponse(view)
	response.Redirect = service.RedirectCart
	c.JSON(http.StatusOK, response)
}
