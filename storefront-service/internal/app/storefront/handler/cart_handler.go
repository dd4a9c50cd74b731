package handler

import (
	"net/http"

	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CartHandler обрабатывает запросы к корзине сессии
type CartHandler struct {
	cartService service.CartServiceInterface
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartServiceInterface) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		validator:   validator.New(),
	}
}

// GetCart обрабатывает GET /cart
func (h *CartHandler) GetCart(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	result, err := h.cartService.Get(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildCartResponse(result))
}

// AddItem обрабатывает POST /cart/items
// Добавляет одну единицу товара; товар берётся из каталога
func (h *CartHandler) AddItem(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	var req entity.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	result, err := h.cartService.Add(c.Request.Context(), session, req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildCartResponse(result))
}

// AdjustItem обрабатывает PATCH /cart/items/:id
func (h *CartHandler) AdjustItem(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req entity.AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.cartService.Adjust(c.Request.Context(), session, productID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildCartResponse(result))
}

// RemoveItem обрабатывает DELETE /cart/items/:id
func (h *CartHandler) RemoveItem(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	result, err := h.cartService.Remove(c.Request.Context(), session, productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildCartResponse(result))
}

// ClearCart обрабатывает DELETE /cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	session, ok := requireSession(c)
	if !ok {
		return
	}

	result, err := h.cartService.Clear(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, buildCartResponse(result))
}
