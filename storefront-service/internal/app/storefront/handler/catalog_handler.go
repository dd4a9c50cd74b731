package handler

import (
	"net/http"
	"strconv"

	"storefront/storefront-service/internal/app/storefront/entity"
	"storefront/storefront-service/internal/app/storefront/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler обрабатывает запросы к каталогу товаров
type CatalogHandler struct {
	catalogService service.CatalogServiceInterface
}

func NewCatalogHandler(catalogService service.CatalogServiceInterface) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListProducts обрабатывает GET /products?search=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.catalogService.ListProducts(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entity.ProductsResponse{
		Products: products,
		Total:    len(products),
	})
}

// GetProduct обрабатывает GET /products/:id
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), productID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": product})
}

func parseProductID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return id, true
}
