// backend-go/internal/api/handlers/product_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/optiqo/lenshop/backend-go/internal/service"
)

type ProductHandler struct {
	products  *service.ProductService
	purchases *service.PurchaseService
}

func NewProductHandler(products *service.ProductService, purchases *service.PurchaseService) *ProductHandler {
	return &ProductHandler{products: products, purchases: purchases}
}

func productID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

// GetProduct returns one product with its power range.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListProducts returns the catalog.
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

type powerRangeRequest struct {
	PowerRange []string `json:"power_range"`
}

// UpdatePowerRange replaces a product's power range. The response carries
// both legs of the write so the client can warn on a degraded save.
func (h *ProductHandler) UpdatePowerRange(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req powerRangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	outcome, err := h.products.SavePowerRange(c.Request.Context(), id, req.PowerRange)
	if err != nil {
		if outcome.Remote == service.LegSkipped {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}

	resp := gin.H{"remote": outcome.Remote, "cache": outcome.Cache}
	if outcome.Degraded() {
		resp["warning"] = "saved, but the cache mirror is stale until the next refresh"
	}
	c.JSON(http.StatusOK, resp)
}

// GetStock returns the derived stock view for a product: per degree for
// lens products, a single total otherwise.
func (h *ProductHandler) GetStock(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	cs, err := h.purchases.Stock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cs)
}
