// backend-go/internal/api/handlers/purchase_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/repository"
	"github.com/optiqo/lenshop/backend-go/internal/service"
)

type PurchaseHandler struct {
	purchases *service.PurchaseService
}

func NewPurchaseHandler(purchases *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return 0, false
	}
	return id, true
}

// ListOrders returns purchase orders, optionally filtered by product,
// status, or order-number prefix.
func (h *PurchaseHandler) ListOrders(c *gin.Context) {
	var filter repository.OrderFilter
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
			return
		}
		filter.ProductID = id
	}
	if raw := c.Query("status"); raw != "" {
		filter.Status = domain.OrderStatus(raw)
	}
	filter.OrderNoPrefix = c.Query("prefix")

	orders, err := h.purchases.ListOrders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder returns one purchase order.
func (h *PurchaseHandler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.purchases.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

type createOrderRequest struct {
	ProductID  int64          `json:"product_id"`
	Prefix     string         `json:"prefix"`
	Quantities map[string]int `json:"quantities"`
	Quantity   int            `json:"quantity"`
}

// CreateOrder builds a new purchase order. Lens products take a
// cell-keyed quantity map; everything else takes a single quantity.
func (h *PurchaseHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ProductID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	var (
		order *domain.PurchaseOrder
		err   error
	)
	if len(req.Quantities) > 0 {
		order, err = h.purchases.CreateLensOrder(c.Request.Context(), req.ProductID, req.Prefix, req.Quantities)
	} else {
		order, err = h.purchases.CreateSimpleOrder(c.Request.Context(), req.ProductID, req.Prefix, req.Quantity)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

type editRowsRequest struct {
	Rows []domain.PurchaseRow `json:"rows"`
}

// EditRows replaces the rows of an order that has not been stocked in.
func (h *PurchaseHandler) EditRows(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req editRowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	order, err := h.purchases.EditRows(c.Request.Context(), id, req.Rows)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// Cancel voids an order. Cancelling twice is a no-op.
func (h *PurchaseHandler) Cancel(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	if err := h.purchases.Cancel(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}

// StockIn marks an order as received so it starts counting toward stock.
func (h *PurchaseHandler) StockIn(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	order, err := h.purchases.StockIn(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
