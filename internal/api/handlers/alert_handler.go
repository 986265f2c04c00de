// backend-go/internal/api/handlers/alert_handler.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/service"
)

type AlertHandler struct {
	alerts *service.AlertService
}

func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

// ListAlerts returns the current below-threshold snapshot. Pass
// ?refresh=true to bypass the cached snapshot.
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	refresh := c.Query("refresh") == "true"
	items, err := h.alerts.Evaluate(c.Request.Context(), refresh)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": items})
}

// MarkPurchased flags a product's alert as handled until its next recompute.
func (h *AlertHandler) MarkPurchased(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	if err := h.alerts.MarkPurchased(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "purchased"})
}

// GetConfig returns a product's alert configuration, or 404 when none is set.
func (h *AlertHandler) GetConfig(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	cfg, err := h.alerts.GetConfig(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no alert config"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

type alertConfigRequest struct {
	Kind       domain.AlertKind `json:"kind"`
	Thresholds map[string]int   `json:"thresholds,omitempty"`
	Threshold  int              `json:"threshold,omitempty"`
}

// SaveConfig creates or replaces a product's alert configuration.
func (h *AlertHandler) SaveConfig(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	var req alertConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	cfg := &domain.AlertConfig{
		ProductID:  id,
		Kind:       req.Kind,
		Thresholds: req.Thresholds,
		Threshold:  req.Threshold,
	}
	if err := h.alerts.SaveConfig(c.Request.Context(), cfg); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// DeleteConfig removes a product's alert configuration.
func (h *AlertHandler) DeleteConfig(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}
	if err := h.alerts.DeleteConfig(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
