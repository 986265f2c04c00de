// backend-go/internal/api/handlers/grid_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/optiqo/lenshop/backend-go/internal/service"
)

type GridHandler struct {
	grids *service.GridService
}

func NewGridHandler(grids *service.GridService) *GridHandler {
	return &GridHandler{grids: grids}
}

type startSessionRequest struct {
	Purpose   service.GridPurpose `json:"purpose"`
	ProductID int64               `json:"product_id"`
	Prefix    string              `json:"prefix,omitempty"`
}

// StartSession opens a grid selection session and returns its initial state.
func (h *GridHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.ProductID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}
	state, err := h.grids.Start(c.Request.Context(), req.Purpose, req.ProductID, req.Prefix)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, state)
}

// GetSession returns the current state of a session.
func (h *GridHandler) GetSession(c *gin.Context) {
	state, err := h.grids.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// ApplyEvent feeds one pointer or prompt event into a session.
func (h *GridHandler) ApplyEvent(c *gin.Context) {
	var event service.GridEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	state, err := h.grids.Apply(c.Param("id"), event)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// CommitSession applies the session's result and closes it.
func (h *GridHandler) CommitSession(c *gin.Context) {
	result, err := h.grids.Commit(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DiscardSession drops a session without applying anything.
func (h *GridHandler) DiscardSession(c *gin.Context) {
	h.grids.Discard(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "discarded"})
}
