// backend-go/internal/api/handlers/handlers.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/optiqo/lenshop/backend-go/internal/domain"
	"github.com/optiqo/lenshop/backend-go/internal/selection"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors onto HTTP statuses. Validation
// failures come back as 400 with the message intact so the grid prompt
// can stay open client-side; everything unexpected is a 500.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidThreshold),
		errors.Is(err, domain.ErrNoRows),
		errors.Is(err, selection.ErrInvalidValue):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrOrderCancelled),
		errors.Is(err, domain.ErrAlreadyStockedIn),
		errors.Is(err, selection.ErrPromptPending),
		errors.Is(err, selection.ErrNoPrompt):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
