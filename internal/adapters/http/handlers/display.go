package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jostojic/quotescreen/internal/adapters/http/dto"
)

// Display drives the panel on demand.
type Display interface {
	Next(ctx context.Context) (int, error)
	Refresh(ctx context.Context) error
}

// DisplayHandler handles manual rotation.
type DisplayHandler struct {
	display Display
}

// NewDisplayHandler creates a new display handler.
func NewDisplayHandler(display Display) *DisplayHandler {
	return &DisplayHandler{display: display}
}

// Next handles POST /api/v1/display/next. The rotation timer restarts from
// the moment the next quote is drawn.
//
// @Summary Show the next quote
// @Tags display
// @Produce json
// @Success 200 {object} dto.IndexResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/display/next [post]
func (h *DisplayHandler) Next(c *gin.Context) {
	idx, err := h.display.Next(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.IndexResponse{Index: idx})
}

// Refresh handles POST /api/v1/display/refresh.
//
// @Summary Redraw the current quote
// @Tags display
// @Success 204
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/v1/display/refresh [post]
func (h *DisplayHandler) Refresh(c *gin.Context) {
	if err := h.display.Refresh(c.Request.Context()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RegisterDisplayRoutes registers display routes on the given router group.
func (h *DisplayHandler) RegisterDisplayRoutes(rg *gin.RouterGroup) {
	display := rg.Group("/display")
	display.POST("/next", h.Next)
	display.POST("/refresh", h.Refresh)
}
