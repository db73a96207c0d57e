package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jostojic/quotescreen/internal/adapters/http/dto"
	"github.com/jostojic/quotescreen/internal/app"
	"github.com/jostojic/quotescreen/internal/region"
)

// Network reads and writes the saved network credentials.
type Network interface {
	SaveCredentials(ctx context.Context, c region.Credentials) error
	Network(ctx context.Context) (app.NetworkStatus, error)
}

// NetworkHandler handles the network credential endpoints.
type NetworkHandler struct {
	network Network
}

// NewNetworkHandler creates a new network handler.
func NewNetworkHandler(network Network) *NetworkHandler {
	return &NetworkHandler{network: network}
}

// Get handles GET /api/v1/network. The password is never returned.
//
// @Summary Saved network
// @Tags network
// @Produce json
// @Success 200 {object} dto.NetworkResponse
// @Router /api/v1/network [get]
func (h *NetworkHandler) Get(c *gin.Context) {
	status, err := h.network.Network(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NetworkResponse{SSID: status.SSID, Configured: status.Configured})
}

// Put handles PUT /api/v1/network.
//
// @Summary Save network credentials
// @Tags network
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body dto.NetworkRequest true "Credentials"
// @Success 200 {object} dto.NetworkResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/v1/network [put]
func (h *NetworkHandler) Put(c *gin.Context) {
	var req dto.NetworkRequest
	if !bindRequest(c, &req) {
		return
	}

	if err := h.network.SaveCredentials(c.Request.Context(), req.Credentials()); err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NetworkResponse{SSID: req.SSID, Configured: true})
}

// RegisterNetworkRoutes registers network routes on the given router group.
func (h *NetworkHandler) RegisterNetworkRoutes(rg *gin.RouterGroup) {
	rg.GET("/network", h.Get)
	rg.PUT("/network", h.Put)
}
