package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	pricingapp "github.com/lagerhub/backend/internal/application/pricing"
	stockapp "github.com/lagerhub/backend/internal/application/stock"
	"github.com/lagerhub/backend/internal/interfaces/http/dto"
	"github.com/lagerhub/backend/internal/interfaces/ws"
)

// PriceHandler serves market price lookups
type PriceHandler struct {
	BaseHandler
	prices *pricingapp.Service
	stocks *stockapp.Service
	hub    *ws.Hub
	logger *zap.Logger
}

// NewPriceHandler creates a price handler
func NewPriceHandler(prices *pricingapp.Service, stocks *stockapp.Service, hub *ws.Hub, logger *zap.Logger) *PriceHandler {
	return &PriceHandler{prices: prices, stocks: stocks, hub: hub, logger: logger}
}

// RegisterRoutes registers price routes on the given group
func (h *PriceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/prices")
	{
		g.GET("/search", h.Search)
		g.POST("/check/:id", h.CheckItem)
	}
}

// Search queries all marketplace sources for the given product name
func (h *PriceHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.BadRequest(c, "query parameter 'q' is required")
		return
	}

	result, err := h.prices.SearchMarketPrices(c.Request.Context(), query)
	if err != nil {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeScrapeFailed), dto.ErrCodeScrapeFailed, err.Error())
		return
	}
	h.Success(c, result)
}

// CheckItem searches by a stock item's title and stamps the lowest
// quote onto the record
func (h *PriceHandler) CheckItem(c *gin.Context) {
	result, err := h.prices.CheckItemPrice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.DomainError(c, err)
		return
	}

	// Stamping the market price changes the stock record
	h.hub.Broadcast(ws.EventStockUpdated, h.stocks.GetAll(c.Request.Context()))
	h.Success(c, result)
}
