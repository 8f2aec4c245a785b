package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	stockapp "github.com/lagerhub/backend/internal/application/stock"
	"github.com/lagerhub/backend/internal/domain/shared"
	"github.com/lagerhub/backend/internal/domain/stock"
	"github.com/lagerhub/backend/internal/interfaces/ws"
)

// StockHandler serves the stock collection endpoints. Every mutation
// response carries the full updated collection, which is also pushed to
// websocket clients.
type StockHandler struct {
	BaseHandler
	stocks *stockapp.Service
	hub    *ws.Hub
	logger *zap.Logger
}

// NewStockHandler creates a stock handler
func NewStockHandler(stocks *stockapp.Service, hub *ws.Hub, logger *zap.Logger) *StockHandler {
	return &StockHandler{stocks: stocks, hub: hub, logger: logger}
}

// RegisterRoutes registers stock routes on the given group
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/stock")
	{
		g.GET("", h.List)
		g.POST("", h.Create)
		g.POST("/scan", h.Scan)
		g.POST("/backup", h.Backup)
		g.GET("/:id", h.Get)
		g.PATCH("/:id", h.Patch)
		g.PUT("/:id/quantity", h.Quantity)
		g.POST("/:id/link", h.Link)
		g.POST("/:id/unlink", h.Unlink)
		g.DELETE("/:id", h.Delete)
	}
}

// List returns the full stock collection
func (h *StockHandler) List(c *gin.Context) {
	h.Success(c, h.stocks.GetAll(c.Request.Context()))
}

// Get returns one stock item
func (h *StockHandler) Get(c *gin.Context) {
	item, err := h.stocks.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateStockRequest is the creation payload. Prices are free-form text
// in either separator convention.
type CreateStockRequest struct {
	Title         string `json:"title" binding:"required"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity" binding:"omitempty,min=0"`
	Location      string `json:"location"`
	PurchasePrice string `json:"purchasePrice" binding:"omitempty,pricetext"`
	MarketPrice   string `json:"marketPrice" binding:"omitempty,pricetext"`
	SourceURL     string `json:"sourceUrl" binding:"omitempty,url"`
	SourceName    string `json:"sourceName"`
	Image         string `json:"image"`
}

// Create adds a stock item
func (h *StockHandler) Create(c *gin.Context) {
	var req CreateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	collection, err := h.stocks.CreateNewItem(c.Request.Context(), req.Title, stock.NewItemFields{
		SKU:           req.SKU,
		Quantity:      req.Quantity,
		Location:      req.Location,
		PurchasePrice: req.PurchasePrice,
		MarketPrice:   req.MarketPrice,
		SourceURL:     req.SourceURL,
		SourceName:    req.SourceName,
		Image:         req.Image,
	})
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.hub.Broadcast(ws.EventStockUpdated, collection)
	h.Created(c, collection)
}

// Patch applies a partial update
func (h *StockHandler) Patch(c *gin.Context) {
	var patch stock.ItemPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	collection, err := h.stocks.UpdateDetails(c.Request.Context(), c.Param("id"), patch)
	h.respondCollection(c, collection, err)
}

// QuantityRequest carries a relative quantity change
type QuantityRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// Quantity applies a quantity delta, clamped at zero
func (h *StockHandler) Quantity(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	collection, err := h.stocks.UpdateQuantity(c.Request.Context(), c.Param("id"), req.Delta)
	h.respondCollection(c, collection, err)
}

// LinkRequest associates a stock item with an ad
type LinkRequest struct {
	AdID    string `json:"adId" binding:"required"`
	AdImage string `json:"adImage"`
}

// Link connects the item to an ad
func (h *StockHandler) Link(c *gin.Context) {
	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	collection, err := h.stocks.LinkToAd(c.Request.Context(), c.Param("id"), req.AdID, req.AdImage)
	h.respondCollection(c, collection, err)
}

// Unlink clears the ad reference
func (h *StockHandler) Unlink(c *gin.Context) {
	collection, err := h.stocks.UnlinkFromAd(c.Request.Context(), c.Param("id"))
	h.respondCollection(c, collection, err)
}

// Delete removes a stock item
func (h *StockHandler) Delete(c *gin.Context) {
	collection, err := h.stocks.DeleteItem(c.Request.Context(), c.Param("id"))
	h.respondCollection(c, collection, err)
}

// ScanRequest carries scanned label text
type ScanRequest struct {
	Text string `json:"text" binding:"required"`
}

// Scan resolves scanned text against the stock, incrementing the
// matched item's quantity
func (h *StockHandler) Scan(c *gin.Context) {
	var req ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stocks.CheckScanMatch(c.Request.Context(), req.Text)
	if err != nil && result == nil {
		h.DomainError(c, err)
		return
	}

	h.hub.Broadcast(ws.EventScanResult, result)
	if result.Found {
		h.hub.Broadcast(ws.EventStockUpdated, result.Collection)
	}
	if err != nil {
		h.SuccessWithWarning(c, result, err.Error())
		return
	}
	h.Success(c, result)
}

// Backup snapshots the stock collection file
func (h *StockHandler) Backup(c *gin.Context) {
	if err := h.stocks.Backup(c.Request.Context()); err != nil {
		h.DomainError(c, err)
		return
	}
	h.NoContent(c)
}

// respondCollection is the shared tail of all collection-returning
// mutations: broadcast, then answer with the collection. A sync
// side-effect failure after a successful primary write degrades to a
// warning instead of hiding the new state; any other failure is a real
// error.
func (h *StockHandler) respondCollection(c *gin.Context, collection []stock.StockItem, err error) {
	if err != nil && !errors.Is(err, shared.ErrSyncSideEffect) {
		h.DomainError(c, err)
		return
	}
	if collection == nil {
		collection = []stock.StockItem{}
	}

	h.hub.Broadcast(ws.EventStockUpdated, collection)
	if err != nil {
		h.logger.Warn("mutation applied with failed side effect", zap.Error(err))
		h.SuccessWithWarning(c, collection, err.Error())
		return
	}
	h.Success(c, collection)
}
