package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	listingapp "github.com/lagerhub/backend/internal/application/listing"
	"github.com/lagerhub/backend/internal/interfaces/ws"
)

// ListingHandler serves the ad collection endpoints
type ListingHandler struct {
	BaseHandler
	listings *listingapp.Service
	hub      *ws.Hub
	logger   *zap.Logger
}

// NewListingHandler creates a listing handler
func NewListingHandler(listings *listingapp.Service, hub *ws.Hub, logger *zap.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, hub: hub, logger: logger}
}

// RegisterRoutes registers ad routes on the given group
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/ads")
	{
		g.GET("", h.List)
		g.PUT("/:id/stock", h.MarkInStock)
		g.DELETE("/:id/stock", h.RemoveFromStock)
		g.DELETE("/:id", h.Delete)
		g.POST("/backup", h.Backup)
	}
}

// List returns the full ad collection
func (h *ListingHandler) List(c *gin.Context) {
	h.Success(c, h.listings.GetAll(c.Request.Context()))
}

// MarkInStock flips an ad to available
func (h *ListingHandler) MarkInStock(c *gin.Context) {
	ad, err := h.listings.MarkAsInStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	if ad == nil {
		h.NotFound(c, "ad not found")
		return
	}

	h.broadcast(c)
	h.Success(c, ad)
}

// RemoveFromStock flips an ad to unavailable
func (h *ListingHandler) RemoveFromStock(c *gin.Context) {
	ad, err := h.listings.RemoveFromStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	if ad == nil {
		h.NotFound(c, "ad not found")
		return
	}

	h.broadcast(c)
	h.Success(c, ad)
}

// Delete removes an ad from the local collection
func (h *ListingHandler) Delete(c *gin.Context) {
	removed, err := h.listings.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	if !removed {
		h.NotFound(c, "ad not found")
		return
	}

	h.broadcast(c)
	h.NoContent(c)
}

// Backup snapshots the ad collection file
func (h *ListingHandler) Backup(c *gin.Context) {
	if err := h.listings.Backup(c.Request.Context()); err != nil {
		h.DomainError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ListingHandler) broadcast(c *gin.Context) {
	h.hub.Broadcast(ws.EventListingsUpdated, h.listings.GetAll(c.Request.Context()))
}
