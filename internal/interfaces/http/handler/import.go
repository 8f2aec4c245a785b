package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	adimportapp "github.com/lagerhub/backend/internal/application/adimport"
	"github.com/lagerhub/backend/internal/interfaces/ws"
)

// ImportHandler serves the ad draft endpoints
type ImportHandler struct {
	BaseHandler
	imports *adimportapp.Service
	hub     *ws.Hub
	logger  *zap.Logger
}

// NewImportHandler creates an import handler
func NewImportHandler(imports *adimportapp.Service, hub *ws.Hub, logger *zap.Logger) *ImportHandler {
	return &ImportHandler{imports: imports, hub: hub, logger: logger}
}

// RegisterRoutes registers import routes on the given group
func (h *ImportHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/imports")
	{
		g.GET("", h.List)
		g.POST("/from-stock/:id", h.CreateFromStock)
		g.DELETE("/:id", h.Delete)
	}
}

// List returns all pending ad drafts
func (h *ImportHandler) List(c *gin.Context) {
	h.Success(c, h.imports.GetAll(c.Request.Context()))
}

// CreateFromStock builds an ad draft from a stock item
func (h *ImportHandler) CreateFromStock(c *gin.Context) {
	draft, err := h.imports.CreateImportFromStock(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.DomainError(c, err)
		return
	}

	h.broadcast(c)
	h.Created(c, draft)
}

// Delete removes a pending draft
func (h *ImportHandler) Delete(c *gin.Context) {
	removed, err := h.imports.DeleteDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.DomainError(c, err)
		return
	}
	if !removed {
		h.NotFound(c, "import draft not found")
		return
	}

	h.broadcast(c)
	h.NoContent(c)
}

func (h *ImportHandler) broadcast(c *gin.Context) {
	h.hub.Broadcast(ws.EventImportsUpdated, h.imports.GetAll(c.Request.Context()))
}
