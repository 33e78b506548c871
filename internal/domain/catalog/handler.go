package catalog

import (
	"net/http"

	"servicehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *CatalogService
	logger  *zap.Logger
}

func NewHandler(service *CatalogService, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// ListCategories godoc
// @Summary List service categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /service_categories [get]
func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.service.Categories(c.Request.Context())
	if err != nil {
		h.logger.Error("list categories", zap.Error(err))
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, cats)
}

// ServicesByCategory godoc
// @Summary List categories with their services
// @Tags Catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /servicesByCategory [get]
func (h *Handler) ServicesByCategory(c *gin.Context) {
	grouped, err := h.service.ServicesByCategory(c.Request.Context())
	if err != nil {
		h.logger.Error("list services by category", zap.Error(err))
		response.Internal(c)
		return
	}
	response.Success(c, http.StatusOK, grouped)
}
