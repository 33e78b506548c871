package catalog

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/service_categories", h.ListCategories)
	api.GET("/servicesByCategory", h.ServicesByCategory)
}
