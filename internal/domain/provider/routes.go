package provider

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the provider routes on an authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	protected.GET("/providers", h.SearchByService)
	protected.GET("/users", h.SearchByService)
	protected.GET("/providersByCategory", h.SearchByCategory)
	protected.POST("/becomeProvider", h.BecomeProvider)

	services := protected.Group("/provider/services")
	{
		services.GET("", h.ListServices)
		services.PUT("/:id", h.UpdateService)
		services.DELETE("/:id", h.DeleteService)
	}
}
