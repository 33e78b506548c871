package booking

import (
	"servicehub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts booking routes on an authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	bookings := protected.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.PUT("/:id/accept", h.AcceptBooking)
		bookings.PUT("/:id/decline", h.DeclineBooking)
	}

	protected.GET("/provider/dashboard", middleware.ProviderOnly(), h.Dashboard)
}
