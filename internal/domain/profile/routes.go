package profile

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the account routes on an authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	account := protected.Group("/account")
	{
		account.GET("/profile", h.GetProfile)
		account.PUT("/profile", h.UpdateProfile)
		account.POST("/avatar", h.UploadAvatar)
	}
}
