package chat

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts chat and message routes on an authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	chats := protected.Group("/chats")
	{
		chats.POST("/findOrCreateChat", h.FindOrCreateChat)
		chats.GET("", h.ListThreads)
		chats.GET("/:chatId/meta", h.ChatMeta)
	}

	messages := protected.Group("/messages")
	{
		messages.GET("", h.BookingMessages)
		messages.GET("/:chatId", h.ListMessages)
		messages.POST("/:chatId", h.SendMessage)
	}
}

// RegisterRoutes mounts the socket endpoint. Authentication uses the token
// query parameter.
func (h *WSHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws", h.HandleWebSocket)
}
