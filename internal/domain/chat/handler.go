package chat

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"servicehub/internal/middleware"
	"servicehub/internal/pkg/response"
	"servicehub/internal/pkg/validator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	logger  *zap.Logger
}

func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type FindOrCreateRequest struct {
	OtherUserID int64 `json:"otherUserId" validate:"required,gt=0"`
}

type SendMessageRequest struct {
	Message  string `json:"message" validate:"required,max=4000"`
	ClientID string `json:"clientId" validate:"max=128"`
}

type ThreadsQuery struct {
	Filter string `json:"filter" validate:"omitempty,oneof=all client provider support"`
}

// FindOrCreateChat godoc
// @Summary Get the chat with another user, creating it when missing
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body FindOrCreateRequest true "Other user"
// @Router /chats/findOrCreateChat [post]
func (h *Handler) FindOrCreateChat(c *gin.Context) {
	var req FindOrCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OtherUserID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "otherUserId is required")
		return
	}

	chat, err := h.service.FindOrCreate(c.Request.Context(), middleware.UserID(c), req.OtherUserID)
	if err != nil {
		h.fail(c, "find or create chat", err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"chat": chat})
}

// ListThreads godoc
// @Summary List the caller's chats with last message and relationship flags
// @Tags Chat
// @Security BearerAuth
// @Param filter query string false "all, client, provider or support"
// @Router /chats [get]
func (h *Handler) ListThreads(c *gin.Context) {
	q := ThreadsQuery{Filter: c.DefaultQuery("filter", "all")}
	if errs := validator.Validate(q); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	out, err := h.service.Threads(c.Request.Context(), middleware.UserID(c), q.Filter)
	if err != nil {
		h.fail(c, "list threads", err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// ChatMeta godoc
// @Summary Other participant of a chat
// @Tags Chat
// @Security BearerAuth
// @Param chatId path int true "Chat ID"
// @Router /chats/{chatId}/meta [get]
func (h *Handler) ChatMeta(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}
	meta, err := h.service.Meta(c.Request.Context(), chatID, middleware.UserID(c))
	if err != nil {
		h.fail(c, "chat meta", err)
		return
	}
	response.Success(c, http.StatusOK, meta)
}

// ListMessages godoc
// @Summary Page through a chat, newest first
// @Tags Chat
// @Security BearerAuth
// @Param chatId path int true "Chat ID"
// @Param limit query int false "Page size (default 20)"
// @Param before query string false "RFC3339 cursor"
// @Router /messages/{chatId} [get]
func (h *Handler) ListMessages(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			response.ValidationError(c, map[string]string{"limit": "gt"})
			return
		}
		limit = n
	}

	var before *time.Time
	if v := c.Query("before"); v != "" {
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			response.ValidationError(c, map[string]string{"before": "datetime"})
			return
		}
		before = &t
	}

	out, err := h.service.Messages(c.Request.Context(), chatID, middleware.UserID(c), before, limit)
	if err != nil {
		h.fail(c, "list messages", err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

// SendMessage godoc
// @Summary Send a message over REST; it is broadcast like a socket message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Param chatId path int true "Chat ID"
// @Param body body SendMessageRequest true "Message"
// @Router /messages/{chatId} [post]
func (h *Handler) SendMessage(c *gin.Context) {
	chatID, ok := parseChatID(c)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(c, errs)
		return
	}

	m, err := h.service.Send(c.Request.Context(), middleware.UserID(c), chatID, SendInput{Body: req.Message, ClientID: req.ClientID})
	if err != nil {
		h.fail(c, "send message", err)
		return
	}
	response.Success(c, http.StatusCreated, m)
}

// BookingMessages godoc
// @Summary Messages attached to a booking
// @Tags Chat
// @Security BearerAuth
// @Param booking_id query int true "Booking ID"
// @Router /messages [get]
func (h *Handler) BookingMessages(c *gin.Context) {
	raw := c.Query("booking_id")
	if raw == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Missing booking_id parameter")
		return
	}
	bookingID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || bookingID <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid booking_id")
		return
	}

	out, err := h.service.BookingMessages(c.Request.Context(), bookingID, middleware.UserID(c))
	if err != nil {
		h.fail(c, "booking messages", err)
		return
	}
	response.Success(c, http.StatusOK, out)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, ErrCannotChatSelf):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cannot start a chat with yourself")
	case errors.Is(err, ErrEmptyMessage):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message is empty")
	case errors.Is(err, ErrMessageTooLong):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Message is too long")
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Not found")
	default:
		h.logger.Error(op, zap.Int64("user_id", middleware.UserID(c)), zap.Error(err))
		response.Internal(c)
	}
}

func parseChatID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("chatId"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "Invalid chat id")
		return 0, false
	}
	return id, true
}
