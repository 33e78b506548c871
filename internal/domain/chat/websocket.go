package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"servicehub/internal/pkg/jwt"
	"servicehub/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const frameTimeout = 10 * time.Second

// chatRef accepts a chat id sent either as a number or as a string.
type chatRef int64

func (r *chatRef) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*r = chatRef(id)
	return nil
}

type sendMessageData struct {
	ChatID     chatRef `json:"chat_id"`
	ReceiverID int64   `json:"receiver_id"`
	Message    string  `json:"message"`
	ClientID   string  `json:"clientId"`
}

type errorData struct {
	Error    string `json:"error"`
	ClientID string `json:"clientId,omitempty"`
}

// WSHandler upgrades authenticated requests and dispatches socket events.
type WSHandler struct {
	hub      *Hub
	jwt      *jwt.Service
	service  *Service
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler accepts any origin when allowedOrigins contains "*".
func NewWSHandler(hub *Hub, jwtService *jwt.Service, service *Service, allowedOrigins []string, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		hub:     hub,
		jwt:     jwtService,
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Native clients send no Origin.
		return origin == "" || set[origin]
	}
}

// HandleWebSocket godoc
// @Summary Open the chat socket
// @Tags Chat
// @Param token query string true "JWT"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_TOKEN_MISSING", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}
	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Int64("user_id", claims.UserID), zap.Error(err))
		return
	}

	cl := h.hub.newClient(conn, claims.UserID)
	h.logger.Info("websocket connected", zap.String("conn_id", cl.id), zap.Int64("user_id", cl.userID))

	go h.hub.writePump(cl)
	h.readPump(cl)
}

func (h *WSHandler) readPump(c *client) {
	defer func() {
		h.hub.remove(c)
		c.conn.Close()
		h.logger.Info("websocket disconnected", zap.String("conn_id", c.id), zap.Int64("user_id", c.userID))
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read", zap.String("conn_id", c.id), zap.Error(err))
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.hub.reply(c, EventErrorMessage, errorData{Error: "Malformed frame."})
			continue
		}

		switch frame.Event {
		case EventJoinRoom:
			h.handleJoin(c, frame.Data)
		case EventSendMessage:
			h.handleSend(c, frame.Data)
		default:
			h.hub.reply(c, EventErrorMessage, errorData{Error: "Unknown event: " + frame.Event})
		}
	}
}

func (h *WSHandler) handleJoin(c *client, data json.RawMessage) {
	var chatID chatRef
	if err := json.Unmarshal(data, &chatID); err != nil || chatID <= 0 {
		h.hub.reply(c, EventErrorMessage, errorData{Error: "Invalid room id."})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	if _, err := h.service.Participant(ctx, int64(chatID), c.userID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.Error("join room", zap.Int64("chat_id", int64(chatID)), zap.Error(err))
		}
		h.hub.reply(c, EventErrorMessage, errorData{Error: "Cannot join this room."})
		return
	}
	h.hub.join(c, int64(chatID))
}

func (h *WSHandler) handleSend(c *client, data json.RawMessage) {
	var in sendMessageData
	if err := json.Unmarshal(data, &in); err != nil {
		h.hub.reply(c, EventErrorMessage, errorData{Error: "Failed to send message."})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), frameTimeout)
	defer cancel()

	_, err := h.service.Send(ctx, c.userID, int64(in.ChatID), SendInput{Body: in.Message, ClientID: in.ClientID})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrEmptyMessage) && !errors.Is(err, ErrMessageTooLong) {
			h.logger.Error("socket send message",
				zap.Int64("chat_id", int64(in.ChatID)),
				zap.Int64("user_id", c.userID),
				zap.Error(err),
			)
		}
		h.hub.reply(c, EventErrorMessage, errorData{Error: "Failed to send message.", ClientID: in.ClientID})
	}
}
