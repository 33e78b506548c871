package chat

import (
	"encoding/json"
	"sync"
	"time"

	"servicehub/internal/metrics"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Socket events.
const (
	EventJoinRoom       = "joinRoom"
	EventSendMessage    = "sendMessage"
	EventReceiveMessage = "receiveMessage"
	EventErrorMessage   = "errorMessage"
)

// Frame is the envelope of every socket message.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// client is a single socket connection.
type client struct {
	id     string
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[int64]bool
}

// Hub tracks connections and the chat rooms they joined.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[int64]map[*client]struct{}
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewHub(logger *zap.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		rooms:   make(map[int64]map[*client]struct{}),
		logger:  logger,
		metrics: m,
	}
}

func (h *Hub) newClient(conn *websocket.Conn, userID int64) *client {
	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
	}
	return &client{
		id:     uuid.NewString(),
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		rooms:  make(map[int64]bool),
	}
}

// join adds c to the room of chatID.
func (h *Hub) join(c *client, chatID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members, ok := h.rooms[chatID]
	if !ok {
		members = make(map[*client]struct{})
		h.rooms[chatID] = members
	}
	members[c] = struct{}{}
	c.rooms[chatID] = true
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	for chatID := range c.rooms {
		if members, ok := h.rooms[chatID]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, chatID)
			}
		}
	}
	c.rooms = map[int64]bool{}
	close(c.send)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSConnections.Dec()
	}
}

// RoomSize reports how many sockets joined the chat.
func (h *Hub) RoomSize(chatID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

// BroadcastMessage sends m as receiveMessage to every socket in the room.
func (h *Hub) BroadcastMessage(chatID int64, m *Message) {
	data, err := encodeFrame(EventReceiveMessage, m)
	if err != nil {
		h.logger.Error("encode broadcast", zap.Int64("chat_id", chatID), zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[chatID] {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("slow websocket consumer skipped",
				zap.String("conn_id", c.id),
				zap.Int64("user_id", c.userID),
			)
		}
	}
}

// reply queues a frame for one client. It runs on the client's read
// goroutine, which is also the only caller of remove.
func (h *Hub) reply(c *client, event string, payload any) {
	data, err := encodeFrame(event, payload)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func encodeFrame(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
