package chat

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"servicehub/internal/metrics"

	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	maxMessageLen   = 4000
)

// Broadcaster fans a stored message out to the sockets joined to its chat.
type Broadcaster interface {
	BroadcastMessage(chatID int64, m *Message)
}

// SendInput is a message submitted over REST or the socket.
type SendInput struct {
	Body     string
	ClientID string
	Type     string
}

type Service struct {
	repo    Repository
	hub     Broadcaster
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewService(repo Repository, hub Broadcaster, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{repo: repo, hub: hub, logger: logger, metrics: m}
}

func (s *Service) FindOrCreate(ctx context.Context, userID, otherUserID int64) (*Chat, error) {
	if otherUserID == userID {
		return nil, ErrCannotChatSelf
	}
	if _, err := s.repo.UserName(ctx, otherUserID); err != nil {
		return nil, err
	}
	return s.repo.FindOrCreate(ctx, userID, otherUserID)
}

// Threads lists the caller's chats, most recent activity first. filter is
// one of all, client, provider or support.
func (s *Service) Threads(ctx context.Context, userID int64, filter string) ([]Thread, error) {
	if filter == "support" {
		return []Thread{}, nil
	}

	all, err := s.repo.Threads(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Thread, 0, len(all))
	for _, t := range all {
		switch filter {
		case "client":
			if !t.IsClient {
				continue
			}
		case "provider":
			if !t.IsProvider {
				continue
			}
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out, nil
}

// Participant returns the chat when userID belongs to it.
func (s *Service) Participant(ctx context.Context, chatID, userID int64) (*Chat, error) {
	c, err := s.repo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !c.Has(userID) {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) Meta(ctx context.Context, chatID, userID int64) (*Meta, error) {
	c, err := s.Participant(ctx, chatID, userID)
	if err != nil {
		return nil, err
	}
	other := c.Other(userID)
	name, err := s.repo.UserName(ctx, other)
	if err != nil {
		return nil, err
	}
	return &Meta{OtherUserID: other, OtherUserName: name}, nil
}

// Messages pages backwards through a chat, newest first.
func (s *Service) Messages(ctx context.Context, chatID, userID int64, before *time.Time, limit int) ([]Message, error) {
	if _, err := s.Participant(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	cursor := time.Now().UTC().Add(time.Second)
	if before != nil {
		cursor = *before
	}

	out, err := s.repo.ListMessages(ctx, chatID, cursor, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Message{}
	}
	return out, nil
}

func (s *Service) BookingMessages(ctx context.Context, bookingID, userID int64) ([]Message, error) {
	clientID, providerID, err := s.repo.BookingParticipants(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if userID != clientID && userID != providerID {
		return nil, ErrNotFound
	}
	out, err := s.repo.ListByBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []Message{}
	}
	return out, nil
}

// Send persists a message from senderID into the chat and broadcasts it.
// The receiver is always the other participant.
func (s *Service) Send(ctx context.Context, senderID, chatID int64, in SendInput) (*Message, error) {
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	if len(body) > maxMessageLen {
		return nil, ErrMessageTooLong
	}

	c, err := s.Participant(ctx, chatID, senderID)
	if err != nil {
		return nil, err
	}
	m, _, err := s.store(ctx, c, senderID, body, in.ClientID, in.Type)
	return m, err
}

// PostSystemMessage stores a server-generated message between two users,
// creating their chat when needed, and reports whether a new row was
// written. Reusing clientID is a no-op.
func (s *Service) PostSystemMessage(ctx context.Context, senderID, receiverID int64, clientID, body string) (bool, error) {
	c, err := s.repo.FindOrCreate(ctx, senderID, receiverID)
	if err != nil {
		return false, fmt.Errorf("find chat: %w", err)
	}
	_, dup, err := s.store(ctx, c, senderID, body, clientID, TypeSystem)
	if err != nil {
		return false, err
	}
	return !dup, nil
}

func (s *Service) store(ctx context.Context, c *Chat, senderID int64, body, clientID, typ string) (*Message, bool, error) {
	if typ == "" {
		typ = TypeUser
	}
	chatID := c.ID
	m := &Message{
		ChatID:     &chatID,
		SenderID:   senderID,
		ReceiverID: c.Other(senderID),
		Body:       body,
		Type:       typ,
	}
	if clientID = strings.TrimSpace(clientID); clientID != "" {
		m.ClientID = &clientID
	}

	stored, dup, err := s.repo.StoreMessage(ctx, m)
	if err != nil {
		if s.metrics != nil {
			s.metrics.Errors.WithLabelValues("chat").Inc()
		}
		return nil, false, fmt.Errorf("store message: %w", err)
	}
	if s.metrics != nil {
		s.metrics.MessagesStored.WithLabelValues(typ, strconv.FormatBool(dup)).Inc()
	}
	if dup {
		s.logger.Debug("duplicate message ignored",
			zap.Int64("chat_id", chatID),
			zap.Int64("sender_id", senderID),
			zap.String("client_id", clientID),
		)
	}

	// A resent user message is broadcast again so the sender can reconcile.
	if s.hub != nil && (!dup || typ == TypeUser) {
		s.hub.BroadcastMessage(chatID, stored)
	}
	return stored, dup, nil
}
