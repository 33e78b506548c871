package chat

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// FindOrCreate returns the chat between a and b in either order.
	FindOrCreate(ctx context.Context, a, b int64) (*Chat, error)
	GetByID(ctx context.Context, id int64) (*Chat, error)
	UserName(ctx context.Context, userID int64) (string, error)
	Threads(ctx context.Context, userID int64) ([]Thread, error)
	// StoreMessage inserts m. When m.ClientID was already used by the same
	// sender in the same chat the stored row is returned instead and
	// deduplicated is true.
	StoreMessage(ctx context.Context, m *Message) (stored *Message, deduplicated bool, err error)
	ListMessages(ctx context.Context, chatID int64, before time.Time, limit int) ([]Message, error)
	BookingParticipants(ctx context.Context, bookingID int64) (clientID, providerID int64, err error)
	ListByBooking(ctx context.Context, bookingID int64) ([]Message, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindOrCreate(ctx context.Context, a, b int64) (*Chat, error) {
	u1, u2 := normalizePair(a, b)
	db := r.db.WithContext(ctx)

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user1_id"}, {Name: "user2_id"}},
		DoNothing: true,
	}).Create(&Chat{User1ID: u1, User2ID: u2}).Error
	if err != nil {
		return nil, err
	}

	var c Chat
	if err := db.Where("user1_id = ? AND user2_id = ?", u1, u2).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Chat, error) {
	var c Chat
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repository) UserName(ctx context.Context, userID int64) (string, error) {
	var names []string
	err := r.db.WithContext(ctx).Table("users").Where("id = ?", userID).Limit(1).Pluck("name", &names).Error
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", ErrUserNotFound
	}
	return names[0], nil
}

type threadRow struct {
	ID            int64
	OtherUserID   int64
	OtherUserName string
	IsClient      bool
	IsProvider    bool
}

type lastMessageRow struct {
	Message   string
	CreatedAt time.Time
}

func (r *repository) Threads(ctx context.Context, userID int64) ([]Thread, error) {
	db := r.db.WithContext(ctx)

	var rows []threadRow
	err := db.Raw(`
SELECT
  c.id,
  u.id   AS other_user_id,
  u.name AS other_user_name,
  EXISTS (SELECT 1 FROM bookings b WHERE b.user_id = @me AND b.provider_id = u.id) AS is_client,
  EXISTS (SELECT 1 FROM bookings b WHERE b.user_id = u.id AND b.provider_id = @me) AS is_provider
FROM chats c
JOIN users u ON u.id = CASE WHEN c.user1_id = @me THEN c.user2_id ELSE c.user1_id END
WHERE c.user1_id = @me OR c.user2_id = @me
`, map[string]any{"me": userID}).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Thread, 0, len(rows))
	for _, row := range rows {
		t := Thread{
			ID:            row.ID,
			OtherUserID:   row.OtherUserID,
			OtherUserName: row.OtherUserName,
			IsClient:      row.IsClient,
			IsProvider:    row.IsProvider,
		}

		var last []lastMessageRow
		err := db.Model(&Message{}).
			Select("message, created_at").
			Where("chat_id = ?", row.ID).
			Order("created_at DESC, id DESC").
			Limit(1).
			Scan(&last).Error
		if err != nil {
			return nil, err
		}
		if len(last) == 1 {
			t.LastMessage = last[0].Message
			at := last[0].CreatedAt
			t.LastMessageAt = &at
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *repository) StoreMessage(ctx context.Context, m *Message) (*Message, bool, error) {
	db := r.db.WithContext(ctx)
	if m.ClientID == nil {
		if err := db.Create(m).Error; err != nil {
			return nil, false, err
		}
		return m, false, nil
	}

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "sender_id"}, {Name: "client_id"}},
		DoNothing: true,
	}).Create(m)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return m, false, nil
	}

	var existing Message
	q := db.Where("sender_id = ? AND client_id = ?", m.SenderID, *m.ClientID)
	if m.ChatID != nil {
		q = q.Where("chat_id = ?", *m.ChatID)
	} else {
		q = q.Where("chat_id IS NULL")
	}
	err := q.First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, true, nil
}

func (r *repository) ListMessages(ctx context.Context, chatID int64, before time.Time, limit int) ([]Message, error) {
	var out []Message
	err := r.db.WithContext(ctx).
		Table("messages m").
		Select("m.*, u.name AS sender_name").
		Joins("JOIN users u ON u.id = m.sender_id").
		Where("m.chat_id = ? AND m.created_at < ?", chatID, before.UTC()).
		Order("m.created_at DESC, m.id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *repository) BookingParticipants(ctx context.Context, bookingID int64) (int64, int64, error) {
	var row struct {
		UserID     int64
		ProviderID int64
	}
	res := r.db.WithContext(ctx).
		Table("bookings").
		Select("user_id, provider_id").
		Where("id = ?", bookingID).
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, ErrNotFound
	}
	return row.UserID, row.ProviderID, nil
}

func (r *repository) ListByBooking(ctx context.Context, bookingID int64) ([]Message, error) {
	var out []Message
	err := r.db.WithContext(ctx).
		Table("messages m").
		Select("m.*, u.name AS sender_name").
		Joins("JOIN users u ON u.id = m.sender_id").
		Where("m.booking_id = ?", bookingID).
		Order("m.created_at ASC, m.id ASC").
		Find(&out).Error
	return out, err
}
