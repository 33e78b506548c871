package chat

import "time"

const (
	TypeUser   = "user"
	TypeSystem = "system"
)

// Chat is the single conversation between two users. User1ID is always the
// smaller id.
type Chat struct {
	ID        int64     `gorm:"column:id;primaryKey" json:"id"`
	User1ID   int64     `gorm:"column:user1_id;not null;uniqueIndex:idx_chats_pair;check:chk_chats_pair_order,user1_id < user2_id" json:"user1_id"`
	User2ID   int64     `gorm:"column:user2_id;not null;uniqueIndex:idx_chats_pair;index" json:"user2_id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Chat) TableName() string { return "chats" }

// Has reports whether userID is one of the two participants.
func (c *Chat) Has(userID int64) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// Other returns the participant that is not userID.
func (c *Chat) Other(userID int64) int64 {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// normalizePair orders two user ids the way chats store them.
func normalizePair(a, b int64) (int64, int64) {
	if a < b {
		return a, b
	}
	return b, a
}

type Message struct {
	ID         int64   `gorm:"column:id;primaryKey" json:"id"`
	ChatID     *int64  `gorm:"column:chat_id;index:idx_messages_chat_created,priority:1;uniqueIndex:idx_messages_chat_sender_client,priority:1" json:"chat_id"`
	BookingID  *int64  `gorm:"column:booking_id;index" json:"booking_id,omitempty"`
	SenderID   int64   `gorm:"column:sender_id;not null;uniqueIndex:idx_messages_chat_sender_client,priority:2" json:"sender_id"`
	ReceiverID int64   `gorm:"column:receiver_id;not null" json:"receiver_id"`
	Body       string  `gorm:"column:message;not null" json:"message"`
	ClientID   *string `gorm:"column:client_id;uniqueIndex:idx_messages_chat_sender_client,priority:3" json:"client_id"`
	Type       string  `gorm:"column:type;not null;default:user" json:"type"`
	// SenderName is filled by list queries only.
	SenderName string    `gorm:"->;column:sender_name;-:migration" json:"sender_name,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;index:idx_messages_chat_created,priority:2" json:"created_at"`
}

func (Message) TableName() string { return "messages" }

// Thread summarizes one chat for the inbox.
type Thread struct {
	ID            int64      `json:"id"`
	OtherUserID   int64      `json:"otherUserId"`
	OtherUserName string     `json:"otherUserName"`
	LastMessage   string     `json:"lastMessage"`
	LastMessageAt *time.Time `json:"lastMessageAt"`
	IsClient      bool       `json:"isClient"`
	IsProvider    bool       `json:"isProvider"`
}

type Meta struct {
	OtherUserID   int64  `json:"otherUserId"`
	OtherUserName string `json:"otherUserName"`
}
