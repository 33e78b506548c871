package booking

import "time"

// Booking statuses. Only a pending booking may transition.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDeclined  = "declined"
	StatusCompleted = "completed"
)

// Payment statuses of the held authorization attached to a booking.
const (
	PaymentNone          = ""
	PaymentHeld          = "held"
	PaymentCaptured      = "captured"
	PaymentReleased      = "released"
	PaymentCaptureFailed = "capture_failed"
	PaymentReleaseFailed = "release_failed"
)

type Booking struct {
	ID                int64      `gorm:"column:id;primaryKey" json:"id"`
	UserID            int64      `gorm:"column:user_id;not null;index" json:"user_id"`
	ProviderID        int64      `gorm:"column:provider_id;not null;index" json:"provider_id"`
	ProviderServiceID *int64     `gorm:"column:provider_service_id" json:"provider_service_id"`
	Description       string     `gorm:"column:description" json:"description"`
	ScheduledAt       *time.Time `gorm:"column:scheduled_at" json:"scheduled_at"`
	Status            string     `gorm:"column:status;not null;default:pending;index" json:"status"`
	PaymentIntentID   *string    `gorm:"column:payment_intent_id;uniqueIndex" json:"payment_intent_id"`
	PaymentStatus     string     `gorm:"column:payment_status;not null;default:''" json:"payment_status"`
	CreatedAt         time.Time  `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Booking) TableName() string { return "bookings" }

// ClientBooking is one row of the caller's booking history.
type ClientBooking struct {
	BookingID     int64      `json:"booking_id"`
	ProviderID    int64      `json:"provider_id"`
	ProviderName  string     `json:"provider_name"`
	ProviderEmail string     `json:"provider_email"`
	ProviderPhone string     `json:"provider_phone"`
	ServiceName   *string    `json:"service_name"`
	ServicePrice  *float64   `json:"service_price"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	ScheduledAt   *time.Time `json:"scheduled_at"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Upcoming is an accepted booking that is about to start.
type Upcoming struct {
	ID          int64     `gorm:"column:id"`
	UserID      int64     `gorm:"column:user_id"`
	ProviderID  int64     `gorm:"column:provider_id"`
	ScheduledAt time.Time `gorm:"column:scheduled_at"`
	ServiceName *string   `gorm:"column:service_name"`
}
