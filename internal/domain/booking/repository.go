package booking

import (
	"context"
	"errors"
	"time"

	"servicehub/internal/database"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	ListByClient(ctx context.Context, userID int64) ([]ClientBooking, error)
	ProviderExists(ctx context.Context, providerID int64) (bool, error)
	OfferingBelongsTo(ctx context.Context, offeringID, providerID int64) (bool, error)
	// Transition moves a pending booking owned by providerID to status.
	// It returns ErrNotFound when no row matched.
	Transition(ctx context.Context, id, providerID int64, status string) (*Booking, error)
	SetPaymentStatus(ctx context.Context, id int64, status string) error
	UpcomingAccepted(ctx context.Context, from, to time.Time) ([]Upcoming, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	err := r.db.WithContext(ctx).Create(b).Error
	if database.IsUniqueViolation(err) && b.PaymentIntentID != nil {
		return ErrPaymentInUse
	}
	return err
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByClient(ctx context.Context, userID int64) ([]ClientBooking, error) {
	var out []ClientBooking
	err := r.db.WithContext(ctx).Raw(`
SELECT
  b.id            AS booking_id,
  b.provider_id   AS provider_id,
  u.name          AS provider_name,
  u.email         AS provider_email,
  u.phone_number  AS provider_phone,
  s.name          AS service_name,
  ps.price        AS service_price,
  b.description,
  b.status,
  b.payment_status,
  b.scheduled_at,
  b.created_at
FROM bookings b
JOIN users u ON u.id = b.provider_id
LEFT JOIN provider_services ps ON ps.id = b.provider_service_id
LEFT JOIN services s ON s.id = ps.service_id
WHERE b.user_id = ?
ORDER BY b.created_at DESC, b.id DESC
`, userID).Scan(&out).Error
	return out, err
}

func (r *repository) ProviderExists(ctx context.Context, providerID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Table("users").Where("id = ?", providerID).Count(&n).Error
	return n > 0, err
}

func (r *repository) OfferingBelongsTo(ctx context.Context, offeringID, providerID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Table("provider_services").
		Where("id = ? AND user_id = ?", offeringID, providerID).
		Count(&n).Error
	return n > 0, err
}

func (r *repository) Transition(ctx context.Context, id, providerID int64, status string) (*Booking, error) {
	res := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND provider_id = ? AND status = ?", id, providerID, StatusPending).
		Updates(map[string]any{"status": status})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *repository) SetPaymentStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ?", id).
		Updates(map[string]any{"payment_status": status}).Error
}

func (r *repository) UpcomingAccepted(ctx context.Context, from, to time.Time) ([]Upcoming, error) {
	var out []Upcoming
	err := r.db.WithContext(ctx).
		Table("bookings b").
		Select("b.id, b.user_id, b.provider_id, b.scheduled_at, s.name AS service_name").
		Joins("LEFT JOIN provider_services ps ON ps.id = b.provider_service_id").
		Joins("LEFT JOIN services s ON s.id = ps.service_id").
		Where("b.status = ? AND b.scheduled_at >= ? AND b.scheduled_at < ?", StatusAccepted, from.UTC(), to.UTC()).
		Order("b.scheduled_at ASC").
		Scan(&out).Error
	return out, err
}
