package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// DashboardBooking is a booking as the provider sees it. AppointmentTime
// and the service fields are nil when the client left them out.
type DashboardBooking struct {
	BookingID       int64      `db:"booking_id" json:"booking_id"`
	AppointmentTime *time.Time `db:"appointment_time" json:"appointment_time"`
	ClientID        int64      `db:"client_id" json:"client_id"`
	ClientName      string     `db:"client_name" json:"client_name"`
	ServiceName     *string    `db:"service_name" json:"service_name"`
	ServicePrice    *float64   `db:"service_price" json:"service_price"`
}

type Earnings struct {
	WeekToDate float64 `db:"week_to_date" json:"week_to_date"`
	YearToDate float64 `db:"year_to_date" json:"year_to_date"`
}

type Dashboard struct {
	ComingUpNext    *DashboardBooking  `json:"comingUpNext"`
	PendingRequests []DashboardBooking `json:"pendingRequests"`
	Earnings        Earnings           `json:"earnings"`
}

const dashboardSelect = `
SELECT
  b.id           AS booking_id,
  b.scheduled_at AS appointment_time,
  u.id           AS client_id,
  u.name         AS client_name,
  s.name         AS service_name,
  ps.price       AS service_price
FROM bookings b
JOIN users u ON u.id = b.user_id
LEFT JOIN provider_services ps ON ps.id = b.provider_service_id
LEFT JOIN services s ON s.id = ps.service_id
`

// DashboardReader runs the provider overview queries.
type DashboardReader struct {
	db *sqlx.DB
}

func NewDashboardReader(db *sqlx.DB) *DashboardReader {
	return &DashboardReader{db: db}
}

func (r *DashboardReader) NextAccepted(ctx context.Context, providerID int64, now time.Time) (*DashboardBooking, error) {
	q := r.db.Rebind(dashboardSelect + `
WHERE b.provider_id = ? AND b.status = ? AND b.scheduled_at >= ?
ORDER BY b.scheduled_at, b.id
LIMIT 1`)

	var out DashboardBooking
	err := r.db.GetContext(ctx, &out, q, providerID, StatusAccepted, now.UTC())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *DashboardReader) Pending(ctx context.Context, providerID int64) ([]DashboardBooking, error) {
	q := r.db.Rebind(dashboardSelect + `
WHERE b.provider_id = ? AND b.status = ?
ORDER BY b.scheduled_at IS NULL, b.scheduled_at, b.id`)

	out := []DashboardBooking{}
	if err := r.db.SelectContext(ctx, &out, q, providerID, StatusPending); err != nil {
		return nil, err
	}
	return out, nil
}

// Earnings sums completed booking prices since the start of the ISO week
// and of the year containing now.
func (r *DashboardReader) Earnings(ctx context.Context, providerID int64, now time.Time) (Earnings, error) {
	week, year := periodStarts(now)
	q := r.db.Rebind(`
SELECT
  COALESCE(SUM(CASE WHEN b.scheduled_at >= ? THEN ps.price ELSE 0 END), 0) AS week_to_date,
  COALESCE(SUM(CASE WHEN b.scheduled_at >= ? THEN ps.price ELSE 0 END), 0) AS year_to_date
FROM bookings b
JOIN provider_services ps ON ps.id = b.provider_service_id
WHERE b.provider_id = ? AND b.status = ?`)

	var out Earnings
	err := r.db.GetContext(ctx, &out, q, week, year, providerID, StatusCompleted)
	return out, err
}

func periodStarts(now time.Time) (week, year time.Time) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7
	week = day.AddDate(0, 0, -offset)
	year = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return week, year
}
