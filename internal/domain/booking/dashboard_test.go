package booking

import (
	"context"
	"testing"
	"time"

	"servicehub/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodStarts(t *testing.T) {
	week, year := periodStarts(time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), week)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), year)

	week, _ = periodStarts(time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC), week, "sunday belongs to the week started on monday")
}

func TestDashboardReader(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	at := func(ts time.Time, status string) *Booking {
		b := &Booking{
			UserID:            f.client.ID,
			ProviderID:        f.provider.ID,
			ProviderServiceID: &f.offering.ID,
			ScheduledAt:       &ts,
			Status:            status,
		}
		require.NoError(t, f.db.Create(b).Error)
		return b
	}

	at(time.Date(2026, 10, 13, 10, 0, 0, 0, time.UTC), StatusCompleted)
	at(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), StatusCompleted)
	at(time.Date(2025, 12, 30, 10, 0, 0, 0, time.UTC), StatusCompleted)
	at(time.Date(2026, 10, 10, 10, 0, 0, 0, time.UTC), StatusAccepted)
	next := at(time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC), StatusAccepted)
	at(time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC), StatusAccepted)
	later := at(time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC), StatusPending)
	sooner := at(time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), StatusPending)

	sx, err := database.SQLX(f.db)
	require.NoError(t, err)
	reader := NewDashboardReader(sx)

	got, err := reader.NextAccepted(ctx, f.provider.ID, now)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, next.ID, got.BookingID)
	assert.Equal(t, "Cara", got.ClientName)
	require.NotNil(t, got.ServiceName)
	assert.Equal(t, "Plumbing", *got.ServiceName)
	require.NotNil(t, got.AppointmentTime)
	assert.True(t, got.AppointmentTime.Equal(*next.ScheduledAt))

	pending, err := reader.Pending(ctx, f.provider.ID)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, sooner.ID, pending[0].BookingID)
	assert.Equal(t, later.ID, pending[1].BookingID)

	earnings, err := reader.Earnings(ctx, f.provider.ID, now)
	require.NoError(t, err)
	assert.Equal(t, 40.0, earnings.WeekToDate)
	assert.Equal(t, 80.0, earnings.YearToDate)
}

func TestDashboard_UnscheduledPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	unscheduled := f.request(t, "")
	ts := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	scheduled := &Booking{
		UserID:      f.client.ID,
		ProviderID:  f.provider.ID,
		ScheduledAt: &ts,
		Status:      StatusPending,
	}
	require.NoError(t, f.db.Create(scheduled).Error)

	out, err := f.svc.Dashboard(ctx, f.provider.ID)

	require.NoError(t, err)
	require.Len(t, out.PendingRequests, 2)
	assert.Equal(t, scheduled.ID, out.PendingRequests[0].BookingID, "scheduled requests come first")
	assert.Nil(t, out.PendingRequests[0].ServiceName)
	assert.Equal(t, unscheduled.ID, out.PendingRequests[1].BookingID)
	assert.Nil(t, out.PendingRequests[1].AppointmentTime)
	require.NotNil(t, out.PendingRequests[1].ServiceName)
	assert.Equal(t, "Plumbing", *out.PendingRequests[1].ServiceName)
}

func TestDashboard_EmptyProvider(t *testing.T) {
	f := newFixture(t)

	out, err := f.svc.Dashboard(context.Background(), f.provider.ID)

	require.NoError(t, err)
	assert.Nil(t, out.ComingUpNext)
	assert.Empty(t, out.PendingRequests)
	assert.Zero(t, out.Earnings.WeekToDate)
	assert.Zero(t, out.Earnings.YearToDate)
}
