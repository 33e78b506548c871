package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"servicehub/internal/database"
	"servicehub/internal/domain/catalog"
	"servicehub/internal/domain/provider"
	"servicehub/internal/domain/user"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) Capture(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

func (m *mockPayments) Release(ctx context.Context, intentID string) error {
	return m.Called(ctx, intentID).Error(0)
}

type fixture struct {
	db       *gorm.DB
	repo     Repository
	svc      *Service
	payments *mockPayments
	client   *user.User
	provider *user.User
	offering provider.Offering
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := database.NewTestDB(t,
		&user.User{}, &catalog.Category{}, &catalog.Service{}, &provider.Offering{}, &Booking{})

	users := user.NewRepository(db)
	ctx := context.Background()
	client := &user.User{Name: "Cara", Email: "cara@example.com", PasswordHash: "x", Role: "user"}
	pro := &user.User{Name: "Pete", Email: "pete@example.com", PasswordHash: "x", Role: "user,provider"}
	require.NoError(t, users.Create(ctx, client))
	require.NoError(t, users.Create(ctx, pro))

	home := catalog.Category{Name: "Home"}
	require.NoError(t, db.Create(&home).Error)
	plumbing := catalog.Service{CategoryID: home.ID, Name: "Plumbing"}
	require.NoError(t, db.Create(&plumbing).Error)
	offering := provider.Offering{UserID: pro.ID, ServiceID: plumbing.ID, Experience: 4, Price: 40}
	require.NoError(t, db.Create(&offering).Error)

	sx, err := database.SQLX(db)
	require.NoError(t, err)

	repo := NewRepository(db)
	payments := new(mockPayments)
	svc := NewService(repo, NewDashboardReader(sx), payments, zap.NewNop(), nil)
	return &fixture{db: db, repo: repo, svc: svc, payments: payments, client: client, provider: pro, offering: offering}
}

func (f *fixture) request(t *testing.T, intent string) *Booking {
	t.Helper()
	req := CreateBookingRequest{ProviderID: f.provider.ID, ProviderServiceID: &f.offering.ID, Description: "Leaky tap"}
	if intent != "" {
		req.PaymentIntentID = &intent
	}
	b, err := f.svc.Create(context.Background(), f.client.ID, req)
	require.NoError(t, err)
	return b
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.client.ID, CreateBookingRequest{})
	assert.ErrorIs(t, err, ErrProviderRequired)

	_, err = f.svc.Create(ctx, f.client.ID, CreateBookingRequest{ProviderID: f.client.ID})
	assert.ErrorIs(t, err, ErrSelfBooking)

	_, err = f.svc.Create(ctx, f.client.ID, CreateBookingRequest{ProviderID: 9999})
	assert.ErrorIs(t, err, ErrProviderNotFound)

	otherID := f.offering.ID + 100
	_, err = f.svc.Create(ctx, f.client.ID, CreateBookingRequest{ProviderID: f.provider.ID, ProviderServiceID: &otherID})
	assert.ErrorIs(t, err, ErrServiceMismatch)
}

func TestCreate_HeldPayment(t *testing.T) {
	f := newFixture(t)

	b := f.request(t, "pi_hold")

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentHeld, b.PaymentStatus)
	stored, err := f.repo.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_hold", *stored.PaymentIntentID)
}

func TestCreate_PaymentIntentUsedOnce(t *testing.T) {
	f := newFixture(t)
	f.request(t, "pi_once")

	intent := "pi_once"
	_, err := f.svc.Create(context.Background(), f.client.ID, CreateBookingRequest{
		ProviderID:      f.provider.ID,
		PaymentIntentID: &intent,
	})
	assert.ErrorIs(t, err, ErrPaymentInUse)

	// Bookings without a payment never collide.
	f.request(t, "")
	f.request(t, "")
}

func TestAccept_CapturesHold(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "pi_accept")
	f.payments.On("Capture", mock.Anything, "pi_accept").Return(nil).Once()

	got, err := f.svc.Accept(context.Background(), f.provider.ID, b.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	assert.Equal(t, PaymentCaptured, got.PaymentStatus)
	f.payments.AssertExpectations(t)
}

func TestDecline_ReleasesHold(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "pi_decline")
	f.payments.On("Release", mock.Anything, "pi_decline").Return(nil).Once()

	got, err := f.svc.Decline(context.Background(), f.provider.ID, b.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, got.Status)
	assert.Equal(t, PaymentReleased, got.PaymentStatus)
	f.payments.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
}

func TestTransition_WithoutPaymentSkipsGateway(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "")

	got, err := f.svc.Accept(context.Background(), f.provider.ID, b.ID)

	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, got.Status)
	f.payments.AssertNotCalled(t, "Capture", mock.Anything, mock.Anything)
}

func TestTransition_OnlyFromPending(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "pi_once")
	f.payments.On("Capture", mock.Anything, "pi_once").Return(nil).Once()
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, f.provider.ID, b.ID)
	require.NoError(t, err)

	_, err = f.svc.Decline(ctx, f.provider.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.Accept(ctx, f.provider.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	f.payments.AssertNumberOfCalls(t, "Capture", 1)
	f.payments.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestTransition_OtherProviderAndMissing(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "")
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, f.client.ID, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Decline(ctx, f.provider.ID, b.ID+42)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestTransition_ConcurrentAcceptAndDecline(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "pi_race")
	f.payments.On("Capture", mock.Anything, "pi_race").Return(nil).Maybe()
	f.payments.On("Release", mock.Anything, "pi_race").Return(nil).Maybe()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		notFound  int
	)
	run := func(fn func(context.Context, int64, int64) (*Booking, error)) {
		defer wg.Done()
		_, err := fn(context.Background(), f.provider.ID, b.ID)
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrNotFound):
			notFound++
		}
	}

	wg.Add(2)
	go run(f.svc.Accept)
	go run(f.svc.Decline)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, notFound)
	assert.Len(t, f.payments.Calls, 1)
}

func TestAccept_CaptureFailureKeepsStatus(t *testing.T) {
	f := newFixture(t)
	b := f.request(t, "pi_fail")
	f.payments.On("Capture", mock.Anything, "pi_fail").Return(errors.New("card_declined")).Once()
	ctx := context.Background()

	_, err := f.svc.Accept(ctx, f.provider.ID, b.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPayment)
	stored, err := f.repo.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, stored.Status)
	assert.Equal(t, PaymentCaptureFailed, stored.PaymentStatus)
	f.payments.AssertNumberOfCalls(t, "Capture", 1)
}

func TestListForClient_JoinsProviderAndService(t *testing.T) {
	f := newFixture(t)
	f.request(t, "")
	_, err := f.svc.Create(context.Background(), f.client.ID, CreateBookingRequest{ProviderID: f.provider.ID, Description: "Quote"})
	require.NoError(t, err)

	out, err := f.svc.ListForClient(context.Background(), f.client.ID)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Quote", out[0].Description)
	assert.Nil(t, out[0].ServiceName)
	assert.Equal(t, "Pete", out[1].ProviderName)
	require.NotNil(t, out[1].ServiceName)
	assert.Equal(t, "Plumbing", *out[1].ServiceName)
	assert.Equal(t, 40.0, *out[1].ServicePrice)

	none, err := f.svc.ListForClient(context.Background(), f.provider.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NotNil(t, none)
}
