package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"servicehub/internal/metrics"

	"go.uber.org/zap"
)

// PaymentGateway settles the hold placed when the booking was requested.
type PaymentGateway interface {
	Capture(ctx context.Context, intentID string) error
	Release(ctx context.Context, intentID string) error
}

type dashboardReader interface {
	NextAccepted(ctx context.Context, providerID int64, now time.Time) (*DashboardBooking, error)
	Pending(ctx context.Context, providerID int64) ([]DashboardBooking, error)
	Earnings(ctx context.Context, providerID int64, now time.Time) (Earnings, error)
}

type Service struct {
	repo      Repository
	dashboard dashboardReader
	payments  PaymentGateway
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewService(repo Repository, dashboard dashboardReader, payments PaymentGateway, logger *zap.Logger, m *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		dashboard: dashboard,
		payments:  payments,
		logger:    logger,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, clientID int64, req CreateBookingRequest) (*Booking, error) {
	if req.ProviderID <= 0 {
		return nil, ErrProviderRequired
	}
	if req.ProviderID == clientID {
		return nil, ErrSelfBooking
	}

	ok, err := s.repo.ProviderExists(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProviderNotFound
	}

	if req.ProviderServiceID != nil {
		ok, err := s.repo.OfferingBelongsTo(ctx, *req.ProviderServiceID, req.ProviderID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrServiceMismatch
		}
	}

	b := &Booking{
		UserID:            clientID,
		ProviderID:        req.ProviderID,
		ProviderServiceID: req.ProviderServiceID,
		Description:       strings.TrimSpace(req.Description),
		Status:            StatusPending,
		PaymentStatus:     PaymentNone,
	}
	if req.ScheduledAt != nil {
		at := req.ScheduledAt.UTC()
		b.ScheduledAt = &at
	}
	if req.PaymentIntentID != nil && *req.PaymentIntentID != "" {
		b.PaymentIntentID = req.PaymentIntentID
		b.PaymentStatus = PaymentHeld
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	s.logger.Info("booking requested",
		zap.Int64("booking_id", b.ID),
		zap.Int64("client_id", clientID),
		zap.Int64("provider_id", b.ProviderID),
	)
	return b, nil
}

func (s *Service) ListForClient(ctx context.Context, clientID int64) ([]ClientBooking, error) {
	out, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []ClientBooking{}
	}
	return out, nil
}

// Accept moves a pending booking to accepted and captures its payment hold.
func (s *Service) Accept(ctx context.Context, providerID, bookingID int64) (*Booking, error) {
	return s.transition(ctx, providerID, bookingID, StatusAccepted)
}

// Decline moves a pending booking to declined and releases its payment hold.
func (s *Service) Decline(ctx context.Context, providerID, bookingID int64) (*Booking, error) {
	return s.transition(ctx, providerID, bookingID, StatusDeclined)
}

func (s *Service) transition(ctx context.Context, providerID, bookingID int64, status string) (*Booking, error) {
	b, err := s.repo.Transition(ctx, bookingID, providerID, status)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.countTransition(status, "rejected")
		} else {
			s.countTransition(status, "error")
		}
		return nil, err
	}
	s.countTransition(status, "ok")
	s.logger.Info("booking transitioned",
		zap.Int64("booking_id", b.ID),
		zap.Int64("provider_id", providerID),
		zap.String("status", status),
	)

	if b.PaymentIntentID == nil || *b.PaymentIntentID == "" {
		return b, nil
	}
	if err := s.settle(ctx, b, status); err != nil {
		return b, err
	}
	return b, nil
}

// settle captures or releases the hold. A failure leaves the new booking
// status in place and is recorded on payment_status.
func (s *Service) settle(ctx context.Context, b *Booking, status string) error {
	intentID := *b.PaymentIntentID

	op, done, failed := "capture", PaymentCaptured, PaymentCaptureFailed
	call := s.payments.Capture
	if status == StatusDeclined {
		op, done, failed = "release", PaymentReleased, PaymentReleaseFailed
		call = s.payments.Release
	}

	callErr := call(ctx, intentID)
	outcome, next := "ok", done
	if callErr != nil {
		outcome, next = "failed", failed
	}
	if s.metrics != nil {
		s.metrics.PaymentCalls.WithLabelValues(op, outcome).Inc()
	}

	if err := s.repo.SetPaymentStatus(ctx, b.ID, next); err != nil {
		s.logger.Error("record payment status",
			zap.Int64("booking_id", b.ID),
			zap.String("payment_status", next),
			zap.Error(err),
		)
	} else {
		b.PaymentStatus = next
	}

	if callErr != nil {
		s.logger.Error("payment "+op+" failed",
			zap.Int64("booking_id", b.ID),
			zap.String("payment_intent_id", intentID),
			zap.Error(callErr),
		)
		if s.metrics != nil {
			s.metrics.Errors.WithLabelValues("payment").Inc()
		}
		return fmt.Errorf("%w: %s %s: %v", ErrPayment, op, intentID, callErr)
	}
	return nil
}

func (s *Service) Dashboard(ctx context.Context, providerID int64) (*Dashboard, error) {
	now := s.now()

	next, err := s.dashboard.NextAccepted(ctx, providerID, now)
	if err != nil {
		return nil, fmt.Errorf("next booking: %w", err)
	}
	pending, err := s.dashboard.Pending(ctx, providerID)
	if err != nil {
		return nil, fmt.Errorf("pending requests: %w", err)
	}
	earnings, err := s.dashboard.Earnings(ctx, providerID, now)
	if err != nil {
		return nil, fmt.Errorf("earnings: %w", err)
	}

	return &Dashboard{ComingUpNext: next, PendingRequests: pending, Earnings: earnings}, nil
}

func (s *Service) countTransition(status, outcome string) {
	if s.metrics != nil {
		s.metrics.BookingTransitions.WithLabelValues(status, outcome).Inc()
	}
}
