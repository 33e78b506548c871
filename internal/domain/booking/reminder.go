package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ReminderPoster delivers a server-generated message between two users.
// Posting the same clientID twice must not create a second message; created
// reports whether this call wrote one.
type ReminderPoster interface {
	PostSystemMessage(ctx context.Context, senderID, receiverID int64, clientID, body string) (created bool, err error)
}

type upcomingLister interface {
	UpcomingAccepted(ctx context.Context, from, to time.Time) ([]Upcoming, error)
}

// Reminders posts a chat reminder for accepted bookings that start soon.
type Reminders struct {
	repo   upcomingLister
	poster ReminderPoster
	window time.Duration
	logger *zap.Logger
	now    func() time.Time

	cron *cron.Cron
}

func NewReminders(repo upcomingLister, poster ReminderPoster, window time.Duration, logger *zap.Logger) *Reminders {
	return &Reminders{
		repo:   repo,
		poster: poster,
		window: window,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Start schedules RunOnce on the cron spec.
func (r *Reminders) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := r.RunOnce(ctx); err != nil {
			r.logger.Error("booking reminders run failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule reminders %q: %w", spec, err)
	}
	c.Start()
	r.cron = c
	r.logger.Info("booking reminder scheduler started", zap.String("spec", spec), zap.Duration("window", r.window))
	return nil
}

// Stop waits for a running job to finish.
func (r *Reminders) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// RunOnce posts reminders for bookings starting within the window and
// reports how many were new.
func (r *Reminders) RunOnce(ctx context.Context) (int, error) {
	now := r.now()
	upcoming, err := r.repo.UpcomingAccepted(ctx, now, now.Add(r.window))
	if err != nil {
		return 0, fmt.Errorf("list upcoming bookings: %w", err)
	}

	sent := 0
	for _, b := range upcoming {
		clientID := fmt.Sprintf("reminder-%d", b.ID)
		created, err := r.poster.PostSystemMessage(ctx, b.ProviderID, b.UserID, clientID, reminderText(b))
		if err != nil {
			r.logger.Warn("booking reminder failed", zap.Int64("booking_id", b.ID), zap.Error(err))
			continue
		}
		if created {
			sent++
		}
	}
	if sent > 0 {
		r.logger.Info("booking reminders sent", zap.Int("count", sent))
	}
	return sent, nil
}

func reminderText(b Upcoming) string {
	at := b.ScheduledAt.UTC().Format("Mon 2 Jan 15:04 MST")
	if b.ServiceName != nil && *b.ServiceName != "" {
		return fmt.Sprintf("Reminder: your %s booking is scheduled for %s.", *b.ServiceName, at)
	}
	return fmt.Sprintf("Reminder: your booking is scheduled for %s.", at)
}
