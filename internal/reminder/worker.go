package reminder

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/azrishaharin/KonMari/internal/domain"
	customerrepo "github.com/azrishaharin/KonMari/internal/repository/customer"
	settingsrepo "github.com/azrishaharin/KonMari/internal/repository/settings"
	"github.com/azrishaharin/KonMari/internal/schedule"
)

// Worker periodically emits reminder messages according to the settings
// singleton. Publish failures are logged and skipped, never fatal.
type Worker struct {
	settings  settingsrepo.Repository
	customers customerrepo.Repository
	pub       Publisher
	logger    *log.Logger
	now       func() time.Time
}

// NewWorker builds a Worker.
func NewWorker(settings settingsrepo.Repository, customers customerrepo.Repository, pub Publisher, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Worker{
		settings:  settings,
		customers: customers,
		pub:       pub,
		logger:    logger,
		now:       time.Now,
	}
}

// Run emits one batch per cycle until ctx ends. The cycle length follows
// reminder_frequency and is re-read every pass, so settings changes take
// effect without a restart.
func (w *Worker) Run(ctx context.Context) error {
	for {
		interval := w.runOnce(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// runOnce emits one reminder batch and returns the next cycle interval.
func (w *Worker) runOnce(ctx context.Context) time.Duration {
	s, err := w.settings.Get(ctx)
	if err != nil {
		w.logger.Printf("reminder: load settings: %v", err)
		return time.Hour
	}

	if n, err := w.EmitBatch(ctx, s); err != nil {
		w.logger.Printf("reminder: emit batch: %v", err)
	} else if n > 0 {
		w.logger.Printf("reminder: published %d messages", n)
	}
	return frequencyInterval(s.ReminderFrequency)
}

// EmitBatch publishes reminders for the current settings and returns how
// many messages went out.
func (w *Worker) EmitBatch(ctx context.Context, s *domain.Settings) (int, error) {
	pickupEnabled := s.EmailPickupReminders || s.SMSPickupReminders
	paymentEnabled := s.EmailPaymentReminders || s.SMSPaymentReminders
	if !pickupEnabled && !paymentEnabled {
		return 0, nil
	}

	customers, err := w.customers.List(ctx)
	if err != nil {
		return 0, err
	}

	now := w.now()
	sent := 0
	for _, c := range customers {
		if pickupEnabled && schedule.IsPickupDay(now.Weekday()) {
			msg := Message{
				Kind:       "pickup",
				CustomerID: c.ID,
				Name:       c.Name,
				Email:      c.Email,
				Phone:      c.Phone,
				ViaEmail:   s.EmailPickupReminders,
				ViaSMS:     s.SMSPickupReminders,
				PickupDate: schedule.NextPickupDate(now).Format("2006-01-02"),
			}
			if err := w.pub.Publish(QueuePickup, msg); err != nil {
				w.logger.Printf("reminder: publish pickup for %s: %v", c.ID, err)
			} else {
				sent++
			}
		}

		if paymentEnabled && (c.PaymentStatus == domain.PaymentPending || c.PaymentStatus == domain.PaymentOverdue) {
			msg := Message{
				Kind:         "payment",
				CustomerID:   c.ID,
				Name:         c.Name,
				Email:        c.Email,
				Phone:        c.Phone,
				ViaEmail:     s.EmailPaymentReminders,
				ViaSMS:       s.SMSPaymentReminders,
				PaymentState: string(c.PaymentStatus),
			}
			if err := w.pub.Publish(QueuePayment, msg); err != nil {
				w.logger.Printf("reminder: publish payment for %s: %v", c.ID, err)
			} else {
				sent++
			}
		}
	}
	return sent, nil
}

func frequencyInterval(f domain.ReminderFrequency) time.Duration {
	switch f {
	case domain.ReminderDaily:
		return 24 * time.Hour
	case domain.ReminderMonthly:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}
