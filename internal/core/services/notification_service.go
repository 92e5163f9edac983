package services

import (
	"context"
	"errors"

	"credit-app/internal/core/domain"

	"github.com/rs/zerolog"
)

// LogNotifier writes loan events to the structured log
type LogNotifier struct {
	log zerolog.Logger
}

// NewLogNotifier creates a notifier writing to l
func NewLogNotifier(l zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: l}
}

// Notify logs the event
func (n *LogNotifier) Notify(_ context.Context, event domain.LoanEvent) error {
	e := n.log.Info().
		Uint("loan_id", event.LoanID).
		Uint("user_id", event.UserID).
		Float64("amount", event.Amount).
		Str("to", string(event.To)).
		Uint("actor_id", event.ActorID).
		Str("actor_role", string(event.ActorRole))
	if event.From != "" {
		e = e.Str("from", string(event.From))
	}
	if event.Reason != "" {
		e = e.Str("reason", event.Reason)
	}
	e.Msg("loan event")
	return nil
}

// NotificationService fans a loan event out to every registered notifier.
// Failures are logged and never returned to the caller.
type NotificationService struct {
	notifiers []Notifier
	log       zerolog.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(l zerolog.Logger, notifiers ...Notifier) *NotificationService {
	return &NotificationService{notifiers: notifiers, log: l}
}

// Add registers another notifier
func (s *NotificationService) Add(n Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// Notify delivers event to all notifiers and returns their joined errors
func (s *NotificationService) Notify(ctx context.Context, event domain.LoanEvent) error {
	var errs []error
	for _, n := range s.notifiers {
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Publish delivers event and only logs failures
func (s *NotificationService) Publish(ctx context.Context, event domain.LoanEvent) {
	if err := s.Notify(ctx, event); err != nil {
		s.log.Warn().Err(err).
			Uint("loan_id", event.LoanID).
			Str("status", string(event.To)).
			Msg("loan event notification failed")
	}
}
