package notification

import (
	"context"
	"fmt"
	"time"

	"fixly/models"
	"fixly/services/subscription"

	"go.uber.org/zap"
)

// PushSender submits one push message to one endpoint. The production
// implementation enqueues an async task per endpoint; tests substitute fakes.
type PushSender interface {
	Send(ctx context.Context, msg models.PushMessage) error
}

// FanoutService delivers offer and withdraw events to a candidate pool over
// both channels: the live in-process stream for connected clients and push
// messages for everyone else. Delivery is best-effort; failures are logged
// per endpoint and never fail the triggering operation.
type FanoutService interface {
	Offer(ctx context.Context, booking *models.Booking, pool []string)
	Withdraw(ctx context.Context, booking *models.Booking, pool []string)
}

// DefaultFanoutService is the production implementation.
type DefaultFanoutService struct {
	Hub      *Hub
	Registry *subscription.Registry
	Pusher   PushSender
	Logger   *zap.Logger
}

func NewDefaultFanoutService(hub *Hub, registry *subscription.Registry, pusher PushSender, logger *zap.Logger) *DefaultFanoutService {
	return &DefaultFanoutService{
		Hub:      hub,
		Registry: registry,
		Pusher:   pusher,
		Logger:   logger,
	}
}

// Offer announces a booking to the given pool.
func (s *DefaultFanoutService) Offer(ctx context.Context, booking *models.Booking, pool []string) {
	if len(pool) == 0 {
		return
	}

	ev := models.DispatchEvent{
		Type:        models.DispatchEventOffer,
		BookingID:   booking.ID,
		ServiceType: booking.ServiceType,
		District:    booking.Location.District,
		Booking:     booking,
		SentAt:      time.Now().UTC(),
	}
	s.Hub.Publish(ctx, ev)

	msg := models.PushMessage{
		Kind:        models.DispatchEventOffer,
		Title:       "New job request",
		Body:        fmt.Sprintf("%s job in %s", booking.ServiceType, booking.Location.District),
		BookingID:   booking.ID,
		ServiceType: booking.ServiceType,
		District:    booking.Location.District,
	}
	s.pushToPool(ctx, pool, msg)

	s.Logger.Info("fanout: offered booking",
		zap.String("bookingId", booking.ID),
		zap.Int("pool", len(pool)))
}

// Withdraw tells the pool the booking is gone. The pool passed here is the
// full ever-offered set, not a re-filtered one: a professional who has fallen
// out of the visibility window still needs to learn the offer is dead.
func (s *DefaultFanoutService) Withdraw(ctx context.Context, booking *models.Booking, pool []string) {
	ev := models.DispatchEvent{
		Type:        models.DispatchEventWithdraw,
		BookingID:   booking.ID,
		ServiceType: booking.ServiceType,
		District:    booking.Location.District,
		SentAt:      time.Now().UTC(),
	}
	s.Hub.Publish(ctx, ev)

	msg := models.PushMessage{
		Kind:        models.DispatchEventWithdraw,
		Title:       "Job no longer available",
		Body:        fmt.Sprintf("The %s job in %s has been taken", booking.ServiceType, booking.Location.District),
		BookingID:   booking.ID,
		ServiceType: booking.ServiceType,
		District:    booking.Location.District,
	}
	s.pushToPool(ctx, pool, msg)

	s.Logger.Info("fanout: withdrew booking",
		zap.String("bookingId", booking.ID),
		zap.Int("pool", len(pool)))
}

// pushToPool submits one message per endpoint. A failed endpoint is logged
// and skipped; it must not block or fail delivery to the others.
func (s *DefaultFanoutService) pushToPool(ctx context.Context, pool []string, msg models.PushMessage) {
	for _, professionalID := range pool {
		for _, endpoint := range s.Registry.EndpointsFor(professionalID) {
			m := msg
			m.Endpoint = endpoint
			if err := s.Pusher.Send(ctx, m); err != nil {
				s.Logger.Warn("fanout: push delivery failed",
					zap.String("professionalId", professionalID),
					zap.String("endpoint", endpoint),
					zap.Error(err))
			}
		}
	}
}
