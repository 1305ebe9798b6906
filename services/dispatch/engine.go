package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingRepo "fixly/database/repository/booking"
	professionalRepo "fixly/database/repository/professional"
	"fixly/models"
	"fixly/services/notification"
	"fixly/services/subscription"

	"go.uber.org/zap"
)

// DispatchService orchestrates booking dispatch: fan out offers when a
// booking is created, widen the pool over time, and resolve the accept race
// through the booking store's conditional update.
type DispatchService interface {
	OnBookingCreated(ctx context.Context, booking *models.Booking) error
	Accept(ctx context.Context, bookingID, professionalID string) error
	CancelRequested(ctx context.Context, bookingID string) error
	Rescan(ctx context.Context) error
}

// DefaultDispatchService implements DispatchService.
type DefaultDispatchService struct {
	BookingRepo      bookingRepo.BookingRepository
	ProfessionalRepo professionalRepo.ProfessionalRepository
	Registry         *subscription.Registry
	Fanout           notification.FanoutService
	Visibility       *Visibility
	Logger           *zap.Logger

	offers *offerTracker
}

func NewDefaultDispatchService(
	bookings bookingRepo.BookingRepository,
	professionals professionalRepo.ProfessionalRepository,
	registry *subscription.Registry,
	fanout notification.FanoutService,
	visibility *Visibility,
	logger *zap.Logger,
) *DefaultDispatchService {
	return &DefaultDispatchService{
		BookingRepo:      bookings,
		ProfessionalRepo: professionals,
		Registry:         registry,
		Fanout:           fanout,
		Visibility:       visibility,
		Logger:           logger,
		offers:           newOfferTracker(),
	}
}

// OnBookingCreated computes the candidate pool for a fresh booking and fans
// out the first round of offers.
func (s *DefaultDispatchService) OnBookingCreated(ctx context.Context, booking *models.Booking) error {
	if booking.Status != models.BookingStatusRequested {
		return fmt.Errorf("booking %s is not dispatchable in status %s", booking.ID, booking.Status)
	}

	pool := s.candidatePool(ctx, booking, time.Now().UTC())
	fresh := s.offers.markOffered(booking.ID, pool)
	s.Fanout.Offer(ctx, booking, fresh)

	s.Logger.Info("dispatch: booking created",
		zap.String("bookingId", booking.ID),
		zap.String("serviceType", booking.ServiceType),
		zap.String("district", booking.Location.District),
		zap.Int("offered", len(fresh)))
	return nil
}

// Accept resolves a professional's claim on a booking. The guarded write
// against the store is the only synchronization point: of N concurrent
// accepts for one booking exactly one matches, every other caller gets
// ErrConflict. On success the withdrawal goes to everyone ever offered the
// booking, not a re-filtered pool.
func (s *DefaultDispatchService) Accept(ctx context.Context, bookingID, professionalID string) error {
	if _, err := s.ProfessionalRepo.GetByID(ctx, professionalID); err != nil {
		if errors.Is(err, professionalRepo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to resolve professional %s: %w", professionalID, err)
	}

	matched, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		models.BookingStatusRequested, models.BookingStatusAssigned, professionalID)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("accept booking %s: %w", bookingID, err)
	}

	if !matched {
		// Either the booking does not exist or someone else already won.
		if _, err := s.BookingRepo.GetByID(ctx, bookingID); err != nil {
			if errors.Is(err, bookingRepo.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("accept booking %s: %w", bookingID, err)
		}
		return ErrConflict
	}

	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		// Assignment committed; withdrawal still has to go out.
		s.Logger.Warn("dispatch: assigned booking fetch failed, withdrawing with stub",
			zap.String("bookingId", bookingID), zap.Error(err))
		booking = &models.Booking{ID: bookingID, Status: models.BookingStatusAssigned, ProfessionalID: professionalID}
	}

	pool := s.offers.offeredSet(bookingID)
	s.offers.drop(bookingID)
	s.Fanout.Withdraw(ctx, booking, withoutID(pool, professionalID))

	s.Logger.Info("dispatch: booking assigned",
		zap.String("bookingId", bookingID),
		zap.String("professionalId", professionalID),
		zap.Int("withdrawn", len(pool)-1))
	return nil
}

// CancelRequested moves a still-requested booking to cancelled under the
// same guarded write, and withdraws any outstanding offers.
func (s *DefaultDispatchService) CancelRequested(ctx context.Context, bookingID string) error {
	matched, err := s.BookingRepo.UpdateStatusIf(ctx, bookingID,
		models.BookingStatusRequested, models.BookingStatusCancelled, "")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}
	if !matched {
		if _, err := s.BookingRepo.GetByID(ctx, bookingID); err != nil {
			if errors.Is(err, bookingRepo.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("cancel booking %s: %w", bookingID, err)
		}
		return ErrConflict
	}

	booking, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		booking = &models.Booking{ID: bookingID, Status: models.BookingStatusCancelled}
	}

	pool := s.offers.offeredSet(bookingID)
	s.offers.drop(bookingID)
	s.Fanout.Withdraw(ctx, booking, pool)

	s.Logger.Info("dispatch: booking cancelled", zap.String("bookingId", bookingID))
	return nil
}

// Rescan recomputes the candidate pool for every still-requested booking and
// offers to professionals newly entering it. Visibility is time-dependent, so
// this runs once per minute; offers stay idempotent through the tracker.
func (s *DefaultDispatchService) Rescan(ctx context.Context) error {
	bookings, err := s.BookingRepo.ListByStatus(ctx, models.BookingStatusRequested)
	if err != nil {
		return fmt.Errorf("rescan: failed to list requested bookings: %w", err)
	}

	now := time.Now().UTC()
	live := make(map[string]struct{}, len(bookings))

	for i := range bookings {
		booking := &bookings[i]
		live[booking.ID] = struct{}{}

		pool := s.candidatePool(ctx, booking, now)
		fresh := s.offers.markOffered(booking.ID, pool)
		if len(fresh) == 0 {
			continue
		}
		s.Fanout.Offer(ctx, booking, fresh)
		s.Logger.Debug("dispatch: rescan widened pool",
			zap.String("bookingId", booking.ID),
			zap.Int("newlyOffered", len(fresh)))
	}

	s.offers.retain(live)
	return nil
}

// candidatePool enumerates subscribed professionals for the booking's topic
// and filters them through the visibility policy. The snapshot is taken in
// one pass so every offer in a cycle reflects the same filter state.
func (s *DefaultDispatchService) candidatePool(ctx context.Context, booking *models.Booking, now time.Time) []string {
	ids := s.Registry.Lookup(booking.ServiceType, booking.Location.District)

	var pool []string
	for _, id := range ids {
		professional, err := s.ProfessionalRepo.GetByID(ctx, id)
		if err != nil {
			s.Logger.Warn("dispatch: skipping unresolvable professional",
				zap.String("professionalId", id), zap.Error(err))
			continue
		}
		if s.Visibility.Visible(booking, professional, now) {
			pool = append(pool, id)
		}
	}
	return pool
}

func withoutID(ids []string, exclude string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}
