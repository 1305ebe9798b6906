package bookingRepo

import (
	"context"
	"errors"

	"fixly/models"
)

// ErrNotFound is returned when a booking id does not resolve.
var ErrNotFound = errors.New("booking not found")

// BookingRepository defines persistence for booking records. The status
// machinery leans entirely on UpdateStatusIf: concurrent accept attempts for
// the same booking must serialize at the store, so the implementation has to
// provide a genuinely atomic guarded write, never a read-then-write pair.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, bookingID string) (*models.Booking, error)
	ListByStatus(ctx context.Context, status string) ([]models.Booking, error)
	// UpdateStatusIf transitions the booking from expectedStatus to newStatus
	// and, when professionalID is non-empty, records the assignee in the same
	// write. It reports false without error when the guard did not match.
	UpdateStatusIf(ctx context.Context, bookingID, expectedStatus, newStatus, professionalID string) (bool, error)
}
