package professionalRepo

import (
	"context"
	"errors"

	"fixly/models"
)

// ErrNotFound is returned when a professional id does not resolve.
var ErrNotFound = errors.New("professional not found")

// ProfessionalRepository exposes read access to professional profiles.
// Profile writes happen in the onboarding service; dispatch only reads.
type ProfessionalRepository interface {
	GetByID(ctx context.Context, id string) (*models.Professional, error)
	ListByServiceDistrict(ctx context.Context, serviceType, district string) ([]models.Professional, error)
}
