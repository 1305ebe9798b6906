package dispatch

import (
	"time"

	"fixly/models"
	"fixly/utils"
)

// Visibility decides whether a booking is currently visible to a
// professional. Fresh bookings are offered only within NearRadiusKm of the
// service address; once a booking has waited longer than WidenAfter it is
// broadcast to the whole district. Missing coordinates on either side
// fail open: a booking that never got geocoded must still reach someone.
type Visibility struct {
	NearRadiusKm float64
	WidenAfter   time.Duration
}

// NewVisibility returns the production policy: 10 km radius, widening after
// 30 minutes.
func NewVisibility(nearRadiusKm float64, widenAfter time.Duration) *Visibility {
	return &Visibility{
		NearRadiusKm: nearRadiusKm,
		WidenAfter:   widenAfter,
	}
}

// Visible reports whether booking b should currently be offered to p.
func (v *Visibility) Visible(b *models.Booking, p *models.Professional, now time.Time) bool {
	if b.Status != models.BookingStatusRequested {
		return false
	}
	if b.ServiceType != p.ServiceType {
		return false
	}
	if b.Location.District != p.District {
		return false
	}
	if !p.Available {
		return false
	}

	if now.Sub(b.CreatedAt) > v.WidenAfter {
		return true
	}
	if !b.Location.HasCoordinates() || !p.HasCoordinates() {
		return true
	}

	distance := utils.Haversine(*b.Location.Latitude, *b.Location.Longitude, *p.Latitude, *p.Longitude)
	return distance <= v.NearRadiusKm
}
