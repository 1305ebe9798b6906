package dispatch

import (
	"testing"
	"time"

	"fixly/models"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func visBooking(age time.Duration, lat, lon *float64) *models.Booking {
	now := time.Now().UTC()
	return &models.Booking{
		ID:          "b-1",
		ServiceType: "Plumbing",
		Status:      models.BookingStatusRequested,
		Location: models.Location{
			District:  "Jaffna",
			Latitude:  lat,
			Longitude: lon,
		},
		CreatedAt: now.Add(-age),
	}
}

func visProfessional(lat, lon *float64) *models.Professional {
	return &models.Professional{
		ID:          "pro-1",
		ServiceType: "Plumbing",
		District:    "Jaffna",
		Latitude:    lat,
		Longitude:   lon,
		Available:   true,
	}
}

func TestVisibilityPrerequisites(t *testing.T) {
	v := NewVisibility(10, 30*time.Minute)
	now := time.Now().UTC()

	b := visBooking(0, nil, nil)
	p := visProfessional(nil, nil)
	assert.True(t, v.Visible(b, p, now))

	assigned := visBooking(0, nil, nil)
	assigned.Status = models.BookingStatusAssigned
	assert.False(t, v.Visible(assigned, p, now))

	wrongService := visProfessional(nil, nil)
	wrongService.ServiceType = "Electrical"
	assert.False(t, v.Visible(b, wrongService, now))

	wrongDistrict := visProfessional(nil, nil)
	wrongDistrict.District = "Colombo"
	assert.False(t, v.Visible(b, wrongDistrict, now))

	unavailable := visProfessional(nil, nil)
	unavailable.Available = false
	assert.False(t, v.Visible(b, unavailable, now))
}

func TestVisibilityFailsOpenOnMissingGeo(t *testing.T) {
	v := NewVisibility(10, 30*time.Minute)
	now := time.Now().UTC()

	// Neither side has coordinates: immediately visible.
	assert.True(t, v.Visible(visBooking(time.Minute, nil, nil), visProfessional(nil, nil), now))

	// Only one side has coordinates: still visible.
	assert.True(t, v.Visible(visBooking(time.Minute, f64(9.66), f64(80.02)), visProfessional(nil, nil), now))
	assert.True(t, v.Visible(visBooking(time.Minute, nil, nil), visProfessional(f64(9.66), f64(80.02)), now))
}

func TestVisibilityGraduatedRadius(t *testing.T) {
	v := NewVisibility(10, 30*time.Minute)
	now := time.Now().UTC()

	// 0.1 degrees of latitude is roughly 11.1 km; 0.08 is roughly 8.9 km.
	near := visProfessional(f64(9.08), f64(80.0))
	far := visProfessional(f64(9.1), f64(80.0))

	// Inside the window the 10 km radius applies.
	assert.False(t, v.Visible(visBooking(29*time.Minute, f64(9.0), f64(80.0)), far, now))
	assert.True(t, v.Visible(visBooking(10*time.Minute, f64(9.0), f64(80.0)), near, now))

	// Past the window the whole district is fair game.
	assert.True(t, v.Visible(visBooking(31*time.Minute, f64(9.0), f64(80.0)), far, now))
}
