package models

import "time"

// Booking status lifecycle. The dispatch engine owns only the
// requested -> assigned edge; everything after assignment belongs to the
// fulfilment workflows.
const (
	BookingStatusRequested  = "requested"
	BookingStatusAssigned   = "assigned"
	BookingStatusInspecting = "inspecting"
	BookingStatusApproved   = "approved"
	BookingStatusInProgress = "inProgress"
	BookingStatusCompleted  = "completed"
	BookingStatusPaid       = "paid"
	BookingStatusVerified   = "verified"
	BookingStatusCancelled  = "cancelled"
)

// DefaultBookingDurationHours is applied when a booking request omits duration.
const DefaultBookingDurationHours = 2

// Location is the service address of a booking. Latitude and longitude are
// nullable: geocoding is best-effort and bookings without coordinates are
// still dispatchable.
type Location struct {
	Address   string   `bson:"address" json:"address"`
	District  string   `bson:"district" json:"district"`
	City      string   `bson:"city" json:"city"`
	Area      string   `bson:"area" json:"area"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are present.
func (l Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Booking represents a customer service request.
type Booking struct {
	ID             string    `bson:"id" json:"id"`
	CustomerID     string    `bson:"customerId" json:"customerId"`
	ServiceType    string    `bson:"serviceType" json:"serviceType"` // e.g. "Plumbing"
	IssueType      string    `bson:"issueType" json:"issueType"`
	Description    string    `bson:"description" json:"description"`
	ScheduledAt    time.Time `bson:"scheduledAt" json:"scheduledAt"`
	DurationHours  int       `bson:"durationHours" json:"durationHours"`
	Location       Location  `bson:"location" json:"location"`
	Status         string    `bson:"status" json:"status"`
	ProfessionalID string    `bson:"professionalId,omitempty" json:"professionalId,omitempty"` // set iff status is past requested
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
}
