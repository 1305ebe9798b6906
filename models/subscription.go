package models

import "time"

// PushSubscription ties a delivery endpoint (an FCM device token) to a
// professional. ServiceType and district are captured at subscribe time as a
// fast routing filter and must be refreshed if the profile changes.
type PushSubscription struct {
	ProfessionalID string    `json:"professionalId"`
	Endpoint       string    `json:"endpoint"`
	ServiceType    string    `json:"serviceType"`
	District       string    `json:"district"`
	CreatedAt      time.Time `json:"createdAt"`
}

// PushMessage is the payload handed to the push channel, one per endpoint.
type PushMessage struct {
	Endpoint    string `json:"endpoint"`
	Kind        string `json:"kind"` // offer or withdraw
	Title       string `json:"title"`
	Body        string `json:"body"`
	BookingID   string `json:"bookingId"`
	ServiceType string `json:"serviceType"`
	District    string `json:"district"`
}
