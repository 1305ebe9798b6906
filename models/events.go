package models

import "time"

// Dispatch event kinds delivered over the live channel.
const (
	DispatchEventOffer    = "offer"
	DispatchEventWithdraw = "withdraw"
)

// DispatchEvent is what a connected professional client receives on the live
// stream for its (serviceType, district) topic. Offers carry the full booking;
// withdrawals carry only the booking id.
type DispatchEvent struct {
	Type        string    `json:"type"`
	BookingID   string    `json:"bookingId"`
	ServiceType string    `json:"serviceType"`
	District    string    `json:"district"`
	Booking     *Booking  `json:"booking,omitempty"`
	SentAt      time.Time `json:"sentAt"`
}
