package models

import "time"

// Professional is a service provider profile as the dispatch engine sees it.
// Profile management (onboarding, verification, availability toggling) lives
// in a separate service; this record is read-only here.
type Professional struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	ServiceType string    `bson:"serviceType" json:"serviceType"`
	District    string    `bson:"district" json:"district"`
	Latitude    *float64  `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude   *float64  `bson:"longitude,omitempty" json:"longitude,omitempty"`
	Available   bool      `bson:"available" json:"available"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasCoordinates reports whether a last-known position is on record.
func (p *Professional) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}
