package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineZeroForSamePoint(t *testing.T) {
	assert.Equal(t, 0.0, Haversine(9.6615, 80.0255, 9.6615, 80.0255))
	assert.Equal(t, 0.0, Haversine(0, 0, 0, 0))
}

func TestHaversineSymmetry(t *testing.T) {
	points := [][4]float64{
		{9.6615, 80.0255, 6.9271, 79.8612},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{0.01, -0.01, -0.01, 0.01},
	}
	for _, p := range points {
		ab := Haversine(p[0], p[1], p[2], p[3])
		ba := Haversine(p[2], p[3], p[0], p[1])
		assert.InDelta(t, ab, ba, 1e-9)
	}
}

func TestHaversineReferenceDistance(t *testing.T) {
	// Jaffna to Colombo, roughly 305 km great-circle.
	d := Haversine(9.6615, 80.0255, 6.9271, 79.8612)
	assert.InDelta(t, 304.6, d, 1.5)

	// One tenth of a degree of latitude is about 11.1 km.
	d = Haversine(9.0, 80.0, 9.1, 80.0)
	assert.InDelta(t, 11.12, d, 0.05)
}

func TestHaversinePropagatesNaN(t *testing.T) {
	assert.True(t, math.IsNaN(Haversine(math.NaN(), 80.0, 9.0, 80.0)))
	assert.True(t, math.IsNaN(Haversine(9.0, 80.0, 9.1, math.NaN())))
}
