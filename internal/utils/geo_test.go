package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistance_SamePoint(t *testing.T) {
	d := CalculateDistance(40.7128, -74.0060, 40.7128, -74.0060)
	assert.Equal(t, 0.0, d)
}

func TestCalculateDistance_ShortHop(t *testing.T) {
	// ~0.0009 degrees of latitude is about 100 meters
	d := CalculateDistance(40.7128, -74.0060, 40.7137, -74.0060)
	assert.InDelta(t, 100.0, d, 10.0)
}

func TestCalculateDistance_KnownCities(t *testing.T) {
	// New York to Los Angeles, roughly 3936 km
	d := CalculateDistance(40.7128, -74.0060, 34.0522, -118.2437)
	assert.InDelta(t, 3936000.0, d, 50000.0)
}

func TestCalculateDistance_Symmetric(t *testing.T) {
	a := CalculateDistance(40.7128, -74.0060, 42.3601, -71.0589)
	b := CalculateDistance(42.3601, -71.0589, 40.7128, -74.0060)
	assert.InDelta(t, a, b, 0.0001)
}
