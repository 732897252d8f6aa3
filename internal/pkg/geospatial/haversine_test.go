package geospatial

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	// Karachi to Lahore, roughly 1030 km.
	d := HaversineKm(24.8607, 67.0011, 31.5204, 74.3587)
	if d < 1000 || d > 1060 {
		t.Errorf("expected ~1030 km, got %.1f", d)
	}
	if HaversineKm(10, 20, 10, 20) != 0 {
		t.Error("expected zero for identical points")
	}
	if math.Abs(HaversineKm(0, 0, 1, 0)-111.19) > 0.1 {
		t.Errorf("one degree of latitude should be ~111.19 km, got %.3f", HaversineKm(0, 0, 1, 0))
	}
}

func TestValidCoordinate(t *testing.T) {
	if !ValidCoordinate(24.86, 67.0) {
		t.Error("Karachi should be valid")
	}
	if ValidCoordinate(91, 0) || ValidCoordinate(0, 181) || ValidCoordinate(math.NaN(), 0) {
		t.Error("out-of-range coordinates should be invalid")
	}
}
