package domain

import "math"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// PlanarDistance is the straight-line distance between raw lat/lng pairs,
// with no geodesic correction. Used as the routing heuristic.
func (p GeoPoint) PlanarDistance(q GeoPoint) float64 {
	return math.Hypot(p.Lat-q.Lat, p.Lng-q.Lng)
}
