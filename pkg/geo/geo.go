// Package geo ranks candidates by great-circle distance from a reference point.
package geo

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

// DefaultRadiusKm applies when a search omits the radius.
const DefaultRadiusKm = 10.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Validate reports whether the point is finite and inside the coordinate ranges.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if math.IsNaN(p.Lng) || math.IsInf(p.Lng, 0) || p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// ParsePoint parses query string coordinates into a validated Point.
func ParsePoint(lat, lng string) (Point, error) {
	latVal, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return Point{}, fmt.Errorf("latitude must be a number")
	}
	lngVal, err := strconv.ParseFloat(strings.TrimSpace(lng), 64)
	if err != nil {
		return Point{}, fmt.Errorf("longitude must be a number")
	}
	p := Point{Lat: latVal, Lng: lngVal}
	if err := p.Validate(); err != nil {
		return Point{}, err
	}
	return p, nil
}

// Distance is the Haversine great-circle distance between a and b in kilometers.
func Distance(a, b Point) float64 {
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Ranked pairs a candidate with its distance from the reference point.
type Ranked[T any] struct {
	Item       T
	DistanceKm float64
}

// CoordsFunc extracts a candidate's coordinates. ok=false marks them missing.
type CoordsFunc[T any] func(T) (Point, bool)

// FilterByRadius keeps candidates within radiusKm of ref (inclusive) ordered
// nearest first. Equal distances keep input order. Candidates with missing or
// invalid coordinates are dropped. The result is never nil.
func FilterByRadius[T any](candidates []T, coords CoordsFunc[T], ref Point, radiusKm float64) []Ranked[T] {
	out := make([]Ranked[T], 0, len(candidates))
	if radiusKm < 0 || math.IsNaN(radiusKm) {
		return out
	}
	for _, candidate := range candidates {
		pt, ok := coords(candidate)
		if !ok || pt.Validate() != nil {
			continue
		}
		dist := Distance(ref, pt)
		if dist <= radiusKm {
			out = append(out, Ranked[T]{Item: candidate, DistanceKm: dist})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}
