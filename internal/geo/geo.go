// Package geo holds the great-circle helpers shared by the catalog filters and
// the scoring engine.
package geo

import (
	"math"

	"github.com/chrisdamba/foodmatch/internal/models"
)

const (
	earthRadiusMeters = 6371000.0 // Earth's radius in metres

	// WalkSpeedMetersPerMinute is roughly 4.8 km/h.
	WalkSpeedMetersPerMinute = 80.0
)

// Distance returns the haversine distance between a and b in metres.
func Distance(a, b models.Location) float64 {
	lat1 := degreesToRadians(a.Lat)
	lon1 := degreesToRadians(a.Lon)
	lat2 := degreesToRadians(b.Lat)
	lon2 := degreesToRadians(b.Lon)

	dlat := lat2 - lat1
	dlon := lon2 - lon1
	h := math.Pow(math.Sin(dlat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dlon/2), 2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// WalkTimeMinutes estimates walking minutes for a distance, never less than one.
func WalkTimeMinutes(distanceMeters float64) int {
	minutes := int(math.Ceil(distanceMeters / WalkSpeedMetersPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

type Box struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
	// WrapsAntimeridian is set when the longitude span crosses ±180; the
	// longitude test is then MinLon <= lon || lon <= MaxLon.
	WrapsAntimeridian bool
}

// BoundingBox returns a box that contains every point within radiusMeters of
// center. It is a coarse pre-filter; callers still check Distance.
func BoundingBox(center models.Location, radiusMeters float64) Box {
	angular := radiusMeters / earthRadiusMeters
	latDelta := radiansToDegrees(angular)

	box := Box{
		MinLat: center.Lat - latDelta,
		MaxLat: center.Lat + latDelta,
		MinLon: -180,
		MaxLon: 180,
	}
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		// a pole is inside the circle so every longitude qualifies
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		return box
	}

	lonDelta := radiansToDegrees(math.Asin(math.Min(1, math.Sin(angular)/math.Cos(degreesToRadians(center.Lat)))))
	box.MinLon = center.Lon - lonDelta
	box.MaxLon = center.Lon + lonDelta
	if box.MinLon < -180 {
		box.MinLon += 360
		box.WrapsAntimeridian = true
	} else if box.MaxLon > 180 {
		box.MaxLon -= 360
		box.WrapsAntimeridian = true
	}
	return box
}

func (b Box) Contains(l models.Location) bool {
	if l.Lat < b.MinLat || l.Lat > b.MaxLat {
		return false
	}
	if b.WrapsAntimeridian {
		return l.Lon >= b.MinLon || l.Lon <= b.MaxLon
	}
	return l.Lon >= b.MinLon && l.Lon <= b.MaxLon
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

func radiansToDegrees(radians float64) float64 {
	return radians * 180 / math.Pi
}
