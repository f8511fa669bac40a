package geometry

import (
	"math"

	"github.com/mr1hm/go-org-boundaries/internal/models"
)

const (
	DefaultCirclePoints = 8
	// DefaultCircleRadius is roughly 16 km at the equator. No geodesic correction.
	DefaultCircleRadius = 0.15
	DefaultStarPoints   = 5
	starInnerRatio      = 0.4
)

// CircleBuffer builds an n-gon of the given radius around a single point, or
// around the midpoint of two points. Any other point count yields nil.
func CircleBuffer(pts []models.Point, n int, radius float64) []models.Point {
	var center models.Point
	switch len(pts) {
	case 1:
		center = pts[0]
	case 2:
		center = Midpoint(pts[0], pts[1])
	default:
		return nil
	}
	if n <= 0 {
		n = DefaultCirclePoints
	}
	if radius <= 0 {
		radius = DefaultCircleRadius
	}

	out := make([]models.Point, 0, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		out = append(out, models.Point{
			Lat: center.Lat + radius*math.Sin(angle),
			Lng: center.Lng + radius*math.Cos(angle),
		})
	}
	return out
}

// Star builds a star polygon with 2*points vertices alternating between the
// outer radius and 0.4 of it. The first vertex points north.
func Star(center models.Point, outer float64, points int) []models.Point {
	if points <= 0 {
		points = DefaultStarPoints
	}
	inner := outer * starInnerRatio
	step := math.Pi / float64(points)

	out := make([]models.Point, 0, 2*points)
	for i := 0; i < 2*points; i++ {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		// -90° is north; decreasing angles keep the ring
		// counter-clockwise in (lng, lat)
		angle := -math.Pi/2 - float64(i)*step
		out = append(out, models.Point{
			Lat: center.Lat - r*math.Sin(angle),
			Lng: center.Lng + r*math.Cos(angle),
		})
	}
	return out
}

func Midpoint(a, b models.Point) models.Point {
	return models.Point{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}
}

// Distance is the planar distance in degrees.
func Distance(a, b models.Point) float64 {
	return math.Hypot(a.Lat-b.Lat, a.Lng-b.Lng)
}
