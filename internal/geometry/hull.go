package geometry

import (
	"slices"

	"github.com/mr1hm/go-org-boundaries/internal/models"
)

// Hull returns the convex hull of pts using the monotone chain algorithm on
// planar (lng, lat) coordinates. Collinear boundary points are dropped, so
// fully collinear input collapses to two vertices. Inputs of two or fewer
// points are returned unchanged.
func Hull(pts []models.Point) []models.Point {
	if len(pts) <= 2 {
		return slices.Clone(pts)
	}

	sorted := slices.Clone(pts)
	slices.SortStableFunc(sorted, func(a, b models.Point) int {
		if a.Lng != b.Lng {
			if a.Lng < b.Lng {
				return -1
			}
			return 1
		}
		switch {
		case a.Lat < b.Lat:
			return -1
		case a.Lat > b.Lat:
			return 1
		}
		return 0
	})

	lower := make([]models.Point, 0, len(sorted))
	for _, p := range sorted {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}

	upper := make([]models.Point, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		p := sorted[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}

	// each chain ends where the other begins
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// cross is the z component of (a→b) × (a→c), positive for a counter-clockwise turn.
func cross(a, b, c models.Point) float64 {
	return (b.Lng-a.Lng)*(c.Lat-a.Lat) - (b.Lat-a.Lat)*(c.Lng-a.Lng)
}

// Displayable reports whether a vertex list can be drawn as a polygon.
func Displayable(vertices []models.Point) bool {
	return len(vertices) >= 3
}
