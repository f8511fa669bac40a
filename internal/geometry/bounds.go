package geometry

import "github.com/mr1hm/go-org-boundaries/internal/models"

// Bounds is an axis-aligned box in the GeoJSON bbox order.
type Bounds struct {
	MinLng, MinLat, MaxLng, MaxLat float64
}

// BoundsOf returns the box around every vertex of every ring. ok is false
// when there are no vertices.
func BoundsOf(rings ...[]models.Point) (b Bounds, ok bool) {
	for _, ring := range rings {
		for _, p := range ring {
			if !ok {
				b = Bounds{MinLng: p.Lng, MinLat: p.Lat, MaxLng: p.Lng, MaxLat: p.Lat}
				ok = true
				continue
			}
			b.MinLng = min(b.MinLng, p.Lng)
			b.MinLat = min(b.MinLat, p.Lat)
			b.MaxLng = max(b.MaxLng, p.Lng)
			b.MaxLat = max(b.MaxLat, p.Lat)
		}
	}
	return b, ok
}

func (b Bounds) Slice() []float64 {
	return []float64{b.MinLng, b.MinLat, b.MaxLng, b.MaxLat}
}

// Contains uses the even-odd ray test on a closed or open ring.
func Contains(ring []models.Point, pt models.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Lat > pt.Lat) != (b.Lat > pt.Lat) &&
			pt.Lng < (b.Lng-a.Lng)*(pt.Lat-a.Lat)/(b.Lat-a.Lat)+a.Lng {
			inside = !inside
		}
	}
	return inside
}
