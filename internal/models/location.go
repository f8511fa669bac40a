package models

type Location struct {
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Active    bool     `json:"isActive"`
}

func (l *Location) HasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Point returns the location's coordinates. Callers check HasCoordinates first.
func (l *Location) Point() Point {
	return Point{Lat: *l.Latitude, Lng: *l.Longitude}
}

// Point is a planar (lat, lng) pair in degrees. No projection is applied.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
