package api

import (
	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/session"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	BBox     []float64 `json:"bbox,omitempty"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

func toGeoJSON(view session.View) FeatureCollection {
	features := make([]Feature, 0, len(view.Features))

	for _, f := range view.Features {
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Polygon",
				Coordinates: [][][]float64{ring(f.Shape.Closed())},
			},
			Properties: map[string]any{
				"id":        f.Org.ID,
				"name":      f.Org.Name,
				"type":      f.Org.Type,
				"kind":      f.Shape.Kind,
				"color":     f.Color,
				"emphasis":  f.Emphasis,
				"drillable": f.Drillable,
			},
		})
	}

	fc := FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
	if view.Bounds != nil {
		fc.BBox = view.Bounds.Slice()
	}
	return fc
}

// ring converts to GeoJSON position order, longitude first.
func ring(pts []models.Point) [][]float64 {
	out := make([][]float64, len(pts))
	for i, p := range pts {
		out[i] = []float64{p.Lng, p.Lat}
	}
	return out
}
