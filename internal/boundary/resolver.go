package boundary

import (
	"github.com/mr1hm/go-org-boundaries/internal/geometry"
	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/points"
	"github.com/mr1hm/go-org-boundaries/internal/rules"
)

type Kind string

const (
	KindHull       Kind = "hull"
	KindCircle     Kind = "circle"
	KindDecorative Kind = "decorative"
)

// Shape is an open ring of vertices plus how it was derived.
type Shape struct {
	Kind     Kind
	Vertices []models.Point
}

type Options struct {
	// Anchor is where decorative units are drawn, away from real regions.
	Anchor       models.Point
	StarRadius   float64
	StarPoints   int
	CirclePoints int
	CircleRadius float64
}

func DefaultOptions() Options {
	return Options{
		Anchor:       models.Point{Lat: 30, Lng: -40},
		StarRadius:   2.5,
		StarPoints:   geometry.DefaultStarPoints,
		CirclePoints: geometry.DefaultCirclePoints,
		CircleRadius: geometry.DefaultCircleRadius,
	}
}

// PointSource is satisfied by *points.Aggregator.
type PointSource interface {
	PointsFor(orgID int64) []points.Located
}

type Resolver struct {
	points PointSource
	rules  rules.Rules
	opts   Options
}

func NewResolver(src PointSource, rs rules.Rules, opts Options) *Resolver {
	return &Resolver{points: src, rules: rs, opts: opts}
}

// Resolve picks the shape for org. Identity rules win over point data; too
// few points, or a hull that collapses, means the org is not drawn.
func (r *Resolver) Resolve(org *models.Organization) (Shape, bool) {
	if org == nil {
		return Shape{}, false
	}
	if rule, ok := r.rules.Match(org); ok && rule.Decorative {
		return Shape{
			Kind:     KindDecorative,
			Vertices: geometry.Star(r.opts.Anchor, r.opts.StarRadius, r.opts.StarPoints),
		}, true
	}

	pts := points.Points(r.points.PointsFor(org.ID))
	switch len(pts) {
	case 0:
		return Shape{}, false
	case 1, 2:
		return Shape{
			Kind:     KindCircle,
			Vertices: geometry.CircleBuffer(pts, r.opts.CirclePoints, r.opts.CircleRadius),
		}, true
	}

	hull := geometry.Hull(pts)
	if !geometry.Displayable(hull) {
		return Shape{}, false
	}
	return Shape{Kind: KindHull, Vertices: hull}, true
}

// Closed returns the vertices with the first one repeated at the end, as
// GeoJSON linear rings require.
func (s Shape) Closed() []models.Point {
	if len(s.Vertices) == 0 {
		return nil
	}
	ring := make([]models.Point, 0, len(s.Vertices)+1)
	ring = append(ring, s.Vertices...)
	return append(ring, s.Vertices[0])
}
