// Package session owns everything derived from one loaded snapshot: the
// hierarchy index, point and color memos, the boundary resolver and the
// current navigation state. Reset rebuilds all of it together.
package session

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/mr1hm/go-org-boundaries/internal/boundary"
	"github.com/mr1hm/go-org-boundaries/internal/geometry"
	"github.com/mr1hm/go-org-boundaries/internal/hierarchy"
	"github.com/mr1hm/go-org-boundaries/internal/metrics"
	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/navigation"
	"github.com/mr1hm/go-org-boundaries/internal/points"
	"github.com/mr1hm/go-org-boundaries/internal/rules"
)

type Options struct {
	Levels   []models.OrgType
	Rules    rules.Rules
	Boundary boundary.Options
}

func DefaultOptions() Options {
	return Options{
		Levels:   models.DefaultLevels,
		Rules:    rules.Default,
		Boundary: boundary.DefaultOptions(),
	}
}

// Feature is one organization ready for the renderer.
type Feature struct {
	Org       *models.Organization
	Shape     boundary.Shape
	Color     string
	Emphasis  bool
	Drillable bool
}

// View is what the renderer draws for a state.
type View struct {
	State    navigation.State
	Features []Feature
	// Bounds is a fit-to hint covering every feature; nil when nothing is drawn.
	Bounds *geometry.Bounds
}

type Session struct {
	opts Options

	mu       sync.RWMutex
	snapshot *models.Snapshot
	index    *hierarchy.Index
	points   *points.Aggregator
	resolver *boundary.Resolver
	machine  *navigation.Machine
	colors   *Palette
	state    navigation.State
}

func New(snap *models.Snapshot, opts Options) *Session {
	s := &Session{opts: opts, colors: NewPalette()}
	s.Reset(snap)
	return s
}

// Reset swaps in a new snapshot, dropping every memo and returning to the
// root view.
func (s *Session) Reset(snap *models.Snapshot) {
	if snap == nil {
		snap = &models.Snapshot{}
	}
	index := hierarchy.New(snap.Organizations)
	agg := points.New(index, snap.Locations, snap.Events)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.index = index
	s.points = agg
	s.resolver = boundary.NewResolver(agg, s.opts.Rules, s.opts.Boundary)
	s.machine = navigation.NewMachine(s.opts.Levels, index, s.opts.Rules)
	s.colors.Reset()
	s.state = navigation.State{}

	metrics.EntitiesLoaded.WithLabelValues("organizations").Set(float64(len(snap.Organizations)))
	metrics.EntitiesLoaded.WithLabelValues("locations").Set(float64(len(snap.Locations)))
	metrics.EntitiesLoaded.WithLabelValues("events").Set(float64(len(snap.Events)))
}

func (s *Session) Machine() *navigation.Machine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine
}

func (s *Session) Org(id int64) *models.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Org(id)
}

func (s *Session) State() navigation.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies msg to the current state.
func (s *Session) Dispatch(msg navigation.Message) (navigation.State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, changed := s.machine.Apply(s.state, msg)
	metrics.TransitionsTotal.WithLabelValues(messageName(msg), strconv.FormatBool(changed)).Inc()
	if changed {
		s.state = next
		slog.Debug("navigation", "message", messageName(msg), "level", next.Level, "path_len", len(next.Path))
	}
	return s.state, changed
}

// Restore replaces the current state with one decoded from a query string.
func (s *Session) Restore(query string) navigation.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.machine.Decode(query)
	return s.state
}

// Query is the shareable form of the current state.
func (s *Session) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.Encode(s.state).Encode()
}

// Render resolves a shape for every visible organization in st. Orgs that
// resolve to no shape are left out. highlight marks one feature for
// emphasis; 0 marks none.
func (s *Session) Render(st navigation.State, highlight int64) View {
	start := time.Now()
	defer func() {
		metrics.RenderDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	machine, resolver, colors := s.machine, s.resolver, s.colors
	s.mu.RUnlock()

	view := View{State: st}
	var rings [][]models.Point
	for _, o := range machine.Visible(st) {
		shape, ok := resolver.Resolve(o)
		if !ok {
			metrics.BoundariesTotal.WithLabelValues("none").Inc()
			continue
		}
		metrics.BoundariesTotal.WithLabelValues(string(shape.Kind)).Inc()
		view.Features = append(view.Features, Feature{
			Org:       o,
			Shape:     shape,
			Color:     colors.Color(o.ID),
			Emphasis:  o.ID == highlight,
			Drillable: machine.Drillable(o),
		})
		rings = append(rings, shape.Vertices)
	}
	if b, ok := geometry.BoundsOf(rings...); ok {
		view.Bounds = &b
	}
	return view
}

// Detail is the info-panel data for one organization.
type Detail struct {
	Org        *models.Organization
	PointCount int
	Shape      *boundary.Shape
	Color      string
	Drillable  bool
	Ancestors  []*models.Organization
}

func (s *Session) Detail(id int64) (Detail, bool) {
	s.mu.RLock()
	index, agg, resolver, machine, colors := s.index, s.points, s.resolver, s.machine, s.colors
	s.mu.RUnlock()

	o := index.Org(id)
	if o == nil {
		return Detail{}, false
	}
	d := Detail{
		Org:        o,
		PointCount: len(agg.PointsFor(id)),
		Color:      colors.Color(id),
		Drillable:  machine.Drillable(o),
		Ancestors:  index.Ancestors(id),
	}
	if shape, ok := resolver.Resolve(o); ok {
		d.Shape = &shape
	}
	return d, true
}

// Locate returns the visible organization whose shape contains pt, for
// renderers that report clicks as coordinates.
func (s *Session) Locate(st navigation.State, pt models.Point) *models.Organization {
	for _, f := range s.Render(st, 0).Features {
		if geometry.Contains(f.Shape.Vertices, pt) {
			return f.Org
		}
	}
	return nil
}

func messageName(msg navigation.Message) string {
	switch msg.(type) {
	case navigation.Select:
		return "select"
	case navigation.Back:
		return "back"
	case navigation.Breadcrumb:
		return "breadcrumb"
	case navigation.SetLevel:
		return "set_level"
	}
	return "unknown"
}
