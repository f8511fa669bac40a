package points

import (
	"sync"

	"github.com/mr1hm/go-org-boundaries/internal/hierarchy"
	"github.com/mr1hm/go-org-boundaries/internal/models"
)

// Located is a point tagged with the location it came from.
type Located struct {
	LocationID int64
	models.Point
}

// Aggregator resolves an organization to the deduplicated points of every
// event held by it or any of its descendants.
type Aggregator struct {
	index     *hierarchy.Index
	locations map[int64]*models.Location
	byOrg     map[int64][]*models.Event

	mu   sync.Mutex
	memo map[int64][]Located
}

func New(index *hierarchy.Index, locations []models.Location, events []models.Event) *Aggregator {
	a := &Aggregator{
		index:     index,
		locations: make(map[int64]*models.Location, len(locations)),
		byOrg:     make(map[int64][]*models.Event),
		memo:      make(map[int64][]Located),
	}
	for i := range locations {
		a.locations[locations[i].ID] = &locations[i]
	}
	for i := range events {
		e := &events[i]
		for _, orgID := range e.OrgIDs() {
			a.byOrg[orgID] = append(a.byOrg[orgID], e)
		}
	}
	return a
}

// PointsFor returns one point per usable location, first occurrence wins.
// Null or dangling location ids and locations without coordinates contribute
// nothing. Active filtering belongs to the source (Page.ActiveOnly).
func (a *Aggregator) PointsFor(orgID int64) []Located {
	a.mu.Lock()
	if pts, ok := a.memo[orgID]; ok {
		a.mu.Unlock()
		return pts
	}
	a.mu.Unlock()

	var pts []Located
	seen := make(map[int64]struct{})
	for _, id := range a.index.Descendants(orgID) {
		for _, e := range a.byOrg[id] {
			if e.LocationID == nil {
				continue
			}
			if _, dup := seen[*e.LocationID]; dup {
				continue
			}
			loc := a.locations[*e.LocationID]
			if loc == nil || !loc.HasCoordinates() {
				continue
			}
			seen[loc.ID] = struct{}{}
			pts = append(pts, Located{LocationID: loc.ID, Point: loc.Point()})
		}
	}

	a.mu.Lock()
	a.memo[orgID] = pts
	a.mu.Unlock()
	return pts
}

// Points strips location ids for the geometry kernel.
func Points(located []Located) []models.Point {
	out := make([]models.Point, len(located))
	for i, l := range located {
		out[i] = l.Point
	}
	return out
}

func (a *Aggregator) Reset() {
	a.mu.Lock()
	a.memo = make(map[int64][]Located)
	a.mu.Unlock()
}
