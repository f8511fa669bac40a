package models

type Event struct {
	ID         int64   `json:"id"`
	LocationID *int64  `json:"locationId,omitempty"`
	Active     bool    `json:"isActive"`
	Parents    []int64 `json:"parents,omitempty"`
	Regions    []int64 `json:"regions,omitempty"`
}

// OrgIDs returns every organization the event counts toward: parents first,
// then regions, without duplicates.
func (e *Event) OrgIDs() []int64 {
	ids := make([]int64, 0, len(e.Parents)+len(e.Regions))
	seen := make(map[int64]struct{}, cap(ids))
	for _, list := range [][]int64{e.Parents, e.Regions} {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// Snapshot holds the three collections loaded at startup. It is read-only
// once built.
type Snapshot struct {
	Organizations []Organization
	Locations     []Location
	Events        []Event
}
