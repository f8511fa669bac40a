package hierarchy

import (
	"slices"
	"sync"

	"github.com/mr1hm/go-org-boundaries/internal/models"
)

// Index is a parent → children adjacency over organizations with a memo of
// descendant sets. It is built once per snapshot.
type Index struct {
	orgs     map[int64]*models.Organization
	order    []int64
	children map[int64][]int64

	mu   sync.Mutex
	memo map[int64][]int64
}

func New(orgs []models.Organization) *Index {
	idx := &Index{
		orgs:     make(map[int64]*models.Organization, len(orgs)),
		children: make(map[int64][]int64),
		memo:     make(map[int64][]int64),
	}
	for i := range orgs {
		o := &orgs[i]
		idx.orgs[o.ID] = o
		idx.order = append(idx.order, o.ID)
		if o.ParentID != nil {
			idx.children[*o.ParentID] = append(idx.children[*o.ParentID], o.ID)
		}
	}
	return idx
}

// Org returns the organization with the given id, or nil.
func (idx *Index) Org(id int64) *models.Organization {
	return idx.orgs[id]
}

// Parent returns the organization's parent when it is known.
func (idx *Index) Parent(id int64) *models.Organization {
	o := idx.orgs[id]
	if o == nil || o.ParentID == nil {
		return nil
	}
	return idx.orgs[*o.ParentID]
}

// Children returns direct children in load order.
func (idx *Index) Children(id int64) []int64 {
	return idx.children[id]
}

// Descendants returns id followed by every organization reachable through
// child links, in preorder. Unknown ids yield nil. The returned slice is
// shared with the memo and must not be modified.
func (idx *Index) Descendants(id int64) []int64 {
	if _, ok := idx.orgs[id]; !ok {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if ids, ok := idx.memo[id]; ok {
		return ids
	}

	visited := make(map[int64]struct{})
	ids := idx.collect(id, visited, nil)
	idx.memo[id] = ids
	return ids
}

// collect stops at anything already visited, so a cycle in the parent graph
// ends the walk instead of recursing forever.
func (idx *Index) collect(id int64, visited map[int64]struct{}, acc []int64) []int64 {
	if _, seen := visited[id]; seen {
		return acc
	}
	visited[id] = struct{}{}
	acc = append(acc, id)
	for _, child := range idx.children[id] {
		acc = idx.collect(child, visited, acc)
	}
	return acc
}

// Ancestors returns the parent chain of id, root first, excluding id itself.
// Dangling parent ids end the chain.
func (idx *Index) Ancestors(id int64) []*models.Organization {
	var chain []*models.Organization
	visited := map[int64]struct{}{id: {}}
	for p := idx.Parent(id); p != nil; p = idx.Parent(p.ID) {
		if _, seen := visited[p.ID]; seen {
			break
		}
		visited[p.ID] = struct{}{}
		chain = append(chain, p)
	}
	slices.Reverse(chain)
	return chain
}

// OfType returns organizations of type t in load order.
func (idx *Index) OfType(t models.OrgType) []*models.Organization {
	var out []*models.Organization
	for _, id := range idx.order {
		if o := idx.orgs[id]; o.Type == t {
			out = append(out, o)
		}
	}
	return out
}

func (idx *Index) Len() int {
	return len(idx.orgs)
}

// Reset drops every memoized descendant set.
func (idx *Index) Reset() {
	idx.mu.Lock()
	idx.memo = make(map[int64][]int64)
	idx.mu.Unlock()
}
