package navigation

import (
	"slices"

	"github.com/mr1hm/go-org-boundaries/internal/hierarchy"
	"github.com/mr1hm/go-org-boundaries/internal/models"
	"github.com/mr1hm/go-org-boundaries/internal/rules"
)

// State is the current drill-down position. Path runs from the outermost
// selected ancestor down to the one whose children are on display; the
// virtual root is implicit and never stored.
type State struct {
	Level int
	Path  []*models.Organization
}

// Ancestor returns the deepest selected organization, or nil.
func (s State) Ancestor() *models.Organization {
	if len(s.Path) == 0 {
		return nil
	}
	return s.Path[len(s.Path)-1]
}

func (s State) clone() State {
	return State{Level: s.Level, Path: append([]*models.Organization(nil), s.Path...)}
}

// Message is an input to Machine.Apply.
type Message interface {
	isMessage()
}

// Select drills into an organization on display.
type Select struct{ OrgID int64 }

// Back steps up one selection.
type Back struct{}

// Breadcrumb returns to a selected ancestor. OrgID 0 means the root view.
type Breadcrumb struct{ OrgID int64 }

// SetLevel shows every organization of a level, independent of lineage.
type SetLevel struct{ Level int }

func (Select) isMessage()     {}
func (Back) isMessage()       {}
func (Breadcrumb) isMessage() {}
func (SetLevel) isMessage()   {}

type Machine struct {
	levels []models.OrgType
	index  *hierarchy.Index
	rules  rules.Rules
}

func NewMachine(levels []models.OrgType, index *hierarchy.Index, rs rules.Rules) *Machine {
	if len(levels) == 0 {
		levels = models.DefaultLevels
	}
	return &Machine{levels: levels, index: index, rules: rs}
}

func (m *Machine) Levels() []models.OrgType {
	return m.levels
}

// LevelOf returns the position of t in the level order, or -1 for types
// outside it such as the virtual root.
func (m *Machine) LevelOf(t models.OrgType) int {
	for i, l := range m.levels {
		if l == t {
			return i
		}
	}
	return -1
}

// target is the level shown after drilling into o, or -1 when o cannot be
// drilled into.
func (m *Machine) target(o *models.Organization) int {
	pos := m.LevelOf(o.Type)
	if pos < 0 {
		return -1
	}
	rule, ok := m.rules.Match(o)
	if ok && rule.ViewOnly {
		return -1
	}
	next := pos + m.rules.Step(o)
	if next >= len(m.levels) {
		return -1
	}
	return next
}

// Drillable reports whether selecting o changes the state.
func (m *Machine) Drillable(o *models.Organization) bool {
	return o != nil && m.target(o) >= 0
}

// Apply is the transition function. It never mutates s; the bool reports
// whether the state changed.
func (m *Machine) Apply(s State, msg Message) (State, bool) {
	switch msg := msg.(type) {
	case Select:
		return m.selectOrg(s, msg.OrgID)
	case Back:
		return m.back(s)
	case Breadcrumb:
		return m.breadcrumb(s, msg.OrgID)
	case SetLevel:
		if msg.Level < 0 || msg.Level >= len(m.levels) {
			return s, false
		}
		return State{Level: msg.Level}, true
	}
	return s, false
}

func (m *Machine) selectOrg(s State, id int64) (State, bool) {
	o := m.index.Org(id)
	if o == nil {
		return s, false
	}
	next := m.target(o)
	if next < 0 {
		return s, false
	}
	// only a shape drawn in s can be drilled into
	if !slices.ContainsFunc(m.Visible(s), func(v *models.Organization) bool { return v.ID == o.ID }) {
		return s, false
	}

	out := s.clone()
	out.Level = next
	if len(out.Path) == 0 {
		if p := m.index.Parent(o.ID); p != nil && m.LevelOf(p.Type) >= 0 {
			out.Path = append(out.Path, p)
		}
	}
	out.Path = append(out.Path, o)
	return out, true
}

func (m *Machine) back(s State) (State, bool) {
	if s.Level == 0 && len(s.Path) == 0 {
		return s, false
	}
	out := s.clone()
	step := 1
	if n := len(out.Path); n > 0 {
		step = m.rules.Step(out.Path[n-1])
		out.Path = out.Path[:n-1]
	}
	out.Level = max(out.Level-step, 0)
	return out, true
}

func (m *Machine) breadcrumb(s State, id int64) (State, bool) {
	if id == 0 {
		return State{}, true
	}
	for i, o := range s.Path {
		if o.ID != id {
			continue
		}
		next := m.target(o)
		if next < 0 {
			return s, false
		}
		out := State{Level: next, Path: append([]*models.Organization(nil), s.Path[:i+1]...)}
		return out, true
	}
	return s, false
}

// Visible lists the organizations drawn in state s, in load order.
func (m *Machine) Visible(s State) []*models.Organization {
	if s.Level < 0 || s.Level >= len(m.levels) {
		return nil
	}
	want := m.levels[s.Level]

	if s.Level == 0 {
		var out []*models.Organization
		for _, o := range m.index.OfType(want) {
			if r, ok := m.rules.Match(o); ok && r.HiddenAtRoot {
				continue
			}
			out = append(out, o)
		}
		return out
	}

	anc := s.Ancestor()
	if anc == nil {
		return m.index.OfType(want)
	}

	if r, ok := m.rules.Match(anc); ok && r.Aggregate {
		under := make(map[int64]struct{})
		for _, id := range m.index.Descendants(anc.ID) {
			under[id] = struct{}{}
		}
		var out []*models.Organization
		for _, o := range m.index.OfType(want) {
			if _, ok := under[o.ID]; ok && o.ID != anc.ID {
				out = append(out, o)
			}
		}
		return out
	}

	var out []*models.Organization
	for _, id := range m.index.Children(anc.ID) {
		if o := m.index.Org(id); o.Type == want {
			out = append(out, o)
		}
	}
	return out
}
