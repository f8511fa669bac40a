package navigation

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mr1hm/go-org-boundaries/internal/models"
)

// Query keys. Only one of them is meaningful for a given state.
const (
	KeyOrg   = "org"
	KeyLevel = "level"
)

// Encode stores the deepest selected organization, or the bare level when
// nothing is selected. The root view encodes to no parameters.
func (m *Machine) Encode(s State) url.Values {
	v := url.Values{}
	if anc := s.Ancestor(); anc != nil {
		v.Set(KeyOrg, strconv.FormatInt(anc.ID, 10))
		return v
	}
	if s.Level > 0 {
		v.Set(KeyLevel, strconv.Itoa(s.Level))
	}
	return v
}

// Decode parses a query string such as "?org=12" or "level=2". Anything it
// cannot resolve yields the root view.
func (m *Machine) Decode(raw string) State {
	v, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return State{}
	}
	return m.DecodeValues(v)
}

// DecodeValues rebuilds the selected path by walking parent links up from
// the stored organization. The stored id is the org drilled into, so the
// level shown is the one below it.
func (m *Machine) DecodeValues(v url.Values) State {
	if raw := v.Get(KeyOrg); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return State{}
		}
		o := m.index.Org(id)
		if o == nil {
			return State{}
		}
		next := m.target(o)
		if next < 0 {
			return State{}
		}
		var path []*models.Organization
		for _, a := range m.index.Ancestors(o.ID) {
			if m.LevelOf(a.Type) >= 0 {
				path = append(path, a)
			}
		}
		return State{Level: next, Path: append(path, o)}
	}

	if raw := v.Get(KeyLevel); raw != "" {
		level, err := strconv.Atoi(raw)
		if err != nil || level < 0 || level >= len(m.levels) {
			return State{}
		}
		return State{Level: level}
	}
	return State{}
}
