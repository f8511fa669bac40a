// Package rules holds identity-based overrides for umbrella organizations:
// units whose membership is not a compact geographic region and that are
// drawn and navigated differently from data-derived ones.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mr1hm/go-org-boundaries/internal/models"
)

type Rule struct {
	Type models.OrgType
	// Name is compared against the trimmed, lower-cased organization name.
	Name string

	// Decorative draws a fixed star instead of data-derived geometry.
	Decorative bool
	// HiddenAtRoot leaves the unit out of the top-level view.
	HiddenAtRoot bool
	// ViewOnly units are drawn and hoverable but never drilled into.
	ViewOnly bool
	// Aggregate shows every descendant of the next level's type on drill-down,
	// not only direct children.
	Aggregate bool
	// Descend is how many levels a drill-down moves. Zero means one.
	Descend int
}

func (r Rule) Matches(o *models.Organization) bool {
	return o != nil && o.Type == r.Type && o.NormalizedName() == r.Name
}

// Step returns the number of levels a drill-down through this rule moves.
func (r Rule) Step() int {
	if r.Descend <= 0 {
		return 1
	}
	return r.Descend
}

type Rules []Rule

// Default covers the international sector, which skips its single umbrella
// area on the way down, and that umbrella area itself.
var Default = Rules{
	{Type: models.OrgTypeSector, Name: "international", Decorative: true, Aggregate: true, Descend: 2},
	{Type: models.OrgTypeArea, Name: "general international area", Decorative: true, ViewOnly: true},
}

// Match returns the first rule matching o.
func (rs Rules) Match(o *models.Organization) (Rule, bool) {
	for _, r := range rs {
		if r.Matches(o) {
			return r, true
		}
	}
	return Rule{}, false
}

// Step is the drill-down distance for o: the matching rule's, or one.
func (rs Rules) Step(o *models.Organization) int {
	if r, ok := rs.Match(o); ok {
		return r.Step()
	}
	return 1
}

// Parse reads rules of the form
//
//	type:name:flag,flag,descend=N;type:name:...
//
// where flags are decorative, hidden, viewonly and aggregate.
func Parse(s string) (Rules, error) {
	var rs Rules
	for _, entry := range strings.Split(s, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) < 2 {
			return nil, fmt.Errorf("invalid rule %q: want type:name[:flags]", entry)
		}
		t := models.ParseOrgType(parts[0])
		if t == "" {
			return nil, fmt.Errorf("invalid rule %q: unknown type %q", entry, parts[0])
		}
		r := Rule{Type: t, Name: strings.ToLower(strings.TrimSpace(parts[1]))}
		if len(parts) == 3 {
			for _, flag := range strings.Split(parts[2], ",") {
				flag = strings.ToLower(strings.TrimSpace(flag))
				switch {
				case flag == "":
				case flag == "decorative":
					r.Decorative = true
				case flag == "hidden":
					r.HiddenAtRoot = true
				case flag == "viewonly":
					r.ViewOnly = true
				case flag == "aggregate":
					r.Aggregate = true
				case strings.HasPrefix(flag, "descend="):
					n, err := strconv.Atoi(strings.TrimPrefix(flag, "descend="))
					if err != nil || n < 1 {
						return nil, fmt.Errorf("invalid rule %q: bad descend value", entry)
					}
					r.Descend = n
				default:
					return nil, fmt.Errorf("invalid rule %q: unknown flag %q", entry, flag)
				}
			}
		}
		rs = append(rs, r)
	}
	return rs, nil
}
