package models

import "strings"

type OrgType string

const (
	OrgTypeNation OrgType = "nation" // virtual root, never a navigable level
	OrgTypeSector OrgType = "sector"
	OrgTypeArea   OrgType = "area"
	OrgTypeRegion OrgType = "region"
	OrgTypeAO     OrgType = "ao"
)

// DefaultLevels is the drill-down order, outermost first.
var DefaultLevels = []OrgType{OrgTypeSector, OrgTypeArea, OrgTypeRegion, OrgTypeAO}

func ParseOrgType(s string) OrgType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nation":
		return OrgTypeNation
	case "sector":
		return OrgTypeSector
	case "area":
		return OrgTypeArea
	case "region":
		return OrgTypeRegion
	case "ao":
		return OrgTypeAO
	default:
		return ""
	}
}

type Organization struct {
	ID          int64   `json:"id"`
	ParentID    *int64  `json:"parentId,omitempty"`
	Name        string  `json:"name"`
	Type        OrgType `json:"orgType"`
	Description *string `json:"description,omitempty"`
	Website     *string `json:"website,omitempty"`
	Email       *string `json:"email,omitempty"`
	Twitter     *string `json:"twitter,omitempty"`
	Facebook    *string `json:"facebook,omitempty"`
	Instagram   *string `json:"instagram,omitempty"`
	Active      bool    `json:"isActive"`
}

// NormalizedName is the trimmed, lower-cased name used for identity rules.
func (o *Organization) NormalizedName() string {
	return strings.ToLower(strings.TrimSpace(o.Name))
}

func (o *Organization) HasParent() bool {
	return o.ParentID != nil
}
