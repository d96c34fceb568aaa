package model

// TeamMode selects how a template consumes itinerant teams.
type TeamMode string

const (
	TeamNone     TeamMode = "none"
	TeamAny      TeamMode = "any"
	TeamSpecific TeamMode = "specific"
)

// TypeRequirement asks for any Quantity available units of a resource type.
type TypeRequirement struct {
	ResourceTypeID string `json:"resourceTypeId"`
	Quantity       int    `json:"quantity"`
}

// ItemRequirement asks for a specific resource item.
type ItemRequirement struct {
	ResourceItemID string `json:"resourceItemId"`
	Quantity       int    `json:"quantity"`
}

// AnyOfRequirement asks for Quantity distinct items out of the candidate set.
type AnyOfRequirement struct {
	Quantity        int      `json:"quantity"`
	ResourceItemIDs []string `json:"resourceItemIds"`
}

// Requirement is the resource-requirement expression carried by a template.
// A nil Requirement means the template needs no resources. At most one AnyOf
// clause is supported.
type Requirement struct {
	ByType []TypeRequirement `json:"byType,omitempty"`
	ByItem []ItemRequirement `json:"byItem,omitempty"`
	AnyOf  *AnyOfRequirement `json:"anyOf,omitempty"`
}

// Empty reports whether the expression carries no clause at all.
func (r *Requirement) Empty() bool {
	return r == nil || (len(r.ByType) == 0 && len(r.ByItem) == 0 && r.AnyOf == nil)
}

// TaskTemplate is the reusable definition of a kind of task.
type TaskTemplate struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	DurationMinutes int          `json:"durationMinutes"`
	CameraCount     int          `json:"cameraCount"`
	ZoneID          string       `json:"zoneId,omitempty"`
	SpaceID         string       `json:"spaceId,omitempty"`
	Requirement     *Requirement `json:"requirement,omitempty"`
	// HasDependency must be accompanied by at least one entry in
	// DependsOnTemplateIDs; the authoring boundary enforces it, the
	// engine re-validates.
	HasDependency        bool     `json:"hasDependency"`
	DependsOnTemplateIDs []string `json:"dependsOnTemplateIds,omitempty"`
	TeamMode             TeamMode `json:"teamMode"`
	TeamID               string   `json:"teamId,omitempty"`
	Color                string   `json:"color,omitempty"`
	ZoneColor            string   `json:"zoneColor,omitempty"`
}

// Specificity ranks the template's location binding: space-bound templates
// place before zone-bound ones, which place before unbound ones.
func (t TaskTemplate) Specificity() int {
	switch {
	case t.SpaceID != "":
		return 2
	case t.ZoneID != "":
		return 1
	default:
		return 0
	}
}
