package model

// MaxSpaceDepth bounds the space tree nesting under a zone.
const MaxSpaceDepth = 3

// StaffModeTag selects how staff assignments resolve inside a zone.
type StaffModeTag string

const (
	// StaffModeZone resolves zone-level assignments for every space.
	StaffModeZone StaffModeTag = "zone"
	// StaffModeSpace requires an assignment on the space itself; zone-level
	// assignments do not cascade and an unassigned space is unstaffed.
	StaffModeSpace StaffModeTag = "space"
)

// Space is a sub-area of a zone. Spaces form a tree via ParentID; a root
// space has an empty ParentID.
type Space struct {
	ID       string `json:"id"`
	ZoneID   string `json:"zoneId"`
	ParentID string `json:"parentId,omitempty"`
	Name     string `json:"name"`
	// AnchoredItemIDs are resource items physically fixed to the space.
	AnchoredItemIDs []string `json:"anchoredItemIds,omitempty"`
	// PlanItemIDs override AnchoredItemIDs for this plan when non-nil.
	PlanItemIDs []string `json:"planItemIds,omitempty"`
	// TypeQuantities overrides the global per-type requirement default.
	TypeQuantities []TypeRequirement `json:"typeQuantities,omitempty"`
}

// Zone is a physical stage, the root of a space tree.
type Zone struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	StaffMode       StaffModeTag      `json:"staffMode"`
	Spaces          []Space           `json:"spaces,omitempty"`
	AnchoredItemIDs []string          `json:"anchoredItemIds,omitempty"`
	PlanItemIDs     []string          `json:"planItemIds,omitempty"`
	TypeQuantities  []TypeRequirement `json:"typeQuantities,omitempty"`
}

// Space returns the space with the given id, or nil.
func (z *Zone) Space(id string) *Space {
	for i := range z.Spaces {
		if z.Spaces[i].ID == id {
			return &z.Spaces[i]
		}
	}
	return nil
}

// AncestorChain returns the ids of the space and every ancestor space, leaf
// first. The zone root itself is not part of the chain.
func (z *Zone) AncestorChain(spaceID string) []string {
	var chain []string
	id := spaceID
	for id != "" && len(chain) <= MaxSpaceDepth {
		sp := z.Space(id)
		if sp == nil {
			break
		}
		chain = append(chain, sp.ID)
		id = sp.ParentID
	}
	return chain
}

// Descendants returns the ids of every space below the given space.
func (z *Zone) Descendants(spaceID string) []string {
	var out []string
	frontier := []string{spaceID}
	for len(frontier) > 0 {
		next := frontier[:0:0]
		for i := range z.Spaces {
			for _, p := range frontier {
				if z.Spaces[i].ParentID == p {
					out = append(out, z.Spaces[i].ID)
					next = append(next, z.Spaces[i].ID)
				}
			}
		}
		frontier = next
	}
	return out
}

// Depth returns the nesting level of the space, 1 for a root space. Unknown
// spaces report 0.
func (z *Zone) Depth(spaceID string) int {
	return len(z.AncestorChain(spaceID))
}

// EffectiveItemIDs resolves the plan override first and falls back to the
// zone defaults.
func (z *Zone) EffectiveItemIDs() []string {
	if z.PlanItemIDs != nil {
		return z.PlanItemIDs
	}
	return z.AnchoredItemIDs
}

// EffectiveItemIDs resolves the plan override first and falls back to the
// space defaults.
func (s *Space) EffectiveItemIDs() []string {
	if s.PlanItemIDs != nil {
		return s.PlanItemIDs
	}
	return s.AnchoredItemIDs
}
