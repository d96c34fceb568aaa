package model

// StaffRole distinguishes production from editorial crew.
type StaffRole string

const (
	RoleProduction StaffRole = "production"
	RoleEditorial  StaffRole = "editorial"
)

// StaffScope tags what a staff assignment binds to.
type StaffScope string

const (
	ScopeZone    StaffScope = "zone"
	ScopeSpace   StaffScope = "space"
	ScopeReality StaffScope = "reality"
	ScopeTeam    StaffScope = "team"
)

// StaffAssignment binds one staff person to a scope.
type StaffAssignment struct {
	ID         string     `json:"id"`
	PersonID   string     `json:"personId"`
	PersonName string     `json:"personName"`
	Role       StaffRole  `json:"role"`
	Scope      StaffScope `json:"scope"`
	ZoneID     string     `json:"zoneId,omitempty"`
	SpaceID    string     `json:"spaceId,omitempty"`
	TeamID     string     `json:"teamId,omitempty"`
}

// ItinerantTeam is a crew unit not bound to a fixed zone.
type ItinerantTeam struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// ResolveStaff is the single resolution point for zone staffing. In zone mode
// zone-level assignments cover every space. In space mode only assignments on
// the space itself count: an unassigned space is unstaffed, zone-level
// assignments do not cascade.
func ResolveStaff(zone *Zone, spaceID string, assignments []StaffAssignment) []StaffAssignment {
	if zone == nil {
		return nil
	}
	var out []StaffAssignment
	for _, a := range assignments {
		switch zone.StaffMode {
		case StaffModeSpace:
			if spaceID == "" {
				if a.Scope == ScopeZone && a.ZoneID == zone.ID {
					out = append(out, a)
				}
			} else if a.Scope == ScopeSpace && a.SpaceID == spaceID {
				out = append(out, a)
			}
		default:
			if a.Scope == ScopeZone && a.ZoneID == zone.ID {
				out = append(out, a)
			}
			if spaceID != "" && a.Scope == ScopeSpace && a.SpaceID == spaceID {
				out = append(out, a)
			}
		}
	}
	return out
}

// ResolveTeamStaff returns the assignments bound to a named itinerant team.
func ResolveTeamStaff(teamID string, assignments []StaffAssignment) []StaffAssignment {
	var out []StaffAssignment
	for _, a := range assignments {
		if a.Scope == ScopeTeam && a.TeamID == teamID {
			out = append(out, a)
		}
	}
	return out
}
