package model

// Snapshot is the immutable view of a plan loaded once at the start of a
// generation run. The engine never mutates it; committed placements are
// written back through the task writer.
type Snapshot struct {
	Plan          Plan
	Contestants   []Contestant
	Templates     []TaskTemplate
	Tasks         []DailyTask
	Zones         []Zone
	ResourceTypes []ResourceType
	Items         []ResourceItem
	PlanItems     []PlanResourceItem
	Staff         []StaffAssignment
	Teams         []ItinerantTeam
	Transport     TransportSettings
}

// Template returns the template with the given id, or nil.
func (s *Snapshot) Template(id string) *TaskTemplate {
	for i := range s.Templates {
		if s.Templates[i].ID == id {
			return &s.Templates[i]
		}
	}
	return nil
}

// TemplateByName returns the first template with the given name, or nil.
func (s *Snapshot) TemplateByName(name string) *TaskTemplate {
	for i := range s.Templates {
		if s.Templates[i].Name == name {
			return &s.Templates[i]
		}
	}
	return nil
}

// Task returns the daily task with the given id, or nil.
func (s *Snapshot) Task(id string) *DailyTask {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return &s.Tasks[i]
		}
	}
	return nil
}

// Contestant returns the contestant with the given id, or nil.
func (s *Snapshot) Contestant(id string) *Contestant {
	for i := range s.Contestants {
		if s.Contestants[i].ID == id {
			return &s.Contestants[i]
		}
	}
	return nil
}

// Zone returns the zone with the given id, or nil.
func (s *Snapshot) Zone(id string) *Zone {
	for i := range s.Zones {
		if s.Zones[i].ID == id {
			return &s.Zones[i]
		}
	}
	return nil
}

// ZoneOfSpace returns the zone owning the given space, or nil.
func (s *Snapshot) ZoneOfSpace(spaceID string) *Zone {
	for i := range s.Zones {
		if s.Zones[i].Space(spaceID) != nil {
			return &s.Zones[i]
		}
	}
	return nil
}

// Item returns the resource item with the given id, or nil.
func (s *Snapshot) Item(id string) *ResourceItem {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

// Team returns the itinerant team with the given id, or nil.
func (s *Snapshot) Team(id string) *ItinerantTeam {
	for i := range s.Teams {
		if s.Teams[i].ID == id {
			return &s.Teams[i]
		}
	}
	return nil
}

// ItemAvailable resolves availability with the plan override first and the
// item's own flag as fallback. The two layers are never merged.
func (s *Snapshot) ItemAvailable(itemID string) bool {
	for i := range s.PlanItems {
		pi := &s.PlanItems[i]
		if pi.ItemID == itemID && pi.AvailableOverride != nil {
			return *pi.AvailableOverride
		}
	}
	if it := s.Item(itemID); it != nil {
		return it.Available
	}
	return false
}

// ComponentClosure returns the item id and every transitive component id.
// Traversal carries a visited set; composition cycles are reported separately
// at load time and simply terminate the walk here.
func (s *Snapshot) ComponentClosure(itemID string) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(id string)
	walk = func(id string) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
		if it := s.Item(id); it != nil {
			for _, c := range it.Components {
				walk(c.ItemID)
			}
		}
	}
	walk(itemID)
	return out
}

// ItemsOfType lists the item ids belonging to a resource type, in input order.
func (s *Snapshot) ItemsOfType(typeID string) []string {
	var out []string
	for i := range s.Items {
		if s.Items[i].TypeID == typeID {
			out = append(out, s.Items[i].ID)
		}
	}
	return out
}
