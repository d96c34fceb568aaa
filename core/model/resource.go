package model

// ResourceType groups interchangeable units, e.g. "camera".
type ResourceType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Component is one constituent of a bundle item with its consumed quantity.
type Component struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

// ResourceItem is one concrete unit of a type. Bundles list the items they
// consume; reserving a bundle reserves its components for the same window.
type ResourceItem struct {
	ID         string      `json:"id"`
	TypeID     string      `json:"typeId"`
	Name       string      `json:"name"`
	Available  bool        `json:"available"`
	Components []Component `json:"components,omitempty"`
}

// ItemOrigin records how an item entered a plan's snapshot.
type ItemOrigin string

const (
	OriginDefault ItemOrigin = "default"
	OriginAdhoc   ItemOrigin = "adhoc"
)

// PlanResourceItem is the per-plan snapshot entry for a resource item. The
// availability override, when set, wins over the item's own flag; the two are
// never merged.
type PlanResourceItem struct {
	PlanID            string     `json:"planId"`
	ItemID            string     `json:"itemId"`
	Origin            ItemOrigin `json:"origin"`
	AvailableOverride *bool      `json:"availableOverride,omitempty"`
}
