// Package requirement interprets the resource-requirement expression of a
// task template into concrete, conflict-free item bindings.
package requirement

import (
	"fmt"
	"sort"

	"github.com/platotv/plato/core/calendar"
	"github.com/platotv/plato/core/model"
)

// Resolver answers binding queries against the snapshot inventory and the
// calendar's committed windows.
type Resolver struct {
	snap *model.Snapshot
	cal  *calendar.Calendar
}

// NewResolver creates a resolver over the given snapshot and calendar.
func NewResolver(snap *model.Snapshot, cal *calendar.Calendar) *Resolver {
	return &Resolver{snap: snap, cal: cal}
}

// Resolve picks concrete items for every clause of the expression over the
// window. On success it returns the chosen item ids in deterministic order.
// Otherwise it returns a human-readable description of the first clause that
// cannot be satisfied; the caller turns that into a structured reason.
// Items listed in anchored are preferred when a byType clause picks units, so
// a task occupying a space consumes the gear fixed to it before pulling from
// the shared inventory.
func (r *Resolver) Resolve(req *model.Requirement, w model.Window, mealTask bool, anchored []string) ([]string, string, bool) {
	if req.Empty() {
		return nil, "", true
	}
	anchoredSet := map[string]bool{}
	for _, id := range anchored {
		anchoredSet[id] = true
	}
	var chosen []string
	reserved := map[string]bool{}

	take := func(itemID string) {
		chosen = append(chosen, itemID)
		for _, id := range r.snap.ComponentClosure(itemID) {
			reserved[id] = true
		}
	}

	// Specific units first: they have no substitute.
	for _, line := range req.ByItem {
		if !r.usable(line.ResourceItemID, w, mealTask, reserved) {
			return nil, fmt.Sprintf("item %s is not available in the requested window", line.ResourceItemID), false
		}
		take(line.ResourceItemID)
	}

	for _, line := range req.ByType {
		candidates := r.freeOfType(line.ResourceTypeID, w, mealTask, reserved, anchoredSet)
		if len(candidates) < line.Quantity {
			return nil, fmt.Sprintf("type %s: need %d, only %d free", line.ResourceTypeID, line.Quantity, len(candidates)), false
		}
		for _, id := range candidates[:line.Quantity] {
			take(id)
		}
	}

	if req.AnyOf != nil {
		var free []string
		for _, id := range sortedCopy(req.AnyOf.ResourceItemIDs) {
			if r.usable(id, w, mealTask, reserved) {
				free = append(free, id)
			}
		}
		if len(free) < req.AnyOf.Quantity {
			return nil, fmt.Sprintf("anyOf: need %d of %d candidates, only %d free", req.AnyOf.Quantity, len(req.AnyOf.ResourceItemIDs), len(free)), false
		}
		for _, id := range free[:req.AnyOf.Quantity] {
			take(id)
		}
	}
	return chosen, "", true
}

// usable checks availability and calendar freedom for the item and its whole
// component closure. A bundle with a busy component is busy.
func (r *Resolver) usable(itemID string, w model.Window, mealTask bool, reserved map[string]bool) bool {
	closure := r.snap.ComponentClosure(itemID)
	for _, id := range closure {
		if reserved[id] {
			return false
		}
		if !r.snap.ItemAvailable(id) {
			return false
		}
		if !r.cal.Free(calendar.ItemKey(id), mealTask).Covers(w.Start, w.Duration()) {
			return false
		}
	}
	return true
}

func (r *Resolver) freeOfType(typeID string, w model.Window, mealTask bool, reserved, anchored map[string]bool) []string {
	var out []string
	for _, id := range sortedCopy(r.snap.ItemsOfType(typeID)) {
		if r.usable(id, w, mealTask, reserved) {
			out = append(out, id)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return anchored[out[i]] && !anchored[out[j]] })
	return out
}

// AnchoredItems returns the resource items physically present at the task's
// location: the bound space's effective set, or the zone's when the task
// occupies the whole zone. The plan override layer wins inside the zone model.
func AnchoredItems(zone *model.Zone, spaceID string) []string {
	if zone == nil {
		return nil
	}
	if sp := zone.Space(spaceID); sp != nil {
		return sortedCopy(sp.EffectiveItemIDs())
	}
	return sortedCopy(zone.EffectiveItemIDs())
}

// ForLocation widens a template requirement with the generic per-type
// quantities configured on the target space, falling back to the zone. The
// plan override layer wins inside the zone model itself.
func ForLocation(req *model.Requirement, zone *model.Zone, spaceID string) *model.Requirement {
	var extra []model.TypeRequirement
	if zone != nil {
		if sp := zone.Space(spaceID); sp != nil && len(sp.TypeQuantities) > 0 {
			extra = sp.TypeQuantities
		} else if len(zone.TypeQuantities) > 0 {
			extra = zone.TypeQuantities
		}
	}
	if len(extra) == 0 {
		return req
	}
	out := &model.Requirement{}
	if req != nil {
		out.ByType = append(out.ByType, req.ByType...)
		out.ByItem = append(out.ByItem, req.ByItem...)
		out.AnyOf = req.AnyOf
	}
	out.ByType = append(out.ByType, extra...)
	return out
}

func sortedCopy(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
