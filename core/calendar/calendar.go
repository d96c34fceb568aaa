// Package calendar turns the plan windows, per-contestant overrides and the
// commitments of locked tasks into free sub-intervals per entity.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/platotv/plato/core/model"
)

// Entity keys name the calendars tracked per plan.
func ContestantKey(id string) string { return "contestant:" + id }
func ItemKey(id string) string       { return "item:" + id }
func TeamKey(id string) string       { return "team:" + id }
func StaffKey(personID string) string { return "staff:" + personID }
func SpaceKey(id string) string      { return "space:" + id }
func ZoneKey(id string) string       { return "zone:" + id }

// Calendar answers free-window queries for every entity of a snapshot.
type Calendar struct {
	snap *model.Snapshot
	work model.Window
	meal model.Window
	busy map[string]Set
}

// New builds the calendar for a snapshot. The commitments of locked tasks
// (in_progress/done) are subtracted up front for every entity they bind.
func New(snap *model.Snapshot) *Calendar {
	c := &Calendar{
		snap: snap,
		work: snap.Plan.WorkWindow(),
		meal: snap.Plan.MealWindow(),
		busy: make(map[string]Set),
	}
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if !t.Locked() || !t.Planned() {
			continue
		}
		c.Commit(t, t.PlannedWindow())
	}
	return c
}

// Commit blocks the task's bound entities for the given window. Reserving a
// bundle item blocks its components transitively.
func (c *Calendar) Commit(t *model.DailyTask, w model.Window) {
	if t.ContestantID != "" {
		c.block(ContestantKey(t.ContestantID), w)
	}
	for _, itemID := range t.ResourceItemIDs {
		for _, id := range c.snap.ComponentClosure(itemID) {
			c.block(ItemKey(id), w)
		}
	}
	if t.TeamID != "" {
		c.block(TeamKey(t.TeamID), w)
	}
	for _, staffID := range t.StaffIDs {
		c.block(StaffKey(staffID), w)
	}
	// A space shares its physical footprint with its ancestors and
	// descendants, and with the zone root. A whole-zone task occupies every
	// space of the zone.
	if t.SpaceID != "" {
		if z := c.snap.ZoneOfSpace(t.SpaceID); z != nil {
			for _, id := range z.AncestorChain(t.SpaceID) {
				c.block(SpaceKey(id), w)
			}
			for _, id := range z.Descendants(t.SpaceID) {
				c.block(SpaceKey(id), w)
			}
			c.block(ZoneKey(z.ID), w)
		}
	} else if t.ZoneID != "" {
		c.block(ZoneKey(t.ZoneID), w)
		if z := c.snap.Zone(t.ZoneID); z != nil {
			for i := range z.Spaces {
				c.block(SpaceKey(z.Spaces[i].ID), w)
			}
		}
	}
}

func (c *Calendar) block(key string, w model.Window) {
	c.busy[key] = NewSet(append(c.busy[key], w)...)
}

// Busy returns the committed windows for an entity key.
func (c *Calendar) Busy(key string) Set { return c.busy[key] }

// Free returns the ordered free sub-intervals of an entity inside the work
// window. The meal window is subtracted unless the query is for the meal
// task itself. Contestant overrides intersect the plan window: the narrower
// of the two always wins.
func (c *Calendar) Free(key string, mealTask bool) Set {
	free := NewSet(c.work)
	if !mealTask {
		free = free.Subtract(c.meal)
	}
	if id, ok := strings.CutPrefix(key, "contestant:"); ok {
		if ct := c.snap.Contestant(id); ct != nil && ct.Availability != nil {
			free = free.Intersect(NewSet(*ct.Availability))
		}
	}
	return free.SubtractAll(c.busy[key])
}

// BaseFree is the plan-level free set shared by entities with no calendar of
// their own: the work window, minus the meal window for non-meal tasks.
func (c *Calendar) BaseFree(mealTask bool) Set {
	free := NewSet(c.work)
	if !mealTask {
		free = free.Subtract(c.meal)
	}
	return free
}

// MealWindow returns the plan's meal window.
func (c *Calendar) MealWindow() model.Window { return c.meal }

// MealSlots carves one meal slot per contestant inside the meal window. At
// most the plan's meal capacity eats concurrently; waves of the meal
// duration are laid back to back until the window runs out.
func (c *Calendar) MealSlots(contestantIDs []string) (map[string]model.Window, error) {
	capacity := c.snap.Plan.MealMaxSimultaneous
	if capacity <= 0 {
		capacity = 1
	}
	dur := time.Duration(c.snap.Plan.MealDurationMinutes) * time.Minute
	if dur <= 0 {
		return nil, fmt.Errorf("meal duration must be positive")
	}
	ids := append([]string(nil), contestantIDs...)
	sort.Strings(ids)

	slots := make(map[string]model.Window, len(ids))
	for i, id := range ids {
		wave := i / capacity
		start := c.meal.Start.Add(time.Duration(wave) * dur)
		end := start.Add(dur)
		if end.After(c.meal.End) {
			return nil, fmt.Errorf("meal window cannot seat %d contestants in waves of %d", len(ids), capacity)
		}
		slots[id] = model.Window{Start: start, End: end}
	}
	return slots, nil
}
