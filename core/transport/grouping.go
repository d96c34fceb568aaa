// Package transport clusters arrival and departure tasks into van groups.
// Its output is a set of preferred start times offered back to the slot
// allocator; grouping shortfalls degrade to warnings, never to
// infeasibility.
package transport

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/model"
)

// Ride is one arrival or departure task with its currently planned start.
type Ride struct {
	TaskID       string
	ContestantID string
	Start        time.Time
}

// Kind distinguishes the two ride directions.
type Kind string

const (
	Arrivals   Kind = "arrivals"
	Departures Kind = "departures"
)

// toleranceStep converts one weight point into deviation headroom.
const toleranceStep = 15 * time.Minute

// Tolerance maps the 0-10 grouping weight to the maximum deviation from a
// task's otherwise-preferred start the allocator may accept.
func Tolerance(settings model.TransportSettings) time.Duration {
	w := settings.WeightArrivalDepartureGrouping
	if w < 0 {
		w = 0
	}
	if w > 10 {
		w = 10
	}
	return time.Duration(w) * toleranceStep
}

// Group is one van load.
type Group struct {
	Kind    Kind
	Anchor  time.Time
	TaskIDs []string
}

// Plan greedily packs rides into groups bounded by the van capacity. Rides
// whose starts lie within the tolerance of the group anchor share a van; a
// group also closes when it reaches the grouping target so that two targets
// beat one oversized load.
func Plan(kind Kind, rides []Ride, settings model.TransportSettings) []Group {
	if len(rides) == 0 {
		return nil
	}
	capacity := settings.VanCapacity
	if capacity <= 0 {
		capacity = 1
	}
	target := settings.ArrivalGroupingTarget
	if kind == Departures {
		target = settings.DepartureGroupingTarget
	}
	if target <= 0 || target > capacity {
		target = capacity
	}
	tol := Tolerance(settings)

	sorted := append([]Ride(nil), rides...)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Start.Equal(sorted[j].Start) {
			return sorted[i].Start.Before(sorted[j].Start)
		}
		return sorted[i].TaskID < sorted[j].TaskID
	})

	var groups []Group
	var cur *Group
	for _, r := range sorted {
		if cur == nil || len(cur.TaskIDs) >= target || r.Start.Sub(cur.Anchor) > tol {
			groups = append(groups, Group{Kind: kind, Anchor: r.Start})
			cur = &groups[len(groups)-1]
		}
		cur.TaskIDs = append(cur.TaskIDs, r.TaskID)
	}
	return groups
}

// Preferences flattens groups into per-task preferred starts: every member
// of a group is offered the group anchor.
func Preferences(groups []Group) map[string]time.Time {
	prefs := make(map[string]time.Time)
	for _, g := range groups {
		for _, id := range g.TaskIDs {
			prefs[id] = g.Anchor
		}
	}
	return prefs
}

// ShortfallWarnings reports groups below the target size along with the
// total deviation the grouping asks of its members.
func ShortfallWarnings(kind Kind, groups []Group, rides []Ride, settings model.TransportSettings) []diag.Warning {
	target := settings.ArrivalGroupingTarget
	if kind == Departures {
		target = settings.DepartureGroupingTarget
	}
	if target <= 0 {
		return nil
	}
	startByTask := make(map[string]time.Time, len(rides))
	for _, r := range rides {
		startByTask[r.TaskID] = r.Start
	}
	var warnings []diag.Warning
	for _, g := range groups {
		if len(g.TaskIDs) >= target {
			continue
		}
		devs := make([]float64, 0, len(g.TaskIDs))
		for _, id := range g.TaskIDs {
			devs = append(devs, startByTask[id].Sub(g.Anchor).Abs().Minutes())
		}
		warnings = append(warnings, diag.Generic(fmt.Sprintf(
			"%s group at %s carries %d contestants, target is %d (total shift %.0f min)",
			kind, g.Anchor.Format("15:04"), len(g.TaskIDs), target, floats.Sum(devs))))
	}
	return warnings
}
