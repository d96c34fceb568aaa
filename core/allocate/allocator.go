// Package allocate assigns a start time, location and concrete bindings to
// every schedulable task of a plan. It is the constraint-solving heart of
// plan generation.
package allocate

import (
	"sort"
	"time"

	"github.com/platotv/plato/core/calendar"
	"github.com/platotv/plato/core/depgraph"
	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/logger"
	"github.com/platotv/plato/core/model"
	"github.com/platotv/plato/core/requirement"
)

// Placement is the scheduling outcome for one task.
type Placement struct {
	TaskID          string
	Start, End      time.Time
	ZoneID          string
	SpaceID         string
	ResourceItemIDs []string
	StaffIDs        []string
	TeamID          string
}

// Result collects the placements of one pass plus the tasks that could not
// be placed, each with a structured reason.
type Result struct {
	Placements map[string]Placement
	Unplaced   []diag.Reason
}

// Allocator performs one placement pass over a snapshot. It is single-use:
// the calendar accumulates commitments as tasks are placed.
type Allocator struct {
	snap  *model.Snapshot
	cal   *calendar.Calendar
	res   *requirement.Resolver
	graph *depgraph.Graph
	log   logger.Logger

	mealTemplate string
	mealSlots    map[string]model.Window

	prefs     map[string]time.Time
	tolerance time.Duration
	// commitEnds are the moments capacity frees up; candidate starts are
	// drawn from them.
	commitEnds []time.Time

	discarded  map[string]bool
	placedCams map[string]placedCam
}

type placedCam struct {
	window model.Window
	cams   int
}

// New builds an allocator. mealTemplate names the designated meal task
// template; pass an empty string when the plan has none.
func New(snap *model.Snapshot, cal *calendar.Calendar, graph *depgraph.Graph, log logger.Logger, mealTemplate string) *Allocator {
	a := &Allocator{
		snap:         snap,
		cal:          cal,
		res:          requirement.NewResolver(snap, cal),
		graph:        graph,
		log:          log,
		mealTemplate: mealTemplate,
		discarded:    make(map[string]bool),
		placedCams:   make(map[string]placedCam),
	}
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if t.Locked() && t.Planned() {
			a.commitEnds = append(a.commitEnds, t.PlannedEnd.UTC())
		}
	}
	return a
}

// SetPreferences installs per-task preferred start times, typically produced
// by the transport grouping pass. A preference is honoured when it deviates
// from the task's earliest feasible start by at most tolerance; otherwise
// the earliest start wins.
func (a *Allocator) SetPreferences(prefs map[string]time.Time, tolerance time.Duration) {
	a.prefs = prefs
	a.tolerance = tolerance
}

// WorkingSet selects the tasks a mode may (re)place. Locked tasks are never
// in any working set; cancelled and interrupted tasks are out of scope.
func WorkingSet(snap *model.Snapshot, mode model.Mode) []*model.DailyTask {
	var out []*model.DailyTask
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if !t.Status.Schedulable() {
			continue
		}
		switch mode {
		case model.ModeFull:
			out = append(out, t)
		case model.ModeReplanPending:
			// Manual blocks keep their placement; everything else is
			// re-placed.
			if !(t.Manual && t.Planned()) {
				out = append(out, t)
			}
		case model.ModeGeneratePlanning:
			if !t.Manual {
				out = append(out, t)
			}
		case model.ModeOnlyUnplanned:
			if !t.Planned() {
				out = append(out, t)
			}
		case model.ModePlanPending:
			if !t.Manual && !t.Planned() {
				out = append(out, t)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Run places the working set of the mode. Tasks outside the working set that
// already carry a planned interval stay fixed and constrain the rest.
func (a *Allocator) Run(mode model.Mode) *Result {
	working := WorkingSet(a.snap, mode)
	inSet := map[string]bool{}
	for _, t := range working {
		inSet[t.ID] = true
	}
	a.discarded = inSet

	// Fixed non-locked placements constrain the pass exactly like locked
	// tasks. Locked commitments were subtracted when the calendar was built.
	for i := range a.snap.Tasks {
		t := &a.snap.Tasks[i]
		if t.Locked() || inSet[t.ID] || !t.Planned() || t.Status == model.StatusCancelled {
			continue
		}
		a.cal.Commit(t, t.PlannedWindow())
		a.commitEnds = append(a.commitEnds, t.PlannedEnd.UTC())
	}

	res := &Result{Placements: make(map[string]Placement, len(working))}

	if a.mealTemplate != "" {
		if err := a.carveMealSlots(working); err != nil {
			a.log.Warnf("meal slots: %v", err)
		}
	}

	for _, layer := range a.graph.Layers(working) {
		a.orderLayer(layer, res)
		for _, t := range layer {
			p, reason := a.place(t, res)
			if reason != nil {
				res.Unplaced = append(res.Unplaced, *reason)
				continue
			}
			res.Placements[t.ID] = p
			bound := *t
			bound.ZoneID = p.ZoneID
			bound.SpaceID = p.SpaceID
			bound.ResourceItemIDs = p.ResourceItemIDs
			bound.StaffIDs = p.StaffIDs
			bound.TeamID = p.TeamID
			a.cal.Commit(&bound, model.Window{Start: p.Start, End: p.End})
			a.commitEnds = append(a.commitEnds, p.End)
			if tpl := a.snap.Template(t.TemplateID); tpl != nil {
				if cams := t.Cameras(*tpl); cams > 0 {
					a.placedCams[t.ID] = placedCam{window: model.Window{Start: p.Start, End: p.End}, cams: cams}
				}
			}
		}
	}
	return res
}

// orderLayer sorts one topological layer by the deterministic placement
// priority: location specificity, then earliest feasible start, then
// template id, then task id.
func (a *Allocator) orderLayer(layer []*model.DailyTask, res *Result) {
	type keyed struct {
		t           *model.DailyTask
		specificity int
		earliest    time.Time
	}
	keys := make([]keyed, len(layer))
	for i, t := range layer {
		sp := 0
		if tpl := a.snap.Template(t.TemplateID); tpl != nil {
			sp = tpl.Specificity()
		}
		keys[i] = keyed{t: t, specificity: sp, earliest: a.lowerBound(t, res)}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		if keys[i].specificity != keys[j].specificity {
			return keys[i].specificity > keys[j].specificity
		}
		if !keys[i].earliest.Equal(keys[j].earliest) {
			return keys[i].earliest.Before(keys[j].earliest)
		}
		if keys[i].t.TemplateID != keys[j].t.TemplateID {
			return keys[i].t.TemplateID < keys[j].t.TemplateID
		}
		return keys[i].t.ID < keys[j].t.ID
	})
	for i := range keys {
		layer[i] = keys[i].t
	}
}

// lowerBound is the earliest moment the task may start: after the work
// window opens, after the contestant's override opens, and after every
// prerequisite ends.
func (a *Allocator) lowerBound(t *model.DailyTask, res *Result) time.Time {
	lb := a.snap.Plan.WorkStart
	if t.ContestantID != "" {
		if ct := a.snap.Contestant(t.ContestantID); ct != nil && ct.Availability != nil && ct.Availability.Start.After(lb) {
			lb = ct.Availability.Start
		}
	}
	for _, depID := range a.graph.Prereqs(t.ID) {
		if p, ok := res.Placements[depID]; ok {
			if p.End.After(lb) {
				lb = p.End
			}
			continue
		}
		if dep := a.snap.Task(depID); dep != nil && dep.Planned() && dep.PlannedEnd.After(lb) {
			lb = *dep.PlannedEnd
		}
	}
	return lb
}

func (a *Allocator) carveMealSlots(working []*model.DailyTask) error {
	var ids []string
	for _, t := range working {
		if t.ContestantID == "" {
			continue
		}
		if tpl := a.snap.Template(t.TemplateID); tpl != nil && tpl.Name == a.mealTemplate {
			ids = append(ids, t.ContestantID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	slots, err := a.cal.MealSlots(ids)
	if err != nil {
		return err
	}
	a.mealSlots = slots
	return nil
}
