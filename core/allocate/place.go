package allocate

import (
	"fmt"
	"sort"
	"time"

	"github.com/platotv/plato/core/calendar"
	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/model"
	"github.com/platotv/plato/core/requirement"
)

// attempt carries the state of one placement search so the failure reason
// names the constraint that actually exhausted the search.
type attempt struct {
	resourceMsg string
	staffFailed bool
	teamFailed  bool
	cameraFail  bool
}

// place searches the earliest feasible window for one task. A nil reason
// means the returned placement is valid.
func (a *Allocator) place(t *model.DailyTask, res *Result) (Placement, *diag.Reason) {
	tpl := a.snap.Template(t.TemplateID)
	if tpl == nil {
		r := diag.Unplaceable(diag.CodeWindowExhausted, t.ID, t.TemplateID, "task references an unknown template")
		return Placement{}, &r
	}
	dur := t.Duration(*tpl)
	if dur <= 0 {
		r := diag.Unplaceable(diag.CodeWindowExhausted, t.ID, tpl.ID, "task has a non-positive duration")
		return Placement{}, &r
	}

	mealTask := a.mealTemplate != "" && tpl.Name == a.mealTemplate
	zone, spaceID := a.resolveLocation(t, tpl)

	cams := t.Cameras(*tpl)
	if cams > a.snap.Plan.CameraCount {
		r := diag.Unplaceable(diag.CodeResourceUnavailable, t.ID, tpl.ID,
			fmt.Sprintf("task needs %d cameras, plan budget is %d", cams, a.snap.Plan.CameraCount))
		return Placement{}, &r
	}

	var staff []model.StaffAssignment
	if zone != nil {
		staff = model.ResolveStaff(zone, spaceID, a.snap.Staff)
		if len(staff) == 0 {
			r := diag.Unplaceable(diag.CodeStaffUnavailable, t.ID, tpl.ID,
				fmt.Sprintf("zone %s has no staff assigned for the target space", zone.ID))
			return Placement{}, &r
		}
	}

	// Meal tasks go into their carved slot; capacity was budgeted when the
	// slots were laid out.
	if mealTask && t.ContestantID != "" {
		if slot, ok := a.mealSlots[t.ContestantID]; ok {
			return a.placeMeal(t, tpl, zone, spaceID, staff, slot)
		}
	}

	free := a.cal.BaseFree(mealTask)
	if mealTask {
		// A meal task without a carved slot still belongs inside the meal
		// window; the fallback search must not wander into the work day.
		free = free.Intersect(calendar.NewSet(a.cal.MealWindow()))
	}
	if t.ContestantID != "" {
		free = free.Intersect(a.cal.Free(calendar.ContestantKey(t.ContestantID), mealTask))
	}
	locationBound := false
	if spaceID != "" {
		locationBound = true
		free = free.Intersect(a.cal.Free(calendar.SpaceKey(spaceID), mealTask))
	} else if zone != nil {
		locationBound = true
		free = free.Intersect(a.cal.Free(calendar.ZoneKey(zone.ID), mealTask))
	}

	lb := a.lowerBound(t, res)
	req := requirement.ForLocation(tpl.Requirement, zone, spaceID)
	anchored := requirement.AnchoredItems(zone, spaceID)

	att := &attempt{}
	earliest, ok := a.scan(free, lb, dur, cams, req, tpl, mealTask, anchored, att)
	if ok {
		start := earliest
		if pref, has := a.prefs[t.ID]; has && !pref.Equal(earliest) {
			// A grouping preference can shift a task, never hoist it above
			// the dependency bound.
			if !pref.Before(lb) && within(pref, earliest, a.tolerance) && a.feasibleAt(free, pref, dur, cams, req, tpl, mealTask, anchored, &attempt{}) {
				start = pref
			}
		}
		return a.bind(t, tpl, zone, spaceID, staff, start, dur, req, anchored, mealTask)
	}

	r := a.exhaustedReason(t, tpl, free, locationBound, att)
	return Placement{}, &r
}

// scan walks the candidate start times of the free set in ascending order
// and returns the first feasible one. Capacity only frees up when a
// commitment ends, so candidate starts are interval starts plus commit ends.
func (a *Allocator) scan(free calendar.Set, lb time.Time, dur time.Duration, cams int, req *model.Requirement, tpl *model.TaskTemplate, mealTask bool, anchored []string, att *attempt) (time.Time, bool) {
	ends := append([]time.Time(nil), a.commitEnds...)
	sort.Slice(ends, func(i, j int) bool { return ends[i].Before(ends[j]) })

	for _, iv := range free {
		start := iv.Start
		if lb.After(start) {
			start = lb
		}
		candidates := []time.Time{start}
		for _, e := range ends {
			if e.After(start) && !e.Add(dur).After(iv.End) {
				candidates = append(candidates, e)
			}
		}
		for _, s := range candidates {
			if s.Add(dur).After(iv.End) {
				continue
			}
			if a.feasibleAt(free, s, dur, cams, req, tpl, mealTask, anchored, att) {
				return s, true
			}
		}
	}
	return time.Time{}, false
}

// feasibleAt checks every non-time constraint for a concrete start.
func (a *Allocator) feasibleAt(free calendar.Set, start time.Time, dur time.Duration, cams int, req *model.Requirement, tpl *model.TaskTemplate, mealTask bool, anchored []string, att *attempt) bool {
	if !free.Covers(start, dur) {
		return false
	}
	w := model.Window{Start: start, End: start.Add(dur)}

	if cams > 0 && !a.cameraBudgetOK(w, cams) {
		att.cameraFail = true
		return false
	}
	if !req.Empty() {
		if _, msg, ok := a.res.Resolve(req, w, mealTask, anchored); !ok {
			att.resourceMsg = msg
			return false
		}
	}
	if tpl.TeamMode == model.TeamAny || tpl.TeamMode == model.TeamSpecific {
		if a.pickTeam(tpl, w) == "" {
			att.teamFailed = true
			return false
		}
	}
	if zone, spaceID := a.locationForStaff(tpl); zone != nil {
		staff := model.ResolveStaff(zone, spaceID, a.snap.Staff)
		if len(a.freeStaff(staff, w)) == 0 {
			att.staffFailed = true
			return false
		}
	}
	return true
}

// bind re-resolves the concrete bindings at the chosen start and assembles
// the placement.
func (a *Allocator) bind(t *model.DailyTask, tpl *model.TaskTemplate, zone *model.Zone, spaceID string, staff []model.StaffAssignment, start time.Time, dur time.Duration, req *model.Requirement, anchored []string, mealTask bool) (Placement, *diag.Reason) {
	w := model.Window{Start: start, End: start.Add(dur)}
	items, msg, ok := a.res.Resolve(req, w, mealTask, anchored)
	if !ok {
		r := diag.Unplaceable(diag.CodeResourceUnavailable, t.ID, tpl.ID, msg)
		return Placement{}, &r
	}
	teamID := ""
	if tpl.TeamMode == model.TeamAny || tpl.TeamMode == model.TeamSpecific {
		teamID = a.pickTeam(tpl, w)
		if teamID == "" {
			r := diag.Unplaceable(diag.CodeStaffUnavailable, t.ID, tpl.ID, "no itinerant team free in the chosen window")
			return Placement{}, &r
		}
		// The team's own crew travels with it.
		staff = append(append([]model.StaffAssignment(nil), staff...), model.ResolveTeamStaff(teamID, a.snap.Staff)...)
	}
	p := Placement{
		TaskID:          t.ID,
		Start:           start,
		End:             w.End,
		ResourceItemIDs: items,
		StaffIDs:        a.freeStaff(staff, w),
		TeamID:          teamID,
	}
	if zone != nil {
		p.ZoneID = zone.ID
		p.SpaceID = spaceID
	}
	return p, nil
}

func (a *Allocator) placeMeal(t *model.DailyTask, tpl *model.TaskTemplate, zone *model.Zone, spaceID string, staff []model.StaffAssignment, slot model.Window) (Placement, *diag.Reason) {
	freeCt := a.cal.Free(calendar.ContestantKey(t.ContestantID), true)
	if !freeCt.Covers(slot.Start, slot.Duration()) {
		r := diag.Unplaceable(diag.CodeWindowExhausted, t.ID, tpl.ID,
			fmt.Sprintf("contestant %s cannot attend the carved meal slot", t.ContestantID))
		return Placement{}, &r
	}
	req := requirement.ForLocation(tpl.Requirement, zone, spaceID)
	anchored := requirement.AnchoredItems(zone, spaceID)
	return a.bind(t, tpl, zone, spaceID, staff, slot.Start, slot.Duration(), req, anchored, true)
}

// resolveLocation prefers an explicit task binding over the template one. A
// binding to a deleted zone or space resolves to no location; the frozen
// LocationLabel on the task keeps it readable downstream.
func (a *Allocator) resolveLocation(t *model.DailyTask, tpl *model.TaskTemplate) (*model.Zone, string) {
	if t.SpaceID != "" {
		if z := a.snap.ZoneOfSpace(t.SpaceID); z != nil {
			return z, t.SpaceID
		}
	}
	if t.ZoneID != "" {
		if z := a.snap.Zone(t.ZoneID); z != nil {
			return z, ""
		}
	}
	if tpl.SpaceID != "" {
		if z := a.snap.ZoneOfSpace(tpl.SpaceID); z != nil {
			return z, tpl.SpaceID
		}
	}
	if tpl.ZoneID != "" {
		if z := a.snap.Zone(tpl.ZoneID); z != nil {
			return z, ""
		}
	}
	return nil, ""
}

func (a *Allocator) locationForStaff(tpl *model.TaskTemplate) (*model.Zone, string) {
	if tpl.SpaceID != "" {
		return a.snap.ZoneOfSpace(tpl.SpaceID), tpl.SpaceID
	}
	if tpl.ZoneID != "" {
		return a.snap.Zone(tpl.ZoneID), ""
	}
	return nil, ""
}

// cameraBudgetOK verifies the plan-wide camera budget over every moment of
// the window, counting fixed and freshly placed tasks.
func (a *Allocator) cameraBudgetOK(w model.Window, cams int) bool {
	budget := a.snap.Plan.CameraCount
	for i := range a.snap.Tasks {
		other := &a.snap.Tasks[i]
		if !other.Planned() || other.Status == model.StatusCancelled {
			continue
		}
		// A task being re-placed no longer occupies its old window.
		if a.discarded[other.ID] {
			continue
		}
		if other.PlannedWindow().Overlaps(w) {
			if tpl := a.snap.Template(other.TemplateID); tpl != nil {
				cams += other.Cameras(*tpl)
			}
		}
	}
	for _, pc := range a.placedCams {
		if pc.window.Overlaps(w) {
			cams += pc.cams
		}
	}
	return cams <= budget
}

// pickTeam returns the id of the team serving the window, or empty. Mode
// any tries every active team in id order; mode specific hard-requires the
// named team.
func (a *Allocator) pickTeam(tpl *model.TaskTemplate, w model.Window) string {
	if tpl.TeamMode == model.TeamSpecific {
		if a.teamFree(tpl.TeamID, w) {
			return tpl.TeamID
		}
		return ""
	}
	ids := make([]string, 0, len(a.snap.Teams))
	for i := range a.snap.Teams {
		if a.snap.Teams[i].Active {
			ids = append(ids, a.snap.Teams[i].ID)
		}
	}
	sort.Strings(ids)
	for _, id := range ids {
		if a.teamFree(id, w) {
			return id
		}
	}
	return ""
}

func (a *Allocator) teamFree(teamID string, w model.Window) bool {
	if team := a.snap.Team(teamID); team == nil || !team.Active {
		return false
	}
	return a.cal.Free(calendar.TeamKey(teamID), false).Covers(w.Start, w.Duration())
}

// freeStaff keeps the resolved assignments whose person is free over the
// window, deduplicated by person and sorted for reproducible output.
func (a *Allocator) freeStaff(staff []model.StaffAssignment, w model.Window) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range staff {
		if seen[s.PersonID] {
			continue
		}
		if a.cal.Free(calendar.StaffKey(s.PersonID), false).Covers(w.Start, w.Duration()) {
			seen[s.PersonID] = true
			out = append(out, s.PersonID)
		}
	}
	sort.Strings(out)
	return out
}

func (a *Allocator) exhaustedReason(t *model.DailyTask, tpl *model.TaskTemplate, free calendar.Set, locationBound bool, att *attempt) diag.Reason {
	switch {
	case att.resourceMsg != "":
		return diag.Unplaceable(diag.CodeResourceUnavailable, t.ID, tpl.ID, att.resourceMsg)
	case att.teamFailed:
		return diag.Unplaceable(diag.CodeStaffUnavailable, t.ID, tpl.ID, "no itinerant team available")
	case att.staffFailed:
		return diag.Unplaceable(diag.CodeStaffUnavailable, t.ID, tpl.ID, "no staff member free for the target location")
	case att.cameraFail:
		return diag.Unplaceable(diag.CodeResourceUnavailable, t.ID, tpl.ID, "camera budget exhausted in every candidate window")
	case len(free) == 0 && locationBound:
		return diag.Unplaceable(diag.CodeSpaceUnavailable, t.ID, tpl.ID, "target zone/space has no free interval left")
	default:
		return diag.Unplaceable(diag.CodeWindowExhausted, t.ID, tpl.ID, "no interval long enough within the work window")
	}
}

func within(a, b time.Time, tol time.Duration) bool {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return d <= tol
}
