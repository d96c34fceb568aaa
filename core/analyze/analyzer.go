// Package analyze inspects a committed allocation and emits the
// non-blocking diagnostics: tasks without a resolved location and residual
// idle gaps in the primary stage.
package analyze

import (
	"fmt"
	"sort"

	"github.com/platotv/plato/core/calendar"
	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/model"
)

// Analyzer runs the post-allocation checks of one plan.
type Analyzer struct {
	snap         *model.Snapshot
	mealTemplate string
}

// New creates an analyzer for the snapshot. mealTemplate names the meal
// task template, exempt from missing-space detection together with the
// transport templates.
func New(snap *model.Snapshot, mealTemplate string) *Analyzer {
	return &Analyzer{snap: snap, mealTemplate: mealTemplate}
}

// Run inspects the final task list and returns warnings only; nothing here
// blocks a commit.
func (a *Analyzer) Run(tasks []model.DailyTask) []diag.Warning {
	var warnings []diag.Warning
	warnings = append(warnings, a.missingSpace(tasks)...)
	if gaps := a.mainZoneGaps(tasks); gaps != nil {
		warnings = append(warnings, diag.MainZoneGaps(*gaps))
	}
	return warnings
}

// missingSpace flags planned tasks without a resolved zone. Meal and
// transport tasks legitimately float, everything else should land somewhere
// physical.
func (a *Analyzer) missingSpace(tasks []model.DailyTask) []diag.Warning {
	exempt := map[string]bool{}
	if a.mealTemplate != "" {
		exempt[a.mealTemplate] = true
	}
	exempt[a.snap.Transport.ArrivalTaskTemplateName] = true
	exempt[a.snap.Transport.DepartureTaskTemplateName] = true

	var out []diag.Warning
	for i := range tasks {
		t := &tasks[i]
		if !t.Planned() || t.ZoneID != "" || t.Status == model.StatusCancelled {
			continue
		}
		tpl := a.snap.Template(t.TemplateID)
		name := t.TemplateID
		if tpl != nil {
			name = tpl.Name
		}
		if exempt[name] {
			continue
		}
		out = append(out, diag.MissingSpace(name, t.ID))
	}
	return out
}

// mainZoneGaps walks the primary zone's tasks chronologically and reports
// every idle sub-interval strictly between two tasks. Leading and trailing
// idle time at the work-window edges is not a gap, and the meal window is
// expected downtime.
func (a *Analyzer) mainZoneGaps(tasks []model.DailyTask) *diag.GapDetails {
	zoneID := a.snap.Plan.MainZoneID
	if zoneID == "" {
		return nil
	}
	var inZone []model.DailyTask
	for i := range tasks {
		t := tasks[i]
		if t.ZoneID == zoneID && t.Planned() && t.Status != model.StatusCancelled {
			inZone = append(inZone, t)
		}
	}
	if len(inZone) < 2 {
		return nil
	}
	sort.Slice(inZone, func(i, j int) bool {
		if !inZone[i].PlannedStart.Equal(*inZone[j].PlannedStart) {
			return inZone[i].PlannedStart.Before(*inZone[j].PlannedStart)
		}
		return inZone[i].ID < inZone[j].ID
	})

	details := &diag.GapDetails{}
	cursor := *inZone[0].PlannedEnd
	for i := 1; i < len(inZone); i++ {
		next := inZone[i]
		if next.PlannedStart.After(cursor) {
			idle := calendar.NewSet(model.Window{Start: cursor, End: *next.PlannedStart}).
				Subtract(a.snap.Plan.MealWindow())
			for _, g := range idle {
				details.Gaps = append(details.Gaps, g)
				details.Reasons = append(details.Reasons, diag.GapReason{
					// The task right after the gap is the one whose
					// placement, if moved, would close it.
					BlockedMainZoneTaskID: next.ID,
					HumanMessage: fmt.Sprintf("main zone idle %s-%s before task %s",
						g.Start.Format("15:04"), g.End.Format("15:04"), a.templateName(next.TemplateID)),
				})
			}
		}
		if next.PlannedEnd.After(cursor) {
			cursor = *next.PlannedEnd
		}
	}
	if len(details.Gaps) == 0 {
		return nil
	}
	return details
}

func (a *Analyzer) templateName(id string) string {
	if tpl := a.snap.Template(id); tpl != nil {
		return tpl.Name
	}
	return id
}
