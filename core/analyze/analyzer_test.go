package analyze

import (
	"testing"
	"time"

	"github.com/platotv/plato/core/diag"
	"github.com/platotv/plato/core/model"
)

func at(t *testing.T, hhmm string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02 15:04", "2026-05-04 "+hhmm)
	if err != nil {
		t.Fatalf("parse %s: %v", hhmm, err)
	}
	return ts
}

func planned(t *testing.T, id, zoneID, from, to string) model.DailyTask {
	t.Helper()
	start, end := at(t, from), at(t, to)
	return model.DailyTask{
		ID: id, TemplateID: "tpl", ZoneID: zoneID, Status: model.StatusPending,
		PlannedStart: &start, PlannedEnd: &end,
	}
}

func analyzerSnapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	snap := &model.Snapshot{
		Plan: model.Plan{
			ID:         "plan-1",
			WorkStart:  at(t, "09:00"),
			WorkEnd:    at(t, "20:00"),
			MealStart:  at(t, "13:00"),
			MealEnd:    at(t, "14:00"),
			MainZoneID: "main",
		},
		Templates: []model.TaskTemplate{{ID: "tpl", Name: "Perf"}},
	}
	snap.Transport.SetDefaults()
	return snap
}

func TestMainZoneGapBlamesFollowingTask(t *testing.T) {
	snap := analyzerSnapshot(t)
	tasks := []model.DailyTask{
		planned(t, "t1", "main", "09:00", "10:00"),
		planned(t, "t2", "main", "11:00", "12:00"),
	}
	warnings := New(snap, "Comida").Run(tasks)
	var gap *diag.Warning
	for i := range warnings {
		if warnings[i].Code == diag.CodeMainZoneGapsRemain {
			gap = &warnings[i]
		}
	}
	if gap == nil {
		t.Fatalf("expected a gap warning, got %v", warnings)
	}
	if len(gap.Details.Gaps) != 1 {
		t.Fatalf("expected one gap, got %v", gap.Details.Gaps)
	}
	g := gap.Details.Gaps[0]
	if !g.Start.Equal(at(t, "10:00")) || !g.End.Equal(at(t, "11:00")) {
		t.Fatalf("unexpected gap bounds: %v", g)
	}
	if gap.Details.Reasons[0].BlockedMainZoneTaskID != "t2" {
		t.Fatalf("gap should blame the task after it, got %s", gap.Details.Reasons[0].BlockedMainZoneTaskID)
	}
}

func TestMainZoneGapExcludesMealWindow(t *testing.T) {
	snap := analyzerSnapshot(t)
	tasks := []model.DailyTask{
		planned(t, "t1", "main", "12:00", "13:00"),
		planned(t, "t2", "main", "14:00", "15:00"),
	}
	warnings := New(snap, "Comida").Run(tasks)
	for _, w := range warnings {
		if w.Code == diag.CodeMainZoneGapsRemain {
			t.Fatalf("the meal window is expected downtime, got %v", w)
		}
	}
}

func TestMainZoneNoGapWithBackToBackTasks(t *testing.T) {
	snap := analyzerSnapshot(t)
	tasks := []model.DailyTask{
		planned(t, "t1", "main", "09:00", "10:00"),
		planned(t, "t2", "main", "10:00", "11:00"),
	}
	warnings := New(snap, "Comida").Run(tasks)
	for _, w := range warnings {
		if w.Code == diag.CodeMainZoneGapsRemain {
			t.Fatalf("back-to-back tasks leave no gap, got %v", w)
		}
	}
}

func TestEdgeIdleTimeIsNotAGap(t *testing.T) {
	snap := analyzerSnapshot(t)
	// One task late in the day: idle time before it touches the window edge
	// and is no gap. A single task can never produce a gap at all.
	tasks := []model.DailyTask{planned(t, "t1", "main", "15:00", "16:00")}
	warnings := New(snap, "Comida").Run(tasks)
	for _, w := range warnings {
		if w.Code == diag.CodeMainZoneGapsRemain {
			t.Fatalf("edge idle time must not warn, got %v", w)
		}
	}
}

func TestMissingSpaceExemptsMealAndTransport(t *testing.T) {
	snap := analyzerSnapshot(t)
	snap.Templates = []model.TaskTemplate{
		{ID: "tpl", Name: "Perf"},
		{ID: "tpl-meal", Name: "Comida"},
		{ID: "tpl-arrival", Name: "Llegada"},
	}
	start, end := at(t, "09:00"), at(t, "10:00")
	mk := func(id, tplID string) model.DailyTask {
		return model.DailyTask{ID: id, TemplateID: tplID, Status: model.StatusPending,
			PlannedStart: &start, PlannedEnd: &end}
	}
	tasks := []model.DailyTask{mk("floater", "tpl"), mk("meal", "tpl-meal"), mk("arrival", "tpl-arrival")}

	warnings := New(snap, "Comida").Run(tasks)
	var missing []diag.Warning
	for _, w := range warnings {
		if w.Code == diag.CodeMissingSpace {
			missing = append(missing, w)
		}
	}
	if len(missing) != 1 || missing[0].TaskID != "floater" {
		t.Fatalf("only the regular floating task should warn, got %v", missing)
	}
}

// TestGapScannerAgainstReferenceScan cross-checks the analyzer with a naive
// minute-by-minute busy scan of the main zone.
func TestGapScannerAgainstReferenceScan(t *testing.T) {
	snap := analyzerSnapshot(t)
	tasks := []model.DailyTask{
		planned(t, "t1", "main", "09:00", "09:45"),
		planned(t, "t2", "main", "10:15", "12:30"),
		planned(t, "t3", "main", "12:30", "13:30"),
		planned(t, "t4", "main", "15:00", "16:00"),
	}
	warnings := New(snap, "Comida").Run(tasks)
	var details *diag.GapDetails
	for _, w := range warnings {
		if w.Code == diag.CodeMainZoneGapsRemain {
			details = w.Details
		}
	}
	if details == nil {
		t.Fatal("expected gaps")
	}

	busy := func(ts time.Time) bool {
		for _, task := range tasks {
			if !ts.Before(*task.PlannedStart) && ts.Before(*task.PlannedEnd) {
				return true
			}
		}
		meal := snap.Plan.MealWindow()
		return !ts.Before(meal.Start) && ts.Before(meal.End)
	}
	first, last := at(t, "09:45"), at(t, "15:00")
	var refMinutes int
	for ts := first; ts.Before(last); ts = ts.Add(time.Minute) {
		if !busy(ts) {
			refMinutes++
		}
	}
	var gotMinutes int
	for _, g := range details.Gaps {
		gotMinutes += int(g.Duration().Minutes())
	}
	if gotMinutes != refMinutes {
		t.Fatalf("analyzer found %d idle minutes, reference scan found %d", gotMinutes, refMinutes)
	}
}
