package calendar

import (
	"testing"
	"time"

	"github.com/platotv/plato/core/model"
)

func testSnapshot(t *testing.T) *model.Snapshot {
	t.Helper()
	return &model.Snapshot{
		Plan: model.Plan{
			ID:                  "plan-1",
			WorkStart:           at(t, "09:00"),
			WorkEnd:             at(t, "20:00"),
			MealStart:           at(t, "13:00"),
			MealEnd:             at(t, "15:00"),
			MealMaxSimultaneous: 2,
			MealDurationMinutes: 30,
			CameraCount:         4,
		},
		Contestants: []model.Contestant{
			{ID: "c1"},
			{ID: "c2", Availability: &model.Window{Start: mustAt(t, "11:00"), End: mustAt(t, "18:00")}},
		},
		Zones: []model.Zone{{
			ID: "z1",
			Spaces: []model.Space{
				{ID: "s1", ZoneID: "z1"},
				{ID: "s1a", ZoneID: "z1", ParentID: "s1"},
				{ID: "s2", ZoneID: "z1"},
			},
		}},
		Items: []model.ResourceItem{
			{ID: "bundle", TypeID: "kit", Available: true, Components: []model.Component{{ItemID: "mic", Quantity: 1}}},
			{ID: "mic", TypeID: "microphone", Available: true},
		},
	}
}

func mustAt(t *testing.T, hhmm string) time.Time {
	t.Helper()
	return at(t, hhmm)
}

func TestFreeSubtractsMealForRegularTasks(t *testing.T) {
	c := New(testSnapshot(t))
	free := c.Free(ContestantKey("c1"), false)
	if len(free) != 2 {
		t.Fatalf("expected 2 intervals around the meal, got %d", len(free))
	}
	if !free[0].End.Equal(at(t, "13:00")) || !free[1].Start.Equal(at(t, "15:00")) {
		t.Fatalf("meal window not subtracted: %v", free)
	}
	mealFree := c.Free(ContestantKey("c1"), true)
	if len(mealFree) != 1 {
		t.Fatalf("meal task should see the full work window, got %v", mealFree)
	}
}

func TestFreeIntersectsContestantOverride(t *testing.T) {
	c := New(testSnapshot(t))
	free := c.Free(ContestantKey("c2"), false)
	if !free[0].Start.Equal(at(t, "11:00")) {
		t.Fatalf("override start not applied: %v", free[0])
	}
	last := free[len(free)-1]
	if !last.End.Equal(at(t, "18:00")) {
		t.Fatalf("override end not applied: %v", last)
	}
}

func TestCommitSpaceBlocksFootprint(t *testing.T) {
	snap := testSnapshot(t)
	c := New(snap)
	task := &model.DailyTask{ID: "t1", SpaceID: "s1a"}
	w := model.Window{Start: at(t, "10:00"), End: at(t, "11:00")}
	c.Commit(task, w)

	for _, key := range []string{SpaceKey("s1a"), SpaceKey("s1"), ZoneKey("z1")} {
		if c.Free(key, false).Covers(at(t, "10:00"), time.Hour) {
			t.Fatalf("%s should be blocked", key)
		}
	}
	// A sibling subtree keeps its own calendar.
	if !c.Free(SpaceKey("s2"), false).Covers(at(t, "10:00"), time.Hour) {
		t.Fatal("sibling space should stay free")
	}
}

func TestCommitWholeZoneBlocksEverySpace(t *testing.T) {
	snap := testSnapshot(t)
	c := New(snap)
	task := &model.DailyTask{ID: "t1", ZoneID: "z1"}
	w := model.Window{Start: at(t, "10:00"), End: at(t, "11:00")}
	c.Commit(task, w)

	for _, key := range []string{ZoneKey("z1"), SpaceKey("s1"), SpaceKey("s1a"), SpaceKey("s2")} {
		if c.Free(key, false).Covers(at(t, "10:00"), time.Hour) {
			t.Fatalf("%s should be blocked by the whole-zone task", key)
		}
	}
}

func TestCommitBundleBlocksComponents(t *testing.T) {
	snap := testSnapshot(t)
	c := New(snap)
	task := &model.DailyTask{ID: "t1", ResourceItemIDs: []string{"bundle"}}
	w := model.Window{Start: at(t, "10:00"), End: at(t, "11:00")}
	c.Commit(task, w)

	if c.Free(ItemKey("mic"), false).Covers(at(t, "10:00"), time.Hour) {
		t.Fatal("component should be blocked through the bundle")
	}
}

func TestLockedTasksBlockAtConstruction(t *testing.T) {
	snap := testSnapshot(t)
	start, end := at(t, "09:00"), at(t, "10:00")
	snap.Tasks = []model.DailyTask{{
		ID: "locked", ContestantID: "c1", Status: model.StatusInProgress,
		PlannedStart: &start, PlannedEnd: &end,
	}}
	c := New(snap)
	if c.Free(ContestantKey("c1"), false).Covers(start, time.Hour) {
		t.Fatal("locked commitment should pre-block the contestant")
	}
}

func TestMealSlotsWaves(t *testing.T) {
	c := New(testSnapshot(t))
	slots, err := c.MealSlots([]string{"c3", "c1", "c2"})
	if err != nil {
		t.Fatalf("meal slots: %v", err)
	}
	// Sorted by id: c1 and c2 share wave 0, c3 eats in wave 1.
	if !slots["c1"].Start.Equal(at(t, "13:00")) || !slots["c2"].Start.Equal(at(t, "13:00")) {
		t.Fatalf("first wave misplaced: %v", slots)
	}
	if !slots["c3"].Start.Equal(at(t, "13:30")) {
		t.Fatalf("second wave misplaced: %v", slots["c3"])
	}
}

func TestMealSlotsOverflow(t *testing.T) {
	snap := testSnapshot(t)
	snap.Plan.MealMaxSimultaneous = 1
	snap.Plan.MealDurationMinutes = 90
	c := New(snap)
	if _, err := c.MealSlots([]string{"c1", "c2"}); err == nil {
		t.Fatal("expected overflow error when the window cannot seat everyone")
	}
}
