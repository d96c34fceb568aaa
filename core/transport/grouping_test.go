package transport

import (
	"testing"
	"time"

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

func settings(weight, target, capacity int) model.TransportSettings {
	s := model.TransportSettings{
		ArrivalGroupingTarget:          target,
		DepartureGroupingTarget:        target,
		VanCapacity:                    capacity,
		WeightArrivalDepartureGrouping: weight,
	}
	s.SetDefaults()
	return s
}

func TestToleranceScalesWithWeight(t *testing.T) {
	if got := Tolerance(settings(0, 4, 8)); got != 0 {
		t.Fatalf("weight 0 should disable shifting, got %v", got)
	}
	if got := Tolerance(settings(4, 4, 8)); got != time.Hour {
		t.Fatalf("weight 4 should allow one hour, got %v", got)
	}
}

func TestPlanGroupsWithinTolerance(t *testing.T) {
	rides := []Ride{
		{TaskID: "r1", ContestantID: "c1", Start: at(t, "09:00")},
		{TaskID: "r2", ContestantID: "c2", Start: at(t, "09:20")},
		{TaskID: "r3", ContestantID: "c3", Start: at(t, "11:00")},
	}
	groups := Plan(Arrivals, rides, settings(2, 4, 8))
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %v", groups)
	}
	if len(groups[0].TaskIDs) != 2 || !groups[0].Anchor.Equal(at(t, "09:00")) {
		t.Fatalf("first group should hold r1 and r2 at 09:00: %+v", groups[0])
	}
	if len(groups[1].TaskIDs) != 1 {
		t.Fatalf("r3 is out of tolerance and rides alone: %+v", groups[1])
	}
}

func TestPlanClosesGroupAtTarget(t *testing.T) {
	rides := []Ride{
		{TaskID: "r1", Start: at(t, "09:00")},
		{TaskID: "r2", Start: at(t, "09:01")},
		{TaskID: "r3", Start: at(t, "09:02")},
	}
	groups := Plan(Arrivals, rides, settings(10, 2, 8))
	if len(groups) != 2 {
		t.Fatalf("target 2 should split 3 rides into 2 vans, got %v", groups)
	}
}

func TestPreferencesOfferAnchors(t *testing.T) {
	groups := []Group{{Kind: Arrivals, Anchor: at(t, "09:00"), TaskIDs: []string{"r1", "r2"}}}
	prefs := Preferences(groups)
	if len(prefs) != 2 {
		t.Fatalf("expected 2 preferences, got %v", prefs)
	}
	for id, anchor := range prefs {
		if !anchor.Equal(at(t, "09:00")) {
			t.Fatalf("%s should prefer the anchor, got %v", id, anchor)
		}
	}
}

func TestShortfallWarnings(t *testing.T) {
	rides := []Ride{
		{TaskID: "r1", Start: at(t, "09:00")},
		{TaskID: "r2", Start: at(t, "09:30")},
	}
	groups := []Group{{Kind: Arrivals, Anchor: at(t, "09:00"), TaskIDs: []string{"r1", "r2"}}}
	warnings := ShortfallWarnings(Arrivals, groups, rides, settings(2, 4, 8))
	if len(warnings) != 1 {
		t.Fatalf("a group below target must warn, got %v", warnings)
	}
	full := []Group{{Kind: Arrivals, Anchor: at(t, "09:00"), TaskIDs: []string{"r1", "r2", "r3", "r4"}}}
	if got := ShortfallWarnings(Arrivals, full, rides, settings(2, 4, 8)); len(got) != 0 {
		t.Fatalf("a full group must not warn, got %v", got)
	}
}
