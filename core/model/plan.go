package model

import "time"

// PlanStatus describes the lifecycle stage of a shooting day.
type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanPublished PlanStatus = "published"
	PlanArchived  PlanStatus = "archived"
)

// Window is a half-open time interval [Start, End).
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns the window length. Negative lengths collapse to zero.
func (w Window) Duration() time.Duration {
	d := w.End.Sub(w.Start)
	if d < 0 {
		return 0
	}
	return d
}

// Contains reports whether [start, end) fits inside the window.
func (w Window) Contains(start, end time.Time) bool {
	return !start.Before(w.Start) && !end.After(w.End)
}

// Overlaps reports whether two half-open windows intersect.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && o.Start.Before(w.End)
}

// Plan is one shooting day with its work and meal windows.
type Plan struct {
	ID                  string     `json:"id"`
	Date                time.Time  `json:"date"`
	WorkStart           time.Time  `json:"workStart"`
	WorkEnd             time.Time  `json:"workEnd"`
	MealStart           time.Time  `json:"mealStart"`
	MealEnd             time.Time  `json:"mealEnd"`
	MealMaxSimultaneous int        `json:"contestantMealMaxSimultaneous"`
	MealDurationMinutes int        `json:"contestantMealDurationMinutes"`
	CameraCount         int        `json:"cameraCount"`
	Status              PlanStatus `json:"status"`
	// MainZoneID designates the primary stage targeted by gap minimisation.
	MainZoneID string `json:"mainZoneId"`
}

// WorkWindow returns the plan work window.
func (p Plan) WorkWindow() Window { return Window{Start: p.WorkStart, End: p.WorkEnd} }

// MealWindow returns the plan meal window.
func (p Plan) MealWindow() Window { return Window{Start: p.MealStart, End: p.MealEnd} }

// Contestant participates in one plan. The availability override, when set,
// narrows the plan work window; it never widens it.
type Contestant struct {
	ID               string  `json:"id"`
	PlanID           string  `json:"planId"`
	Name             string  `json:"name"`
	Instrument       string  `json:"instrument,omitempty"`
	VocalCoachItemID string  `json:"vocalCoachItemId,omitempty"`
	Availability     *Window `json:"availability,omitempty"`
	Notes            string  `json:"notes,omitempty"`
}
