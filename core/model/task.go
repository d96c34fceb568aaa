package model

import "time"

// TaskStatus tracks the execution lifecycle of a daily task.
type TaskStatus string

const (
	StatusPending     TaskStatus = "pending"
	StatusInProgress  TaskStatus = "in_progress"
	StatusDone        TaskStatus = "done"
	StatusInterrupted TaskStatus = "interrupted"
	StatusCancelled   TaskStatus = "cancelled"
)

// Locked reports whether the task's placement is immutable. Once shooting has
// started (in_progress) or finished (done) the scheduler must not touch the
// task's time, location or bindings.
func (s TaskStatus) Locked() bool {
	return s == StatusInProgress || s == StatusDone
}

// Schedulable reports whether the task can still receive a placement.
func (s TaskStatus) Schedulable() bool {
	return s == StatusPending
}

// DailyTask is one scheduled occurrence of a template for a plan.
type DailyTask struct {
	ID           string     `json:"id"`
	PlanID       string     `json:"planId"`
	TemplateID   string     `json:"templateId"`
	ContestantID string     `json:"contestantId,omitempty"`
	Status       TaskStatus `json:"status"`

	PlannedStart *time.Time `json:"plannedStart,omitempty"`
	PlannedEnd   *time.Time `json:"plannedEnd,omitempty"`
	ActualStart  *time.Time `json:"actualStart,omitempty"`
	ActualEnd    *time.Time `json:"actualEnd,omitempty"`

	// DurationOverrideMinutes and CameraOverride replace the template
	// defaults when positive.
	DurationOverrideMinutes int  `json:"durationOverrideMinutes,omitempty"`
	CameraOverride          int  `json:"cameraOverride,omitempty"`
	Manual                  bool `json:"manual,omitempty"`

	ZoneID  string `json:"zoneId,omitempty"`
	SpaceID string `json:"spaceId,omitempty"`
	// LocationLabel survives the deletion of the originating zone or space
	// so executed tasks keep a readable location.
	LocationLabel string `json:"locationLabel,omitempty"`

	ResourceItemIDs []string `json:"resourceItemIds,omitempty"`
	StaffIDs        []string `json:"staffIds,omitempty"`
	TeamID          string   `json:"teamId,omitempty"`
}

// Locked is a convenience accessor over the status.
func (t *DailyTask) Locked() bool { return t.Status.Locked() }

// Planned reports whether the task carries a planned interval.
func (t *DailyTask) Planned() bool { return t.PlannedStart != nil && t.PlannedEnd != nil }

// Duration resolves the effective duration against the template default.
func (t *DailyTask) Duration(tpl TaskTemplate) time.Duration {
	if t.DurationOverrideMinutes > 0 {
		return time.Duration(t.DurationOverrideMinutes) * time.Minute
	}
	return time.Duration(tpl.DurationMinutes) * time.Minute
}

// Cameras resolves the effective camera count against the template default.
func (t *DailyTask) Cameras(tpl TaskTemplate) int {
	if t.CameraOverride > 0 {
		return t.CameraOverride
	}
	return tpl.CameraCount
}

// PlannedWindow returns the planned interval. Valid only when Planned.
func (t *DailyTask) PlannedWindow() Window {
	if !t.Planned() {
		return Window{}
	}
	return Window{Start: *t.PlannedStart, End: *t.PlannedEnd}
}
