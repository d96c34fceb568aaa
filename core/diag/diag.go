// Package diag defines the closed warning and reason vocabulary returned by
// generation runs. Diagnostics are values, not Go errors: callers match on
// the code and read the typed payload instead of parsing messages.
package diag

import "github.com/platotv/plato/core/model"

// Code tags a warning or reason payload.
type Code string

const (
	// Warnings. Generation still commits.
	CodeMissingSpace       Code = "MISSING_SPACE"
	CodeMainZoneGapsRemain Code = "MAIN_ZONE_GAPS_REMAIN"
	CodeGeneric            Code = "GENERIC"

	// Hard infeasibility reasons. All-or-nothing modes abort without commit.
	CodeDependencyMissing   Code = "DEPENDENCY_MISSING"
	CodeResourceUnavailable Code = "RESOURCE_UNAVAILABLE"
	CodeStaffUnavailable    Code = "STAFF_UNAVAILABLE"
	CodeSpaceUnavailable    Code = "SPACE_UNAVAILABLE"
	CodeWindowExhausted     Code = "WINDOW_EXHAUSTED"

	// Configuration errors. Fixing the data, not re-running, is the remedy.
	CodeCycleDetected        Code = "CYCLE_DETECTED"
	CodeMalformedRequirement Code = "MALFORMED_REQUIREMENT"
	CodeInvalidDependency    Code = "INVALID_DEPENDENCY"
	CodeInvalidZone          Code = "INVALID_ZONE"
	CodeUnknownTeam          Code = "UNKNOWN_TEAM"
)

// GapReason names the task whose placement explains one main-zone gap.
type GapReason struct {
	BlockedMainZoneTaskID string `json:"blockedMainZoneTaskId"`
	HumanMessage          string `json:"humanMessage"`
}

// GapDetails carries the residual gaps of the main zone with one reason per
// gap.
type GapDetails struct {
	Gaps    []model.Window `json:"gaps"`
	Reasons []GapReason    `json:"reasons"`
}

// Warning is a non-blocking diagnostic attached to a successful run.
type Warning struct {
	Code         Code        `json:"code"`
	TemplateName string      `json:"templateName,omitempty"`
	TaskID       string      `json:"taskId,omitempty"`
	Details      *GapDetails `json:"details,omitempty"`
	Message      string      `json:"message,omitempty"`
}

// Reason is a blocking diagnostic explaining why no schedule was committed.
type Reason struct {
	Code              Code   `json:"code"`
	ContestantID      string `json:"contestantId,omitempty"`
	MissingTemplateID string `json:"missingTemplateId,omitempty"`
	TemplateID        string `json:"templateId,omitempty"`
	TaskID            string `json:"taskId,omitempty"`
	Message           string `json:"message,omitempty"`
}

// MissingSpace flags a task that ended up without a resolved zone.
func MissingSpace(templateName, taskID string) Warning {
	return Warning{Code: CodeMissingSpace, TemplateName: templateName, TaskID: taskID}
}

// MainZoneGaps reports the residual idle intervals of the primary stage.
func MainZoneGaps(details GapDetails) Warning {
	return Warning{Code: CodeMainZoneGapsRemain, Details: &details}
}

// Generic wraps a free-text diagnostic that has no dedicated payload.
func Generic(message string) Warning {
	return Warning{Code: CodeGeneric, Message: message}
}

// DependencyMissing reports a prerequisite template with no same-contestant
// daily task in the snapshot. The payload is structured so callers can offer
// to create the missing task.
func DependencyMissing(contestantID, missingTemplateID, taskID string) Reason {
	return Reason{
		Code:              CodeDependencyMissing,
		ContestantID:      contestantID,
		MissingTemplateID: missingTemplateID,
		TaskID:            taskID,
	}
}

// Unplaceable reports a task with zero feasible placements, tagged with the
// exhausted dimension.
func Unplaceable(code Code, taskID, templateID, message string) Reason {
	return Reason{Code: code, TaskID: taskID, TemplateID: templateID, Message: message}
}

// Blocking reports whether a reason code aborts all-or-nothing runs. Every
// reason is blocking today; the predicate keeps call sites exhaustive when
// the vocabulary grows.
func (r Reason) Blocking() bool {
	switch r.Code {
	case CodeDependencyMissing, CodeResourceUnavailable, CodeStaffUnavailable,
		CodeSpaceUnavailable, CodeWindowExhausted,
		CodeCycleDetected, CodeMalformedRequirement, CodeInvalidDependency, CodeInvalidZone, CodeUnknownTeam:
		return true
	}
	return false
}
