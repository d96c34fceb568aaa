package model

import "fmt"

// Mode selects which tasks a generation run may (re)place.
type Mode string

const (
	// ModeFull discards every non-locked placement and rebuilds from scratch.
	ModeFull Mode = "full"
	// ModeOnlyUnplanned keeps placed tasks fixed and places the rest.
	ModeOnlyUnplanned Mode = "only_unplanned"
	// ModeReplanPending keeps locked tasks fixed and re-places everything else.
	ModeReplanPending Mode = "replan_pending_respecting_locks"
	// ModeGeneratePlanning re-places every pending task, planned or not.
	ModeGeneratePlanning Mode = "generate_planning"
	// ModePlanPending places only pending tasks that carry no planned time.
	ModePlanPending Mode = "plan_pending"
)

// ParseMode validates a wire-level mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFull, ModeOnlyUnplanned, ModeReplanPending, ModeGeneratePlanning, ModePlanPending:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown generation mode %q", s)
}

// AllOrNothing reports whether an unplaceable task aborts the whole run.
// Partial modes commit what they could place and report the rest as warnings.
func (m Mode) AllOrNothing() bool {
	switch m {
	case ModeFull, ModeReplanPending, ModeGeneratePlanning:
		return true
	}
	return false
}
