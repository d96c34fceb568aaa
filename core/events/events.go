// Package events defines the typed events the engine publishes on the bus.
package events

import (
	"time"

	"github.com/platotv/plato/core/model"
)

// GenerationStarted is published when a run acquires its plan slot.
type GenerationStarted struct {
	PlanID string
	Mode   model.Mode
	Time   time.Time
}

// GenerationFinished is published after a run ends, whatever the outcome.
type GenerationFinished struct {
	PlanID   string
	Mode     model.Mode
	Outcome  string
	Placed   int
	Warnings int
	Reasons  int
	Duration time.Duration
	Time     time.Time
}

// EstimateServed is published when the ETA read path answers.
type EstimateServed struct {
	PlanID      string
	AdjustedEnd time.Time
	Time        time.Time
}
