package engine

import (
	"context"

	"github.com/platotv/plato/core/model"
)

// SnapshotReader loads the immutable plan snapshot a run works on.
type SnapshotReader interface {
	LoadSnapshot(ctx context.Context, planID string) (*model.Snapshot, error)
}

// TaskWriter persists the committed task set of a run atomically: either
// every task of the set is written or none.
type TaskWriter interface {
	CommitTasks(ctx context.Context, planID string, tasks []model.DailyTask) error
}

// TransportPatch carries the PATCHable transport settings fields; nil
// members stay untouched.
type TransportPatch struct {
	ArrivalTaskTemplateName        *string `json:"arrivalTaskTemplateName,omitempty"`
	DepartureTaskTemplateName      *string `json:"departureTaskTemplateName,omitempty"`
	ArrivalGroupingTarget          *int    `json:"arrivalGroupingTarget,omitempty"`
	DepartureGroupingTarget        *int    `json:"departureGroupingTarget,omitempty"`
	VanCapacity                    *int    `json:"vanCapacity,omitempty"`
	WeightArrivalDepartureGrouping *int    `json:"weightArrivalDepartureGrouping,omitempty"`
}

// SettingsStore reads and patches the plan-independent transport defaults.
type SettingsStore interface {
	TransportSettings(ctx context.Context) (model.TransportSettings, error)
	PatchTransportSettings(ctx context.Context, patch TransportPatch) (model.TransportSettings, error)
}
