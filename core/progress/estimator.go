// Package progress projects a revised completion time per zone from the
// drift between planned and actual durations observed so far.
package progress

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/platotv/plato/core/model"
)

// Confidence grades an estimate by its sample count.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Ratio clamp bounds. Outliers from data-entry noise or near-zero planned
// durations would otherwise dominate the drift.
const (
	minRatio = 0.5
	maxRatio = 2.0
)

// ZoneEstimate is the projection for one zone.
type ZoneEstimate struct {
	ZoneID         string     `json:"zoneId"`
	DoneTasks      int        `json:"doneTasks"`
	RemainingTasks int        `json:"remainingTasks"`
	DriftFactor    float64    `json:"driftFactor"`
	Confidence     Confidence `json:"confidence"`
	PlannedEnd     time.Time  `json:"plannedEnd"`
	AdjustedEnd    time.Time  `json:"adjustedEnd"`
}

// Estimate is the plan-wide projection: the day finishes when its slowest
// zone finishes.
type Estimate struct {
	PlanID      string         `json:"planId"`
	Zones       []ZoneEstimate `json:"zones"`
	AdjustedEnd time.Time      `json:"adjustedEnd"`
}

// Estimator is a pure read path over committed state; it runs safely next
// to an in-flight generation.
type Estimator struct {
	snap *model.Snapshot
}

// New creates an estimator for the snapshot.
func New(snap *model.Snapshot) *Estimator { return &Estimator{snap: snap} }

// Run computes per-zone drift and adjusted completion times.
func (e *Estimator) Run() Estimate {
	byZone := map[string][]model.DailyTask{}
	for i := range e.snap.Tasks {
		t := e.snap.Tasks[i]
		if t.ZoneID == "" || !t.Planned() || t.Status == model.StatusCancelled {
			continue
		}
		byZone[t.ZoneID] = append(byZone[t.ZoneID], t)
	}

	est := Estimate{PlanID: e.snap.Plan.ID}
	zoneIDs := make([]string, 0, len(byZone))
	for id := range byZone {
		zoneIDs = append(zoneIDs, id)
	}
	sort.Strings(zoneIDs)

	for _, zoneID := range zoneIDs {
		z := e.zoneEstimate(zoneID, byZone[zoneID])
		est.Zones = append(est.Zones, z)
		if z.AdjustedEnd.After(est.AdjustedEnd) {
			est.AdjustedEnd = z.AdjustedEnd
		}
	}
	return est
}

func (e *Estimator) zoneEstimate(zoneID string, tasks []model.DailyTask) ZoneEstimate {
	var ratios []float64
	var remaining time.Duration
	var plannedEnd time.Time
	done := 0

	for i := range tasks {
		t := &tasks[i]
		if t.PlannedEnd.After(plannedEnd) {
			plannedEnd = *t.PlannedEnd
		}
		planned := t.PlannedEnd.Sub(*t.PlannedStart)
		if t.Status == model.StatusDone {
			done++
			if t.ActualStart != nil && t.ActualEnd != nil {
				actual := t.ActualEnd.Sub(*t.ActualStart)
				if planned > 0 && actual > 0 {
					ratios = append(ratios, clamp(actual.Minutes()/planned.Minutes()))
				}
			}
			continue
		}
		remaining += planned
	}

	drift := 1.0
	if len(ratios) > 0 {
		drift = stat.Mean(ratios, nil)
	}
	adjusted := plannedEnd
	if remaining > 0 {
		adjusted = plannedEnd.Add(time.Duration(float64(remaining) * (drift - 1)))
	}
	return ZoneEstimate{
		ZoneID:         zoneID,
		DoneTasks:      done,
		RemainingTasks: len(tasks) - done,
		DriftFactor:    drift,
		Confidence:     confidence(len(ratios)),
		PlannedEnd:     plannedEnd,
		AdjustedEnd:    adjusted,
	}
}

func confidence(samples int) Confidence {
	switch {
	case samples >= 6:
		return ConfidenceHigh
	case samples >= 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func clamp(r float64) float64 {
	if r < minRatio {
		return minRatio
	}
	if r > maxRatio {
		return maxRatio
	}
	return r
}
