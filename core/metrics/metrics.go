// Package metrics defines the sink contract for scheduling telemetry.
// Implementations live in infra/metrics.
package metrics

import (
	"time"

	"github.com/platotv/plato/core/model"
)

// Outcome tags how a generation run ended.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomePartial    Outcome = "partial"
	OutcomeInfeasible Outcome = "infeasible"
	OutcomeConfigErr  Outcome = "config_error"
	OutcomeError      Outcome = "error"
)

// GenerationEvent summarises one generation run.
type GenerationEvent struct {
	PlanID   string
	Mode     model.Mode
	Outcome  Outcome
	Placed   int
	Warnings int
	Reasons  int
	Duration time.Duration
	Time     time.Time
}

// EstimateEvent records one ETA read.
type EstimateEvent struct {
	PlanID      string
	Zones       int
	AdjustedEnd time.Time
	Time        time.Time
}

// Sink receives scheduling telemetry.
type Sink interface {
	RecordGeneration(ev GenerationEvent) error
}

// EstimateRecorder is implemented by sinks that also track ETA reads.
type EstimateRecorder interface {
	RecordEstimate(ev EstimateEvent) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordGeneration(GenerationEvent) error { return nil }
func (NopSink) RecordEstimate(EstimateEvent) error     { return nil }

// Config selects the enabled sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}
