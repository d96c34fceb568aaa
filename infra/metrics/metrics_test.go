package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/platotv/plato/core/metrics"
	"github.com/platotv/plato/core/model"
)

func TestPromSinkRecordsGeneration(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	ev := coremetrics.GenerationEvent{
		PlanID:   "plan-1",
		Mode:     model.ModeFull,
		Outcome:  coremetrics.OutcomeCommitted,
		Placed:   3,
		Warnings: 2,
		Duration: 120 * time.Millisecond,
		Time:     time.Now(),
	}
	require.NoError(t, sink.RecordGeneration(ev))
	require.NoError(t, sink.RecordGeneration(ev))

	got := testutil.ToFloat64(sink.runs.WithLabelValues("full", "committed"))
	assert.Equal(t, 2.0, got)
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.warnings.WithLabelValues("full")))
}

func TestPromSinkDoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	// A second sink on the same registry reuses the existing collectors.
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NotNil(t, sink)
}

type countingSink struct {
	generations int
	estimates   int
}

func (c *countingSink) RecordGeneration(coremetrics.GenerationEvent) error {
	c.generations++
	return nil
}

func (c *countingSink) RecordEstimate(coremetrics.EstimateEvent) error {
	c.estimates++
	return nil
}

type generationOnlySink struct{ generations int }

func (g *generationOnlySink) RecordGeneration(coremetrics.GenerationEvent) error {
	g.generations++
	return nil
}

func TestMultiSinkFansOut(t *testing.T) {
	full := &countingSink{}
	partial := &generationOnlySink{}
	multi := NewMultiSink(full, partial)

	require.NoError(t, multi.RecordGeneration(coremetrics.GenerationEvent{}))
	require.NoError(t, multi.RecordEstimate(coremetrics.EstimateEvent{}))

	assert.Equal(t, 1, full.generations)
	assert.Equal(t, 1, full.estimates)
	// Estimate events only reach sinks that implement the recorder.
	assert.Equal(t, 1, partial.generations)
}

func TestFromConfigDefaultsToNop(t *testing.T) {
	sink, err := FromConfig(coremetrics.Config{})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, sink)
}
