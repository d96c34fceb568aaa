package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platotv/plato/core/engine"
	"github.com/platotv/plato/core/model"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	st.Put(sampleSnapshot())

	got, err := st.LoadSnapshot(ctx, "plan-1")
	require.NoError(t, err)
	assert.Equal(t, "plan-1", got.Plan.ID)
	assert.Equal(t, 8, got.Transport.VanCapacity)

	_, err = st.LoadSnapshot(ctx, "nope")
	assert.Error(t, err)
}

func TestMemoryStoreCommitReplacesById(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()
	st.Put(sampleSnapshot())

	start := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	require.NoError(t, st.CommitTasks(ctx, "plan-1", []model.DailyTask{
		{ID: "t1", PlanID: "plan-1", TemplateID: "tpl", Status: model.StatusPending,
			PlannedStart: &start, PlannedEnd: &end},
	}))

	got, err := st.LoadSnapshot(ctx, "plan-1")
	require.NoError(t, err)
	require.Len(t, got.Tasks, 1)
	require.NotNil(t, got.Tasks[0].PlannedStart)
	assert.True(t, got.Tasks[0].PlannedStart.Equal(start))
}

func TestMemoryStorePatchTransport(t *testing.T) {
	st := NewMemoryStore()
	weight := 5
	patched, err := st.PatchTransportSettings(context.Background(), engine.TransportPatch{
		WeightArrivalDepartureGrouping: &weight,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, patched.WeightArrivalDepartureGrouping)
	assert.Equal(t, "Salida", patched.DepartureTaskTemplateName)
}
