package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platotv/plato/core/engine"
	"github.com/platotv/plato/core/model"
	"github.com/platotv/plato/infra/store"
)

func testServer(t *testing.T, snap *model.Snapshot) *httptest.Server {
	t.Helper()
	st := store.NewMemoryStore()
	if snap != nil {
		st.Put(snap)
	}
	eng, err := engine.New(st, st, nil, nil, nil, engine.Config{})
	require.NoError(t, err)
	srv := httptest.NewServer(NewMux(eng, st))
	t.Cleanup(srv.Close)
	return srv
}

func apiSnapshot() *model.Snapshot {
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	snap := &model.Snapshot{
		Plan: model.Plan{
			ID:        "plan-1",
			WorkStart: start,
			WorkEnd:   start.Add(11 * time.Hour),
			MealStart: start.Add(4 * time.Hour),
			MealEnd:   start.Add(5 * time.Hour),
		},
		Templates: []model.TaskTemplate{{ID: "tpl", Name: "Perf", DurationMinutes: 60}},
		Tasks: []model.DailyTask{
			{ID: "t1", PlanID: "plan-1", ContestantID: "c1", TemplateID: "tpl", Status: model.StatusPending},
		},
	}
	snap.Transport.SetDefaults()
	return snap
}

func postGenerate(t *testing.T, srv *httptest.Server, planID, mode string) *http.Response {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"mode": mode})
	resp, err := http.Post(srv.URL+"/api/plans/"+planID+"/generate", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestGenerateEndpointCommits(t *testing.T) {
	srv := testServer(t, apiSnapshot())
	resp := postGenerate(t, srv, "plan-1", "full")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got engine.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.DailyTasks, 1)
	assert.NotNil(t, got.DailyTasks[0].PlannedStart)
}

func TestGenerateEndpointRejectsUnknownMode(t *testing.T) {
	srv := testServer(t, apiSnapshot())
	resp := postGenerate(t, srv, "plan-1", "yolo")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateEndpointInfeasible(t *testing.T) {
	snap := apiSnapshot()
	snap.Templates[0].DurationMinutes = 24 * 60
	srv := testServer(t, snap)

	resp := postGenerate(t, srv, "plan-1", "full")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body struct {
		Reasons []map[string]any `json:"reasons"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotEmpty(t, body.Reasons)
	assert.Equal(t, "WINDOW_EXHAUSTED", body.Reasons[0]["code"])
}

func TestEstimateEndpoint(t *testing.T) {
	snap := apiSnapshot()
	start := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	snap.Tasks = []model.DailyTask{
		{ID: "t1", ZoneID: "z1", TemplateID: "tpl", Status: model.StatusPending,
			PlannedStart: &start, PlannedEnd: &end},
	}
	srv := testServer(t, snap)

	resp, err := http.Get(srv.URL + "/api/plans/plan-1/eta")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var est struct {
		PlanID string `json:"planId"`
		Zones  []any  `json:"zones"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&est))
	assert.Equal(t, "plan-1", est.PlanID)
	assert.Len(t, est.Zones, 1)
}

func TestTransportSettingsEndpoints(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/settings/transport")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var settings model.TransportSettings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	assert.Equal(t, 8, settings.VanCapacity)

	patch, _ := json.Marshal(map[string]any{"vanCapacity": 6})
	req, err := http.NewRequest(http.MethodPatch, srv.URL+"/api/settings/transport", bytes.NewReader(patch))
	require.NoError(t, err)
	patchResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = patchResp.Body.Close() }()
	assert.Equal(t, http.StatusOK, patchResp.StatusCode)

	var patched model.TransportSettings
	require.NoError(t, json.NewDecoder(patchResp.Body).Decode(&patched))
	assert.Equal(t, 6, patched.VanCapacity)
	assert.Equal(t, "Llegada", patched.ArrivalTaskTemplateName)
}
