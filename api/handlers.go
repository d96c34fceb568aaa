// Package api exposes the scheduling engine over plain JSON HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/platotv/plato/core/engine"
	"github.com/platotv/plato/core/model"
)

// NewMux builds the API routes on a fresh ServeMux.
func NewMux(eng *engine.Engine, settings engine.SettingsStore) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("POST /api/plans/{id}/generate", NewGenerateHandler(eng))
	mux.Handle("GET /api/plans/{id}/eta", NewEstimateHandler(eng))
	mux.Handle("GET /api/settings/transport", NewTransportGetHandler(settings))
	mux.Handle("PATCH /api/settings/transport", NewTransportPatchHandler(settings))
	return mux
}

type generateRequest struct {
	Mode string `json:"mode"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewGenerateHandler serves POST /api/plans/{id}/generate. Committed and
// partial runs answer 200 with the schedule, infeasible runs answer 422 with
// reasons, and a concurrent run on the same plan answers 409.
func NewGenerateHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		planID := r.PathValue("id")
		if planID == "" {
			writeError(w, http.StatusBadRequest, "missing plan id")
			return
		}
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
			return
		}
		mode, err := model.ParseMode(req.Mode)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		res, err := eng.Generate(r.Context(), planID, mode)
		switch {
		case errors.Is(err, engine.ErrRunInFlight):
			writeError(w, http.StatusConflict, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if res.Infeasible {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"reasons": res.Reasons})
			return
		}
		writeJSON(w, http.StatusOK, res)
	})
}

// NewEstimateHandler serves GET /api/plans/{id}/eta.
func NewEstimateHandler(eng *engine.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		planID := r.PathValue("id")
		if planID == "" {
			writeError(w, http.StatusBadRequest, "missing plan id")
			return
		}
		est, err := eng.Estimate(r.Context(), planID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, est)
	})
}

// NewTransportGetHandler serves GET /api/settings/transport.
func NewTransportGetHandler(store engine.SettingsStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		settings, err := store.TransportSettings(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	})
}

// NewTransportPatchHandler serves PATCH /api/settings/transport. Absent
// fields keep their stored value.
func NewTransportPatchHandler(store engine.SettingsStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var patch engine.TransportPatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeError(w, http.StatusBadRequest, "invalid body: "+err.Error())
			return
		}
		settings, err := store.PatchTransportSettings(r.Context(), patch)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, settings)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
