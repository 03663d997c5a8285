package www

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"fleetedge/grid"
)

func (h *Handlers) apiFleetSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Registry().Snapshot())
}

func (h *Handlers) apiListRobots(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Registry().Snapshot().Robots)
}

func (h *Handlers) apiGetRobot(w http.ResponseWriter, r *http.Request) {
	robotID := chi.URLParam(r, "robotID")
	rb, ok := h.engine.Registry().Robot(robotID)
	if !ok {
		writeError(w, http.StatusNotFound, "robot not found")
		return
	}
	writeJSON(w, rb)
}

func (h *Handlers) apiAssignGoal(w http.ResponseWriter, r *http.Request) {
	robotID := chi.URLParam(r, "robotID")
	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.AssignGoal(robotID, grid.Coordinate{X: req.X, Y: req.Y}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rb, _ := h.engine.Registry().Robot(robotID)
	writeJSON(w, rb)
}

func (h *Handlers) apiListHazards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.engine.Registry().Snapshot().Hazards)
}

func (h *Handlers) apiListMissions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			limit = n
		}
	}

	var err error
	var missions interface{}
	if robotID := r.URL.Query().Get("robot_id"); robotID != "" {
		missions, err = h.engine.DB().ListMissionsByRobot(robotID, limit)
	} else {
		missions, err = h.engine.DB().ListMissions(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, missions)
}

func (h *Handlers) apiStatusLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.DB().ListStatusEntries(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, entries)
}

func (h *Handlers) apiHazardLog(w http.ResponseWriter, r *http.Request) {
	entries, err := h.engine.DB().ListHazardEntries(100)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, entries)
}

func (h *Handlers) apiGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := h.engine.AppConfig()
	writeJSON(w, map[string]interface{}{
		"namespace": cfg.Namespace,
		"grid":      cfg.Grid,
		"routes":    cfg.Routes,
		"sim":       cfg.Sim,
	})
}

func (h *Handlers) apiHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Registry().Snapshot()

	feedErr := ""
	if err := h.engine.TelemetryPoller().LastError(); err != nil {
		feedErr = err.Error()
	}

	writeJSON(w, map[string]interface{}{
		"feed_connected":   h.engine.TelemetryPoller().IsConnected(),
		"feed_error":       feedErr,
		"source":           snap.Source,
		"robots":           len(snap.Robots),
		"zones":            len(snap.Hazards),
		"dropped_records":  h.engine.TelemetryPoller().DroppedRecords(),
		"dropped_readings": h.engine.HazardPoller().DroppedReadings(),
		"ticks":            h.engine.Executor().Ticks(),
	})
}
