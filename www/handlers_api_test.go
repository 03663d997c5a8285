package www

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fleetedge/config"
	"fleetedge/engine"
	"fleetedge/fleet"
	"fleetedge/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *engine.Engine) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/robots/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"robotId": "R1", "health": 92},
			{"robotId": "R2", "health": 73},
			{"robotId": "R3", "health": 41}
		]`))
	})
	mux.HandleFunc("/zones/environment", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"zone_id": "A", "temperature": 29, "vibration": 0.2}]`))
	})
	feeds := httptest.NewServer(mux)
	t.Cleanup(feeds.Close)

	cfg := config.Defaults()
	cfg.Telemetry.URL = feeds.URL + "/robots/health"
	cfg.Telemetry.PollRate = time.Hour
	cfg.Hazard.URL = feeds.URL + "/zones/environment"
	cfg.Hazard.PollRate = time.Hour
	cfg.Sim.Tick = time.Hour

	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	eng := engine.New(engine.Config{AppConfig: cfg, DB: db})
	eng.Start()
	t.Cleanup(eng.Stop)
	eng.TelemetryPoller().Refresh()
	eng.HazardPoller().Poll()

	// Dispatch rides on whichever goroutine wins the first refresh (the
	// start-time poll races the explicit one above). Mission rows are
	// written before the path lands in the registry, so waiting for every
	// robot's mission id covers the API's view of both.
	waitForDispatch(t, eng)

	router, stopWeb := NewRouter(eng)
	t.Cleanup(stopWeb)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv, eng
}

func waitForDispatch(t *testing.T, eng *engine.Engine) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := eng.Registry().Snapshot()
		dispatched := 0
		for _, rb := range snap.Robots {
			if rb.MissionID != "" {
				dispatched++
			}
		}
		if len(snap.Robots) == 3 && dispatched == 3 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("fleet not dispatched in time")
}

func getJSON(t *testing.T, url string, out interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestAPIFleetSnapshot(t *testing.T) {
	srv, _ := newTestServer(t)

	var snap fleet.Snapshot
	getJSON(t, srv.URL+"/api/fleet", &snap)

	if len(snap.Robots) != 3 {
		t.Fatalf("robots = %d, want 3", len(snap.Robots))
	}
	if snap.Source != fleet.SourceLive {
		t.Errorf("source = %q, want live", snap.Source)
	}
	if len(snap.Hazards) != 1 || snap.Hazards[0].Level != fleet.LevelDanger {
		t.Errorf("hazards = %+v, want one danger zone", snap.Hazards)
	}
}

func TestAPIGetRobot(t *testing.T) {
	srv, _ := newTestServer(t)

	var rb fleet.Robot
	getJSON(t, srv.URL+"/api/robots/R1", &rb)
	if rb.ID != "R1" || rb.Status != fleet.StatusActive {
		t.Errorf("robot = %+v, want active R1", rb)
	}

	resp, err := http.Get(srv.URL + "/api/robots/FORKLIFT-7")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAPIAssignGoal(t *testing.T) {
	srv, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"x": 0, "y": 0}`)
	resp, err := http.Post(srv.URL+"/api/robots/R1/goal", "application/json", body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var rb fleet.Robot
	if err := json.NewDecoder(resp.Body).Decode(&rb); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rb.Goal.X != 0 || rb.Goal.Y != 0 {
		t.Errorf("goal = %v, want (0,0)", rb.Goal)
	}
	if rb.Phase != fleet.PhaseExecuting {
		t.Errorf("phase = %q, want executing", rb.Phase)
	}
}

func TestAPIAssignGoal_Invalid(t *testing.T) {
	srv, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"x": 99, "y": 99}`)
	resp, err := http.Post(srv.URL+"/api/robots/R1/goal", "application/json", body)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAPIMissions(t *testing.T) {
	srv, _ := newTestServer(t)

	var missions []store.Mission
	getJSON(t, srv.URL+"/api/missions", &missions)
	if len(missions) != 3 {
		t.Errorf("missions = %d, want one per dispatched robot", len(missions))
	}

	var r1 []store.Mission
	getJSON(t, srv.URL+"/api/missions?robot_id=R1", &r1)
	if len(r1) != 1 || r1[0].RobotID != "R1" {
		t.Errorf("R1 missions = %+v, want exactly one", r1)
	}
}

func TestAPIHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var health map[string]interface{}
	getJSON(t, srv.URL+"/api/health", &health)

	if health["feed_connected"] != true {
		t.Errorf("feed_connected = %v, want true", health["feed_connected"])
	}
	if health["source"] != "live" {
		t.Errorf("source = %v, want live", health["source"])
	}
	if health["robots"] != float64(3) {
		t.Errorf("robots = %v, want 3", health["robots"])
	}
}
