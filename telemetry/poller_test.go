package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fleetedge/config"
	"fleetedge/fleet"
)

type recordingEmitter struct {
	refreshes     []fleet.Source
	connected     int
	disconnected  int
	added         []string
	removed       []string
	statusChanges []fleet.StatusChange
}

func (e *recordingEmitter) EmitTelemetryRefreshed(source fleet.Source, robots int) {
	e.refreshes = append(e.refreshes, source)
}
func (e *recordingEmitter) EmitFeedConnected()                 { e.connected++ }
func (e *recordingEmitter) EmitFeedDisconnected(err error)     { e.disconnected++ }
func (e *recordingEmitter) EmitRobotRemoved(robotID string)    { e.removed = append(e.removed, robotID) }
func (e *recordingEmitter) EmitRobotAdded(robotID string, status fleet.OperatingStatus, health float64) {
	e.added = append(e.added, robotID)
}
func (e *recordingEmitter) EmitRobotStatusChanged(change fleet.StatusChange) {
	e.statusChanges = append(e.statusChanges, change)
}

func newTestPoller(t *testing.T, feedURL string) (*Poller, *fleet.Registry, *recordingEmitter) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Telemetry.URL = feedURL
	reg := fleet.NewRegistry()
	em := &recordingEmitter{}
	return NewPoller(reg, cfg, em), reg, em
}

func TestRefresh_LiveFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"robotId": "R1", "health": 85},
			{"robotId": "R2", "health": 65},
			{"robotId": "R3", "health": 30}
		]`))
	}))
	defer srv.Close()

	p, reg, em := newTestPoller(t, srv.URL)
	p.Refresh()

	snap := reg.Snapshot()
	if snap.Source != fleet.SourceLive {
		t.Errorf("source = %q, want live", snap.Source)
	}
	if len(snap.Robots) != 3 {
		t.Fatalf("robots = %d, want 3", len(snap.Robots))
	}
	want := map[string]fleet.OperatingStatus{
		"R1": fleet.StatusActive,
		"R2": fleet.StatusIdle,
		"R3": fleet.StatusMaintenance,
	}
	for _, rb := range snap.Robots {
		if rb.Status != want[rb.ID] {
			t.Errorf("%s status = %q, want %q", rb.ID, rb.Status, want[rb.ID])
		}
	}
	if !p.IsConnected() {
		t.Error("poller not connected after live refresh")
	}
	if em.connected != 1 {
		t.Errorf("connected events = %d, want 1", em.connected)
	}
	if len(em.added) != 3 {
		t.Errorf("added events = %v, want 3 robots", em.added)
	}
}

func TestRefresh_FallbackOnTransportFailure(t *testing.T) {
	p, reg, em := newTestPoller(t, "http://127.0.0.1:1/health")
	p.Refresh()

	snap := reg.Snapshot()
	if snap.Source != fleet.SourceFallback {
		t.Errorf("source = %q, want fallback", snap.Source)
	}
	if len(snap.Robots) != 3 {
		t.Fatalf("robots = %d, want the 3 documented fallback robots", len(snap.Robots))
	}
	want := map[string]fleet.OperatingStatus{
		"R1": fleet.StatusActive,
		"R2": fleet.StatusIdle,
		"R3": fleet.StatusMaintenance,
	}
	for _, rb := range snap.Robots {
		if rb.Status != want[rb.ID] {
			t.Errorf("fallback %s status = %q, want %q", rb.ID, rb.Status, want[rb.ID])
		}
	}
	if p.IsConnected() {
		t.Error("poller connected after transport failure")
	}
	if p.LastError() == nil {
		t.Error("LastError = nil after transport failure")
	}
	if len(em.refreshes) != 1 || em.refreshes[0] != fleet.SourceFallback {
		t.Errorf("refreshes = %v, want one fallback refresh", em.refreshes)
	}
}

func TestRefresh_FallbackOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	p, reg, _ := newTestPoller(t, srv.URL)
	p.Refresh()

	if got := reg.Snapshot().Source; got != fleet.SourceFallback {
		t.Errorf("source = %q, want fallback", got)
	}
}

func TestRefresh_FiltersUntrackedRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"robotId": "R1", "health": 90},
			{"robotId": "FORKLIFT-7", "health": 90}
		]`))
	}))
	defer srv.Close()

	p, reg, _ := newTestPoller(t, srv.URL)
	p.Refresh()

	snap := reg.Snapshot()
	if len(snap.Robots) != 1 || snap.Robots[0].ID != "R1" {
		t.Errorf("robots = %+v, want only tracked R1", snap.Robots)
	}
}

func TestRefresh_DropsMalformedRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"robotId": "R1"},
			{"health": 55},
			{"robotId": "R2", "health": 75}
		]`))
	}))
	defer srv.Close()

	p, reg, _ := newTestPoller(t, srv.URL)
	p.Refresh()

	snap := reg.Snapshot()
	if len(snap.Robots) != 1 || snap.Robots[0].ID != "R2" {
		t.Errorf("robots = %+v, want only complete R2 record", snap.Robots)
	}
	if p.DroppedRecords() != 2 {
		t.Errorf("dropped = %d, want 2", p.DroppedRecords())
	}
}

func TestRefresh_FeedRecoveryEmitsTransitions(t *testing.T) {
	healthy := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[{"robotId": "R1", "health": 90}]`))
	}))
	defer srv.Close()

	p, reg, em := newTestPoller(t, srv.URL)

	p.Refresh() // down, fallback
	healthy = true
	p.Refresh() // recovers

	if em.connected != 1 {
		t.Errorf("connected events = %d, want 1", em.connected)
	}
	snap := reg.Snapshot()
	if snap.Source != fleet.SourceLive {
		t.Errorf("source = %q, want live after recovery", snap.Source)
	}
	// Live refresh removes fallback robots the live feed doesn't report.
	if len(snap.Robots) != 1 {
		t.Errorf("robots = %d, want 1 after live refresh", len(snap.Robots))
	}
	if len(em.removed) != 2 {
		t.Errorf("removed = %v, want R2 and R3", em.removed)
	}
}
