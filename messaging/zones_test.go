package messaging

import (
	"testing"

	"fleetedge/config"
	"fleetedge/fleet"
	"fleetedge/hazard"
)

type nopEmitter struct{}

func (nopEmitter) EmitHazardRefreshed(int)                  {}
func (nopEmitter) EmitHazardLevelChanged(fleet.LevelChange) {}

func TestZoneSubscriber_MergesPerZoneMessages(t *testing.T) {
	cfg := config.Defaults()
	reg := fleet.NewRegistry()
	hz := hazard.NewPoller(reg, cfg, nopEmitter{})
	sub := NewZoneSubscriber(nil, cfg, hz)

	sub.handleMessage([]byte(`{"zone": "A", "temperature": 29, "vibration": 0.2, "humidity": 55}`))
	sub.handleMessage([]byte(`{"zone": "B", "temperature": 20, "vibration": 0.1}`))

	snap := reg.Snapshot()
	if len(snap.Hazards) != 2 {
		t.Fatalf("zones = %d, want merged set of 2", len(snap.Hazards))
	}

	// A later message for an already-known zone replaces only that zone.
	sub.handleMessage([]byte(`{"zone": "A", "temperature": 20, "vibration": 0.1}`))

	snap = reg.Snapshot()
	if len(snap.Hazards) != 2 {
		t.Fatalf("zones = %d, want 2", len(snap.Hazards))
	}
	for _, z := range snap.Hazards {
		if z.Level != fleet.LevelNominal {
			t.Errorf("zone %s level = %q, want nominal after cooldown", z.ID, z.Level)
		}
	}
}

func TestZoneSubscriber_DropsMalformedMessages(t *testing.T) {
	cfg := config.Defaults()
	reg := fleet.NewRegistry()
	hz := hazard.NewPoller(reg, cfg, nopEmitter{})
	sub := NewZoneSubscriber(nil, cfg, hz)

	sub.handleMessage([]byte(`not json`))
	sub.handleMessage([]byte(`{"temperature": 29, "vibration": 0.2}`))

	if len(reg.Snapshot().Hazards) != 0 {
		t.Errorf("zones = %d, want 0 after malformed input", len(reg.Snapshot().Hazards))
	}
}
