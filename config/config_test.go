package config

import (
	"os"
	"path/filepath"
	"testing"

	"fleetedge/grid"
)

func TestTopicsDerivedPerBackend(t *testing.T) {
	cfg := Defaults()

	cfg.Messaging.Backend = "mqtt"
	if got := cfg.ZoneTopic(); got != "zone/+" {
		t.Errorf("mqtt zone topic = %q, want zone/+", got)
	}
	if got := cfg.SnapshotTopic(); got != "fleet/snapshot" {
		t.Errorf("mqtt snapshot topic = %q, want fleet/snapshot", got)
	}

	// Kafka topic names cannot contain '/' or '+'.
	cfg.Messaging.Backend = "kafka"
	if got := cfg.ZoneTopic(); got != "zone-readings" {
		t.Errorf("kafka zone topic = %q, want zone-readings", got)
	}
	if got := cfg.SnapshotTopic(); got != "fleet-snapshot" {
		t.Errorf("kafka snapshot topic = %q, want fleet-snapshot", got)
	}

	cfg.Messaging.ZoneTopic = "site7.zones"
	if got := cfg.ZoneTopic(); got != "site7.zones" {
		t.Errorf("configured zone topic = %q, want site7.zones", got)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Grid.Size != 20 || len(cfg.Routes) != 3 {
		t.Errorf("defaults = %dx grid, %d routes, want 20 and 3", cfg.Grid.Size, len(cfg.Routes))
	}
}

func TestLoadRejectsOutOfBoundsRoute(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fleet.yaml")
	data := []byte("routes:\n  - robot_id: R1\n    start: {x: 2, y: 2}\n    goal: {x: 99, y: 99}\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for route goal outside the grid")
	}
}

func TestRouteLookup(t *testing.T) {
	cfg := Defaults()

	rt, ok := cfg.Route("R2")
	if !ok || rt.Start != (grid.Coordinate{X: 5, Y: 14}) {
		t.Errorf("R2 route = %+v ok=%v, want start (5,14)", rt, ok)
	}
	if _, ok := cfg.Route("FORKLIFT-7"); ok {
		t.Error("unexpected route for untracked robot")
	}
}
