package messaging

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"fleetedge/config"
	"fleetedge/fleet"
)

// SnapshotReporter periodically publishes the full fleet snapshot to the
// broker so downstream consumers see robot positions and hazard levels
// without polling the HTTP API.
type SnapshotReporter struct {
	client   *Client
	registry *fleet.Registry
	topic    string
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewSnapshotReporter creates a reporter publishing on the configured topic.
func NewSnapshotReporter(client *Client, registry *fleet.Registry, cfg *config.Config) *SnapshotReporter {
	interval := cfg.Messaging.ReportInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &SnapshotReporter{
		client:   client,
		registry: registry,
		topic:    cfg.SnapshotTopic(),
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic publish loop.
func (sr *SnapshotReporter) Start() {
	go sr.loop()
}

// Stop publishes a final snapshot and halts the loop.
func (sr *SnapshotReporter) Stop() {
	sr.stopOnce.Do(func() {
		close(sr.stopCh)
		sr.flush()
	})
}

func (sr *SnapshotReporter) loop() {
	ticker := time.NewTicker(sr.interval)
	defer ticker.Stop()
	for {
		select {
		case <-sr.stopCh:
			return
		case <-ticker.C:
			sr.flush()
		}
	}
}

func (sr *SnapshotReporter) flush() {
	snap := sr.registry.Snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		log.Printf("snapshot_reporter: marshal: %v", err)
		return
	}
	if err := sr.client.Publish(sr.topic, data); err != nil {
		log.Printf("snapshot_reporter: publish: %v", err)
	}
}
