package messaging

import (
	"encoding/json"
	"log"
	"sort"
	"sync"

	"fleetedge/config"
	"fleetedge/hazard"
)

// ZoneSubscriber listens for per-zone environment messages on the broker and
// feeds them into the hazard pipeline. The broker publishes one zone per
// message, so the subscriber keeps the latest reading per zone and pushes the
// whole merged set on every message to match the wholesale-replace contract of
// the zone registry.
type ZoneSubscriber struct {
	client  *Client
	cfg     *config.Config
	hazards *hazard.Poller

	mu     sync.Mutex
	latest map[string]hazard.Reading
}

// NewZoneSubscriber creates a new zone message subscriber.
func NewZoneSubscriber(client *Client, cfg *config.Config, hazards *hazard.Poller) *ZoneSubscriber {
	return &ZoneSubscriber{
		client:  client,
		cfg:     cfg,
		hazards: hazards,
		latest:  make(map[string]hazard.Reading),
	}
}

// Start subscribes to the zone topic and begins processing readings.
func (s *ZoneSubscriber) Start() error {
	return s.client.Subscribe(s.cfg.ZoneTopic(), s.handleMessage)
}

// zoneMessage is the broker wire format. The zone simulators publish one zone
// per message under zone/<id>, with a "zone" key instead of the HTTP feed's
// "zone_id" (extra fields like humidity and timestamp are ignored).
type zoneMessage struct {
	Zone        string  `json:"zone"`
	Temperature float64 `json:"temperature"`
	Vibration   float64 `json:"vibration"`
}

func (s *ZoneSubscriber) handleMessage(payload []byte) {
	var msg zoneMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Printf("unmarshal zone reading: %v", err)
		return
	}
	if msg.Zone == "" {
		log.Printf("zone reading without zone id dropped")
		return
	}
	reading := hazard.Reading{ZoneID: msg.Zone, Temperature: msg.Temperature, Vibration: msg.Vibration}

	s.mu.Lock()
	s.latest[reading.ZoneID] = reading
	merged := make([]hazard.Reading, 0, len(s.latest))
	for _, r := range s.latest {
		merged = append(merged, r)
	}
	s.mu.Unlock()

	sort.Slice(merged, func(i, j int) bool { return merged[i].ZoneID < merged[j].ZoneID })
	s.hazards.Ingest(merged)
}
