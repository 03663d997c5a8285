package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"fleetedge/config"
	"fleetedge/fleet"
)

// FallbackFleet is the documented default fleet substituted when the health
// feed is unreachable. It keeps the rest of the pipeline functioning and is
// flagged as fallback data in every snapshot, never passed off as live.
var FallbackFleet = []fleet.Telemetry{
	{RobotID: "R1", Health: 92}, // active
	{RobotID: "R2", Health: 73}, // idle
	{RobotID: "R3", Health: 41}, // maintenance
}

// Poller periodically fetches robot health records from the external feed
// and applies them to the fleet registry.
type Poller struct {
	mu       sync.RWMutex
	registry *fleet.Registry
	cfg      *config.Config
	emitter  EventEmitter
	client   http.Client
	tracked  map[string]bool

	connected bool
	lastErr   error
	dropped   int64

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoller creates a telemetry poller.
func NewPoller(registry *fleet.Registry, cfg *config.Config, emitter EventEmitter) *Poller {
	return &Poller{
		registry: registry,
		cfg:      cfg,
		emitter:  emitter,
		client:   http.Client{Timeout: 8 * time.Second},
		tracked:  cfg.TrackedRobots(),
		stopChan: make(chan struct{}),
	}
}

// Start begins the poll loop with an immediate first refresh.
func (p *Poller) Start() {
	p.wg.Add(1)
	go p.pollLoop()
}

// Stop stops the poll loop. No registry writes occur after Stop returns.
func (p *Poller) Stop() {
	select {
	case <-p.stopChan:
	default:
		close(p.stopChan)
	}
	p.wg.Wait()
}

func (p *Poller) pollLoop() {
	defer p.wg.Done()

	rate := p.cfg.Telemetry.PollRate
	if rate <= 0 {
		rate = 10 * time.Second
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	p.Refresh()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.Refresh()
		}
	}
}

// Refresh performs one telemetry fetch and applies the result to the
// registry. On transport failure the documented fallback fleet is applied
// instead, so a dead feed degrades the data source, not the pipeline.
func (p *Poller) Refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	records, err := p.fetch(ctx)
	if err != nil {
		p.mu.Lock()
		wasConnected := p.connected
		p.connected = false
		p.lastErr = err
		p.mu.Unlock()
		if wasConnected {
			log.Printf("telemetry feed lost: %v", err)
			p.emitter.EmitFeedDisconnected(err)
		}
		p.apply(FallbackFleet, fleet.SourceFallback)
		return
	}

	p.mu.Lock()
	wasDisconnected := !p.connected
	p.connected = true
	p.lastErr = nil
	p.mu.Unlock()
	if wasDisconnected {
		log.Printf("telemetry feed connected: %s", p.cfg.Telemetry.URL)
		p.emitter.EmitFeedConnected()
	}

	p.apply(records, fleet.SourceLive)
}

func (p *Poller) apply(records []fleet.Telemetry, source fleet.Source) {
	admitted := make([]fleet.Telemetry, 0, len(records))
	for _, rec := range records {
		if !p.tracked[rec.RobotID] {
			continue
		}
		admitted = append(admitted, rec)
	}

	diff := p.registry.ApplyTelemetry(admitted, source)

	for _, id := range diff.Added {
		rb, _ := p.registry.Robot(id)
		p.emitter.EmitRobotAdded(id, rb.Status, rb.Health)
	}
	for _, id := range diff.Removed {
		p.emitter.EmitRobotRemoved(id)
	}
	for _, ch := range diff.Changed {
		p.emitter.EmitRobotStatusChanged(ch)
	}
	p.emitter.EmitTelemetryRefreshed(source, len(admitted))
}

// fetch retrieves and decodes the health feed. Records missing an id or a
// health reading are dropped; the rest of the batch is still admitted.
func (p *Poller) fetch(ctx context.Context) ([]fleet.Telemetry, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.cfg.Telemetry.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health feed returned %d", resp.StatusCode)
	}

	var raw []struct {
		RobotID *string  `json:"robotId"`
		Health  *float64 `json:"health"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode health feed: %w", err)
	}

	records := make([]fleet.Telemetry, 0, len(raw))
	for _, r := range raw {
		if r.RobotID == nil || *r.RobotID == "" || r.Health == nil {
			p.mu.Lock()
			p.dropped++
			p.mu.Unlock()
			continue
		}
		records = append(records, fleet.Telemetry{RobotID: *r.RobotID, Health: *r.Health})
	}
	return records, nil
}

// IsConnected returns whether the last refresh reached the live feed.
func (p *Poller) IsConnected() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

// LastError returns the last transport error, if any.
func (p *Poller) LastError() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

// DroppedRecords returns how many malformed feed records have been dropped.
func (p *Poller) DroppedRecords() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dropped
}
