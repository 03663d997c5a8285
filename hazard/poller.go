package hazard

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

// Poller periodically fetches zone sensor readings and replaces the
// registry's hazard zone set. A failed poll retains the previous zone set
// until the next scheduled attempt.
type Poller struct {
	mu       sync.RWMutex
	registry *fleet.Registry
	cfg      *config.Config
	emitter  EventEmitter
	client   http.Client

	dropped int64

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewPoller creates a hazard poller.
func NewPoller(registry *fleet.Registry, cfg *config.Config, emitter EventEmitter) *Poller {
	return &Poller{
		registry: registry,
		cfg:      cfg,
		emitter:  emitter,
		client:   http.Client{Timeout: 8 * time.Second},
		stopChan: make(chan struct{}),
	}
}

// Start begins the poll loop with an immediate first poll.
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

	rate := p.cfg.Hazard.PollRate
	if rate <= 0 {
		rate = 15 * time.Second
	}
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	p.Poll()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.Poll()
		}
	}
}

// Poll performs one sensor fetch and applies the readings.
func (p *Poller) Poll() {
	ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer cancel()

	readings, err := p.fetch(ctx)
	if err != nil {
		log.Printf("hazard feed: %v (keeping previous zones)", err)
		return
	}
	p.Ingest(readings)
}

// Ingest classifies a batch of readings and swaps them into the registry as
// the new zone set. Shared by the HTTP poll path and the broker subscriber.
func (p *Poller) Ingest(readings []Reading) {
	zones, dropped := Zones(readings)
	if dropped > 0 {
		p.mu.Lock()
		p.dropped += int64(dropped)
		p.mu.Unlock()
		log.Printf("hazard feed: dropped %d readings for unmapped zones", dropped)
	}

	changes := p.registry.ReplaceHazards(zones)
	for _, ch := range changes {
		p.emitter.EmitHazardLevelChanged(ch)
	}
	p.emitter.EmitHazardRefreshed(len(zones))
}

func (p *Poller) fetch(ctx context.Context) ([]Reading, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", p.cfg.Hazard.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zone feed returned %d", resp.StatusCode)
	}

	var readings []Reading
	if err := json.NewDecoder(resp.Body).Decode(&readings); err != nil {
		return nil, fmt.Errorf("decode zone feed: %w", err)
	}
	return readings, nil
}

// DroppedReadings returns how many readings were dropped for unmapped zones.
func (p *Poller) DroppedReadings() int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dropped
}
