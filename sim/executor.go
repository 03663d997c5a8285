package sim

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"fleetedge/config"
	"fleetedge/fleet"
	"fleetedge/grid"
)

// Visual signal tuning. The renderer scales these however it likes; the
// executor just provides smooth periodic signals.
const (
	hoverAmplitude = 0.35 // floor units of idle bob
	hoverPeriod    = 2 * time.Second
	flickerPeriod  = 600 * time.Millisecond
)

// EventEmitter is the interface the sim package uses to emit events.
type EventEmitter interface {
	EmitPathCompleted(robotID, missionID string)
	EmitFleetTicked(tick uint64)
}

// Executor advances every robot along its assigned path on a fixed tick.
// It is the simulation clock of the fleet engine: decoupled from any
// renderer, driven either by its own ticker (Start) or directly by tests
// and virtual clocks (Advance).
type Executor struct {
	registry *fleet.Registry
	model    grid.Model
	emitter  EventEmitter
	tick     time.Duration
	stepRate float64 // progress per second

	elapsed time.Duration // accumulated sim time for the visual signals
	ticks   atomic.Uint64

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewExecutor creates a fleet executor.
func NewExecutor(registry *fleet.Registry, cfg *config.Config, emitter EventEmitter) *Executor {
	tick := cfg.Sim.Tick
	if tick <= 0 {
		tick = 50 * time.Millisecond
	}
	stepRate := cfg.Sim.StepRate
	if stepRate <= 0 {
		stepRate = 0.05
	}
	return &Executor{
		registry: registry,
		model:    cfg.GridModel(),
		emitter:  emitter,
		tick:     tick,
		stepRate: stepRate,
		stopChan: make(chan struct{}),
	}
}

// Start begins the tick loop.
func (e *Executor) Start() {
	e.wg.Add(1)
	go e.tickLoop()
}

// Stop stops the tick loop. No registry writes occur after Stop returns.
func (e *Executor) Stop() {
	select {
	case <-e.stopChan:
	default:
		close(e.stopChan)
	}
	e.wg.Wait()
}

// Ticks returns how many simulation ticks have run.
func (e *Executor) Ticks() uint64 {
	return e.ticks.Load()
}

func (e *Executor) tickLoop() {
	defer e.wg.Done()
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			e.Advance(e.tick)
		}
	}
}

// Advance runs one simulation step of length dt. Exposed so tests drive the
// clock deterministically without a ticker.
func (e *Executor) Advance(dt time.Duration) {
	e.elapsed += dt

	snap := e.registry.Snapshot()
	for _, rb := range snap.Robots {
		e.step(rb, dt)
	}

	e.emitter.EmitFleetTicked(e.ticks.Add(1))
}

// step derives one robot's next motion state. Only motion fields are
// written back, so ticks never contend with telemetry refreshes.
func (e *Executor) step(rb fleet.Robot, dt time.Duration) {
	switch {
	case rb.Status == fleet.StatusMaintenance:
		// Position frozen; pulse the flicker signal.
		e.registry.UpdateMotion(rb.ID, fleet.Motion{
			MissionID: rb.MissionID,
			Progress:  rb.Progress,
			Position:  rb.Position,
			Phase:     fleet.PhaseMaintenanceFlicker,
			Flicker:   pulse(e.elapsed, flickerPeriod),
		})

	case len(rb.Path) > 0 && rb.Progress < 1:
		progress := rb.Progress + e.stepRate*dt.Seconds()
		if progress > 1 || len(rb.Path) == 1 {
			progress = 1
		}

		index := int(math.Floor(progress * float64(len(rb.Path)-1)))
		if index > len(rb.Path)-1 {
			index = len(rb.Path) - 1
		}
		mo := fleet.Motion{
			MissionID: rb.MissionID,
			Progress:  progress,
			Position:  e.model.ToWorld(rb.Path[index]),
			Phase:     fleet.PhaseExecuting,
		}
		if progress >= 1 {
			mo.Position = e.model.ToWorld(rb.Path[len(rb.Path)-1])
			mo.Phase = fleet.PhaseIdleHover
		}
		e.registry.UpdateMotion(rb.ID, mo)

		if progress >= 1 {
			e.emitter.EmitPathCompleted(rb.ID, rb.MissionID)
		}

	case rb.Phase == fleet.PhasePlanning:
		// Waiting for a path; nothing to advance.

	default:
		// Idle, or trip complete: hold position and bob in place.
		e.registry.UpdateMotion(rb.ID, fleet.Motion{
			MissionID:   rb.MissionID,
			Progress:    rb.Progress,
			Position:    rb.Position,
			Phase:       fleet.PhaseIdleHover,
			HoverOffset: hoverAmplitude * wave(e.elapsed, hoverPeriod),
		})
	}
}

// wave is a [-1,1] sine of the elapsed sim time.
func wave(elapsed, period time.Duration) float64 {
	return math.Sin(2 * math.Pi * elapsed.Seconds() / period.Seconds())
}

// pulse is a [0,1] raised sine of the elapsed sim time.
func pulse(elapsed, period time.Duration) float64 {
	return 0.5 + 0.5*wave(elapsed, period)
}
