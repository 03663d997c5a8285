package engine

import (
	"fleetedge/config"
	"fleetedge/fleet"
	"fleetedge/hazard"
	"fleetedge/sim"
	"fleetedge/store"
	"fleetedge/telemetry"
)

// LogFunc is the logging callback signature.
type LogFunc func(format string, args ...interface{})

// Engine centralizes all fleet logic and orchestrates subsystems: the
// telemetry and hazard pollers feed the registry, the executor advances it,
// and the wiring layer reacts to the resulting events.
type Engine struct {
	cfg        *config.Config
	configPath string
	db         *store.DB
	logFn      LogFunc
	debugFn    LogFunc

	registry  *fleet.Registry
	telemetry *telemetry.Poller
	hazards   *hazard.Poller
	executor  *sim.Executor

	Events   *EventBus
	stopChan chan struct{}
}

// Config holds the parameters needed to create an Engine.
type Config struct {
	AppConfig  *config.Config
	ConfigPath string
	DB         *store.DB
	LogFunc    LogFunc
	Debug      bool
}

// New creates a new Engine. Call Start() to initialize and wire subsystems.
func New(c Config) *Engine {
	logFn := c.LogFunc
	if logFn == nil {
		logFn = func(string, ...interface{}) {}
	}
	debugFn := LogFunc(func(string, ...interface{}) {})
	if c.Debug {
		debugFn = logFn
	}
	return &Engine{
		cfg:        c.AppConfig,
		configPath: c.ConfigPath,
		db:         c.DB,
		logFn:      logFn,
		debugFn:    debugFn,
		registry:   fleet.NewRegistry(),
		Events:     NewEventBus(),
		stopChan:   make(chan struct{}),
	}
}

// Start creates all subsystems, wires event handlers, and begins polling
// and ticking.
func (e *Engine) Start() {
	e.telemetry = telemetry.NewPoller(e.registry, e.cfg, &telemetryEmitter{bus: e.Events})
	e.hazards = hazard.NewPoller(e.registry, e.cfg, &hazardEmitter{bus: e.Events})
	e.executor = sim.NewExecutor(e.registry, e.cfg, &simEmitter{bus: e.Events})

	e.wireEventHandlers()

	e.telemetry.Start()
	e.hazards.Start()
	e.executor.Start()

	e.logFn("Engine started: namespace=%s grid=%dx%d routes=%d",
		e.cfg.Namespace, e.cfg.Grid.Size, e.cfg.Grid.Size, len(e.cfg.Routes))
}

// Stop shuts down all subsystems gracefully.
func (e *Engine) Stop() {
	select {
	case <-e.stopChan:
	default:
		close(e.stopChan)
	}

	if e.executor != nil {
		e.executor.Stop()
	}
	if e.telemetry != nil {
		e.telemetry.Stop()
	}
	if e.hazards != nil {
		e.hazards.Stop()
	}

	e.logFn("Engine stopped")
}

// DB returns the database handle.
func (e *Engine) DB() *store.DB { return e.db }

// AppConfig returns the app config.
func (e *Engine) AppConfig() *config.Config { return e.cfg }

// ConfigPath returns the config file path.
func (e *Engine) ConfigPath() string { return e.configPath }

// Registry returns the fleet state registry.
func (e *Engine) Registry() *fleet.Registry { return e.registry }

// TelemetryPoller returns the robot health feed poller.
func (e *Engine) TelemetryPoller() *telemetry.Poller { return e.telemetry }

// HazardPoller returns the zone sensor poller.
func (e *Engine) HazardPoller() *hazard.Poller { return e.hazards }

// Executor returns the fleet executor.
func (e *Engine) Executor() *sim.Executor { return e.executor }
