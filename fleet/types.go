package fleet

import (
	"time"

	"fleetedge/grid"
)

// OperatingStatus is a robot's derived operating state.
type OperatingStatus string

const (
	StatusActive      OperatingStatus = "active"
	StatusIdle        OperatingStatus = "idle"
	StatusMaintenance OperatingStatus = "maintenance"
)

// StatusForHealth derives the operating status from a health percentage.
// health > 80 is active, health > 50 is idle, anything else needs maintenance.
func StatusForHealth(health float64) OperatingStatus {
	switch {
	case health > 80:
		return StatusActive
	case health > 50:
		return StatusIdle
	default:
		return StatusMaintenance
	}
}

// Phase is a robot's execution phase in the simulation.
type Phase string

const (
	PhasePlanning           Phase = "planning"
	PhaseExecuting          Phase = "executing"
	PhaseIdleHover          Phase = "idle_hover"
	PhaseMaintenanceFlicker Phase = "maintenance_flicker"
)

// Source identifies where a telemetry refresh came from.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// HazardLevel is the coarse classification of a zone's environmental readings.
type HazardLevel string

const (
	LevelNominal HazardLevel = "nominal"
	LevelCaution HazardLevel = "caution"
	LevelDanger  HazardLevel = "danger"
)

// Robot is one tracked warehouse robot. Records are owned by the Registry;
// all other components operate on snapshot copies.
type Robot struct {
	ID       string          `json:"id"`
	Status   OperatingStatus `json:"status"`
	Health   float64         `json:"health"`
	Phase    Phase           `json:"phase"`
	Path     grid.Path       `json:"path,omitempty"`
	Goal     grid.Coordinate `json:"goal"`
	Progress float64         `json:"progress"`
	Position grid.Position   `json:"position"`

	// Visual signals for the renderer: idle bob height and maintenance
	// pulse intensity. Zero outside their phases.
	HoverOffset float64 `json:"hoverOffset"`
	Flicker     float64 `json:"flicker"`

	MissionID string `json:"missionId,omitempty"`
}

// HazardZone is one environmental sensor zone. The zone set is replaced
// wholesale on every sensor poll.
type HazardZone struct {
	ID          string        `json:"zoneId"`
	Position    grid.Position `json:"position"`
	Temperature float64       `json:"temperature"`
	Vibration   float64       `json:"vibration"`
	Level       HazardLevel   `json:"level"`
}

// Snapshot is a consistent read-only view of the whole fleet.
type Snapshot struct {
	Robots  []Robot      `json:"robots"`
	Hazards []HazardZone `json:"hazards"`
	Source  Source       `json:"source"`
	Taken   time.Time    `json:"taken"`
}

// Telemetry is one robot health record from the external feed.
type Telemetry struct {
	RobotID string  `json:"robotId"`
	Health  float64 `json:"health"`
}

// StatusChange records a robot status transition during a telemetry refresh.
type StatusChange struct {
	RobotID string
	Old     OperatingStatus
	New     OperatingStatus
	Health  float64
}

// TelemetryDiff reports what a telemetry refresh changed in the registry.
type TelemetryDiff struct {
	Added   []string
	Removed []string
	Changed []StatusChange
}

// LevelChange records a zone hazard level transition during a sensor poll.
type LevelChange struct {
	ZoneID      string
	Old         HazardLevel
	New         HazardLevel
	Temperature float64
	Vibration   float64
}

// Motion is the per-tick update the executor writes for one robot.
// MissionID must match the robot's current mission so a tick computed
// against an already-replaced path is discarded.
type Motion struct {
	MissionID   string
	Progress    float64
	Position    grid.Position
	Phase       Phase
	HoverOffset float64
	Flicker     float64
}
