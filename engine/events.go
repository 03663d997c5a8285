package engine

import (
	"time"

	"fleetedge/fleet"
	"fleetedge/grid"
)

// EventType identifies the kind of event emitted by the Engine.
type EventType int

const (
	// Telemetry events
	EventTelemetryRefreshed EventType = iota + 1
	EventFeedConnected
	EventFeedDisconnected

	// Robot events
	EventRobotAdded
	EventRobotRemoved
	EventRobotStatusChanged

	// Mission events
	EventPathAssigned
	EventPathCompleted
	EventPlanFailed

	// Hazard events
	EventHazardRefreshed
	EventHazardLevelChanged

	// Simulation events
	EventFleetTicked
)

// Event is the envelope emitted by the Engine's EventBus.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Payload   interface{}
}

// TelemetryRefreshedEvent is emitted after every telemetry apply.
type TelemetryRefreshedEvent struct {
	Source fleet.Source `json:"source"`
	Robots int          `json:"robots"`
}

// FeedStateEvent is emitted when the telemetry feed connection state changes.
type FeedStateEvent struct {
	Connected bool   `json:"connected"`
	Error     string `json:"error,omitempty"`
}

// RobotAddedEvent is emitted when a robot is first reported by the feed.
type RobotAddedEvent struct {
	RobotID string                `json:"robot_id"`
	Status  fleet.OperatingStatus `json:"status"`
	Health  float64               `json:"health"`
}

// RobotRemovedEvent is emitted when a live refresh stops reporting a robot.
type RobotRemovedEvent struct {
	RobotID string `json:"robot_id"`
}

// RobotStatusChangedEvent is emitted on operating status transitions.
type RobotStatusChangedEvent struct {
	RobotID   string                `json:"robot_id"`
	OldStatus fleet.OperatingStatus `json:"old_status"`
	NewStatus fleet.OperatingStatus `json:"new_status"`
	Health    float64               `json:"health"`
}

// PathAssignedEvent is emitted when a robot receives a freshly planned path.
type PathAssignedEvent struct {
	RobotID   string          `json:"robot_id"`
	MissionID string          `json:"mission_id"`
	Start     grid.Coordinate `json:"start"`
	Goal      grid.Coordinate `json:"goal"`
	PathLen   int             `json:"path_len"`
}

// PathCompletedEvent is emitted when a robot finishes its path.
type PathCompletedEvent struct {
	RobotID   string `json:"robot_id"`
	MissionID string `json:"mission_id"`
}

// PlanFailedEvent is emitted when no path to a requested goal exists.
type PlanFailedEvent struct {
	RobotID string          `json:"robot_id"`
	Goal    grid.Coordinate `json:"goal"`
	Error   string          `json:"error"`
}

// HazardRefreshedEvent is emitted after every hazard zone apply.
type HazardRefreshedEvent struct {
	Zones int `json:"zones"`
}

// HazardLevelChangedEvent is emitted on zone hazard level transitions.
type HazardLevelChangedEvent struct {
	ZoneID      string            `json:"zone_id"`
	OldLevel    fleet.HazardLevel `json:"old_level"`
	NewLevel    fleet.HazardLevel `json:"new_level"`
	Temperature float64           `json:"temperature"`
	Vibration   float64           `json:"vibration"`
}

// FleetTickedEvent is emitted on every simulation tick.
type FleetTickedEvent struct {
	Tick uint64 `json:"tick"`
}
