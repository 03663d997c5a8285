package engine

import "fleetedge/fleet"

// telemetryEmitter adapts the engine's EventBus to the telemetry.EventEmitter interface.
type telemetryEmitter struct {
	bus *EventBus
}

func (e *telemetryEmitter) EmitTelemetryRefreshed(source fleet.Source, robots int) {
	e.bus.EmitPayload(EventTelemetryRefreshed, TelemetryRefreshedEvent{
		Source: source, Robots: robots,
	})
}

func (e *telemetryEmitter) EmitFeedConnected() {
	e.bus.EmitPayload(EventFeedConnected, FeedStateEvent{Connected: true})
}

func (e *telemetryEmitter) EmitFeedDisconnected(err error) {
	errStr := ""
	if err != nil {
		errStr = err.Error()
	}
	e.bus.EmitPayload(EventFeedDisconnected, FeedStateEvent{Connected: false, Error: errStr})
}

func (e *telemetryEmitter) EmitRobotAdded(robotID string, status fleet.OperatingStatus, health float64) {
	e.bus.EmitPayload(EventRobotAdded, RobotAddedEvent{
		RobotID: robotID, Status: status, Health: health,
	})
}

func (e *telemetryEmitter) EmitRobotRemoved(robotID string) {
	e.bus.EmitPayload(EventRobotRemoved, RobotRemovedEvent{RobotID: robotID})
}

func (e *telemetryEmitter) EmitRobotStatusChanged(change fleet.StatusChange) {
	e.bus.EmitPayload(EventRobotStatusChanged, RobotStatusChangedEvent{
		RobotID: change.RobotID, OldStatus: change.Old, NewStatus: change.New, Health: change.Health,
	})
}

// hazardEmitter adapts the engine's EventBus to the hazard.EventEmitter interface.
type hazardEmitter struct {
	bus *EventBus
}

func (e *hazardEmitter) EmitHazardRefreshed(zones int) {
	e.bus.EmitPayload(EventHazardRefreshed, HazardRefreshedEvent{Zones: zones})
}

func (e *hazardEmitter) EmitHazardLevelChanged(change fleet.LevelChange) {
	e.bus.EmitPayload(EventHazardLevelChanged, HazardLevelChangedEvent{
		ZoneID: change.ZoneID, OldLevel: change.Old, NewLevel: change.New,
		Temperature: change.Temperature, Vibration: change.Vibration,
	})
}

// simEmitter adapts the engine's EventBus to the sim.EventEmitter interface.
type simEmitter struct {
	bus *EventBus
}

func (e *simEmitter) EmitPathCompleted(robotID, missionID string) {
	e.bus.EmitPayload(EventPathCompleted, PathCompletedEvent{
		RobotID: robotID, MissionID: missionID,
	})
}

func (e *simEmitter) EmitFleetTicked(tick uint64) {
	e.bus.EmitPayload(EventFleetTicked, FleetTickedEvent{Tick: tick})
}
