package telemetry

import "fleetedge/fleet"

// EventEmitter is the interface the telemetry package uses to emit events.
type EventEmitter interface {
	EmitTelemetryRefreshed(source fleet.Source, robots int)
	EmitFeedConnected()
	EmitFeedDisconnected(err error)
	EmitRobotAdded(robotID string, status fleet.OperatingStatus, health float64)
	EmitRobotRemoved(robotID string)
	EmitRobotStatusChanged(change fleet.StatusChange)
}
