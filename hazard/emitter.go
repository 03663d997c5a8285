package hazard

import "fleetedge/fleet"

// EventEmitter is the interface the hazard package uses to emit events.
type EventEmitter interface {
	EmitHazardRefreshed(zones int)
	EmitHazardLevelChanged(change fleet.LevelChange)
}
