package engine

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"fleetedge/grid"
)

// wireEventHandlers sets up the fleet event chain:
// RobotAdded → plan configured route → PathAssigned
// PathCompleted → close out the mission
// RobotStatusChanged / HazardLevelChanged → history log
func (e *Engine) wireEventHandlers() {
	// New robot → dispatch it on its configured route
	e.Events.SubscribeTypes(func(evt Event) {
		added := evt.Payload.(RobotAddedEvent)
		e.handleRobotAdded(added)
	}, EventRobotAdded)

	// Robot gone → retire its mission
	e.Events.SubscribeTypes(func(evt Event) {
		removed := evt.Payload.(RobotRemovedEvent)
		if err := e.db.SupersedeActiveMissions(removed.RobotID); err != nil {
			log.Printf("supersede missions for removed robot %s: %v", removed.RobotID, err)
		}
	}, EventRobotRemoved)

	// Trip finished → close out the mission record
	e.Events.SubscribeTypes(func(evt Event) {
		completed := evt.Payload.(PathCompletedEvent)
		e.debugFn("path completed: robot=%s mission=%s", completed.RobotID, completed.MissionID)
		if err := e.db.CompleteMission(completed.MissionID); err != nil {
			log.Printf("complete mission %s: %v", completed.MissionID, err)
		}
	}, EventPathCompleted)

	// Status transitions → history log
	e.Events.SubscribeTypes(func(evt Event) {
		change := evt.Payload.(RobotStatusChangedEvent)
		e.logFn("robot %s: %s -> %s (health %.1f)", change.RobotID, change.OldStatus, change.NewStatus, change.Health)
		if err := e.db.InsertStatusEntry(change.RobotID, string(change.OldStatus), string(change.NewStatus), change.Health); err != nil {
			log.Printf("log status change for %s: %v", change.RobotID, err)
		}
	}, EventRobotStatusChanged)

	// Hazard transitions → history log
	e.Events.SubscribeTypes(func(evt Event) {
		change := evt.Payload.(HazardLevelChangedEvent)
		e.logFn("zone %s: %s -> %s (temp %.1f vib %.2f)", change.ZoneID, change.OldLevel, change.NewLevel,
			change.Temperature, change.Vibration)
		if err := e.db.InsertHazardEntry(change.ZoneID, string(change.OldLevel), string(change.NewLevel),
			change.Temperature, change.Vibration); err != nil {
			log.Printf("log hazard change for zone %s: %v", change.ZoneID, err)
		}
	}, EventHazardLevelChanged)
}

func (e *Engine) handleRobotAdded(added RobotAddedEvent) {
	rt, ok := e.cfg.Route(added.RobotID)
	if !ok {
		// Untracked ids are filtered upstream; a robot without a route
		// simply stays in the planning phase.
		e.debugFn("robot %s has no configured route", added.RobotID)
		return
	}
	if err := e.assignRoute(added.RobotID, rt.Start, rt.Goal); err != nil {
		log.Printf("dispatch robot %s on configured route: %v", added.RobotID, err)
	}
}

// AssignGoal re-plans a robot's path from its current cell to a new goal.
// The previous mission, if any, is superseded.
func (e *Engine) AssignGoal(robotID string, goal grid.Coordinate) error {
	rb, ok := e.registry.Robot(robotID)
	if !ok {
		return fmt.Errorf("robot %s not in fleet", robotID)
	}

	model := e.cfg.GridModel()
	start := model.ToGrid(rb.Position)
	if len(rb.Path) == 0 {
		// Never dispatched: the configured route start is the true
		// parking cell, not the zero-value position.
		if rt, ok := e.cfg.Route(robotID); ok {
			start = rt.Start
		}
	}
	return e.assignRoute(robotID, start, goal)
}

// assignRoute plans start→goal and hands the path to the robot. On a plan
// failure the robot keeps its previous state and a PlanFailed event fires.
func (e *Engine) assignRoute(robotID string, start, goal grid.Coordinate) error {
	model := e.cfg.GridModel()

	path, err := model.Plan(start, goal, nil)
	if err != nil {
		e.Events.EmitPayload(EventPlanFailed, PlanFailedEvent{
			RobotID: robotID, Goal: goal, Error: err.Error(),
		})
		return fmt.Errorf("plan %v -> %v for %s: %w", start, goal, robotID, err)
	}

	missionID := uuid.New().String()
	if err := e.db.SupersedeActiveMissions(robotID); err != nil {
		log.Printf("supersede missions for %s: %v", robotID, err)
	}
	if _, err := e.db.CreateMission(missionID, robotID, start.X, start.Y, goal.X, goal.Y, len(path)); err != nil {
		log.Printf("create mission for %s: %v", robotID, err)
	}

	if err := e.registry.SetPath(robotID, path, missionID, model.ToWorld(start)); err != nil {
		return err
	}

	e.debugFn("path assigned: robot=%s mission=%s cells=%d goal=%v", robotID, missionID, len(path), goal)
	e.Events.EmitPayload(EventPathAssigned, PathAssignedEvent{
		RobotID: robotID, MissionID: missionID, Start: start, Goal: goal, PathLen: len(path),
	})
	return nil
}
