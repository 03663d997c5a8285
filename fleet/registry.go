package fleet

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"fleetedge/grid"
)

// Registry is the single owner of mutable fleet state: robots and hazard
// zones. Telemetry refreshes, path assignment, and the simulation tick all
// write through it; consumers read consistent copies via Snapshot.
type Registry struct {
	mu     sync.RWMutex
	robots map[string]*Robot
	zones  map[string]HazardZone
	source Source
}

// NewRegistry creates an empty fleet registry.
func NewRegistry() *Registry {
	return &Registry{
		robots: make(map[string]*Robot),
		zones:  make(map[string]HazardZone),
		source: SourceLive,
	}
}

// ApplyTelemetry replaces health and status for the reported robot set in one
// atomic step. Robots reported for the first time are created in the planning
// phase; robots missing from a live refresh are removed. Fallback refreshes
// never remove robots, so a feed outage keeps the last known fleet shape.
func (r *Registry) ApplyTelemetry(records []Telemetry, source Source) TelemetryDiff {
	r.mu.Lock()
	defer r.mu.Unlock()

	var diff TelemetryDiff
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		seen[rec.RobotID] = true
		status := StatusForHealth(rec.Health)

		rb, ok := r.robots[rec.RobotID]
		if !ok {
			r.robots[rec.RobotID] = &Robot{
				ID:     rec.RobotID,
				Status: status,
				Health: rec.Health,
				Phase:  PhasePlanning,
			}
			diff.Added = append(diff.Added, rec.RobotID)
			continue
		}

		if rb.Status != status {
			diff.Changed = append(diff.Changed, StatusChange{
				RobotID: rec.RobotID,
				Old:     rb.Status,
				New:     status,
				Health:  rec.Health,
			})
		}
		rb.Status = status
		rb.Health = rec.Health
	}

	if source == SourceLive {
		for id := range r.robots {
			if !seen[id] {
				delete(r.robots, id)
				diff.Removed = append(diff.Removed, id)
			}
		}
	}

	r.source = source
	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	return diff
}

// SetPath assigns a freshly planned path to a robot. Progress resets to zero,
// the robot enters the executing phase, and its position snaps to the start
// cell. pos must be the world position of path[0].
func (r *Registry) SetPath(id string, path grid.Path, missionID string, pos grid.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rb, ok := r.robots[id]
	if !ok {
		return fmt.Errorf("robot %s not in registry", id)
	}
	rb.Path = path
	rb.Goal = path[len(path)-1]
	rb.MissionID = missionID
	rb.Progress = 0
	rb.Phase = PhaseExecuting
	rb.Position = pos
	rb.HoverOffset = 0
	rb.Flicker = 0
	return nil
}

// MarkPlanning flags a robot as waiting for a path.
func (r *Registry) MarkPlanning(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rb, ok := r.robots[id]; ok {
		rb.Phase = PhasePlanning
	}
}

// UpdateMotion applies one simulation tick's motion fields for a robot.
// Only progress, position, phase, and the visual signals are touched, so the
// tick loop never contends with telemetry refreshes over the full record.
// Progress is monotonic: a stale smaller value is ignored.
func (r *Registry) UpdateMotion(id string, mo Motion) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rb, ok := r.robots[id]
	if !ok {
		return
	}
	if mo.MissionID != rb.MissionID {
		return
	}
	if mo.Progress >= rb.Progress {
		rb.Progress = mo.Progress
		rb.Position = mo.Position
	}
	rb.Phase = mo.Phase
	rb.HoverOffset = mo.HoverOffset
	rb.Flicker = mo.Flicker
}

// Robot returns a copy of one robot record.
func (r *Registry) Robot(id string) (Robot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rb, ok := r.robots[id]
	if !ok {
		return Robot{}, false
	}
	return cloneRobot(rb), true
}

// ReplaceHazards swaps the entire hazard zone set in one atomic step and
// returns the level transitions the swap caused. Zones not previously known
// count as transitions from nominal.
func (r *Registry) ReplaceHazards(zones []HazardZone) []LevelChange {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changes []LevelChange
	next := make(map[string]HazardZone, len(zones))
	for _, z := range zones {
		next[z.ID] = z
		old := LevelNominal
		if prev, ok := r.zones[z.ID]; ok {
			old = prev.Level
		}
		if old != z.Level {
			changes = append(changes, LevelChange{
				ZoneID:      z.ID,
				Old:         old,
				New:         z.Level,
				Temperature: z.Temperature,
				Vibration:   z.Vibration,
			})
		}
	}
	r.zones = next
	return changes
}

// Snapshot returns a deep-copied, consistent view of all robots and hazard
// zones. Mutating the returned value never affects the registry.
func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{
		Robots:  make([]Robot, 0, len(r.robots)),
		Hazards: make([]HazardZone, 0, len(r.zones)),
		Source:  r.source,
		Taken:   time.Now(),
	}
	for _, rb := range r.robots {
		snap.Robots = append(snap.Robots, cloneRobot(rb))
	}
	for _, z := range r.zones {
		snap.Hazards = append(snap.Hazards, z)
	}
	sort.Slice(snap.Robots, func(i, j int) bool { return snap.Robots[i].ID < snap.Robots[j].ID })
	sort.Slice(snap.Hazards, func(i, j int) bool { return snap.Hazards[i].ID < snap.Hazards[j].ID })
	return snap
}

func cloneRobot(rb *Robot) Robot {
	cp := *rb
	if rb.Path != nil {
		cp.Path = make(grid.Path, len(rb.Path))
		copy(cp.Path, rb.Path)
	}
	return cp
}
