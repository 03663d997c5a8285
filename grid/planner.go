package grid

import (
	"errors"
	"fmt"
)

// Planner errors. Callers are expected to match with errors.Is and leave
// the affected robot in its last known state.
var (
	ErrInvalidCoordinate = errors.New("coordinate out of grid bounds")
	ErrNoPath            = errors.New("no path to goal")
)

// Path is an ordered sequence of Manhattan-adjacent cells from start to goal.
type Path []Coordinate

// Blocked marks cells the planner must route around. A nil Blocked is an
// open grid. The floor currently has no obstacles; shelving layouts plug in
// here without changing the Plan signature.
type Blocked map[Coordinate]bool

// neighborSteps is the fixed expansion order: +x, -x, +y, -y. Among equal
// shortest paths BFS then always returns the same one, which keeps tests
// reproducible and robot routes visually stable across re-plans.
var neighborSteps = [4]Coordinate{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Plan returns the shortest path from start to goal over the 4-connected
// grid using breadth-first search. All hops cost the same, so BFS is exact.
func (m Model) Plan(start, goal Coordinate, blocked Blocked) (Path, error) {
	if !m.InBounds(start) {
		return nil, fmt.Errorf("start %v: %w", start, ErrInvalidCoordinate)
	}
	if !m.InBounds(goal) {
		return nil, fmt.Errorf("goal %v: %w", goal, ErrInvalidCoordinate)
	}
	if blocked[start] {
		return nil, fmt.Errorf("start %v is blocked: %w", start, ErrNoPath)
	}
	if start == goal {
		return Path{start}, nil
	}

	cameFrom := make(map[Coordinate]Coordinate, m.Size*m.Size)
	cameFrom[start] = start
	queue := []Coordinate{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == goal {
			return reconstruct(cameFrom, start, goal), nil
		}
		for _, step := range neighborSteps {
			next := Coordinate{X: cur.X + step.X, Y: cur.Y + step.Y}
			if !m.InBounds(next) || blocked[next] {
				continue
			}
			if _, seen := cameFrom[next]; seen {
				continue
			}
			cameFrom[next] = cur
			queue = append(queue, next)
		}
	}

	return nil, fmt.Errorf("%v -> %v: %w", start, goal, ErrNoPath)
}

func reconstruct(cameFrom map[Coordinate]Coordinate, start, goal Coordinate) Path {
	var rev Path
	for cur := goal; cur != start; cur = cameFrom[cur] {
		rev = append(rev, cur)
	}
	rev = append(rev, start)

	path := make(Path, len(rev))
	for i, c := range rev {
		path[len(rev)-1-i] = c
	}
	return path
}

// Valid reports whether p is a well-formed path: non-empty and each
// consecutive pair exactly one orthogonal step apart.
func (p Path) Valid() bool {
	if len(p) == 0 {
		return false
	}
	for i := 1; i < len(p); i++ {
		dx := p[i].X - p[i-1].X
		dy := p[i].Y - p[i-1].Y
		if abs(dx)+abs(dy) != 1 {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
