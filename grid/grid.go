package grid

import "math"

// Coordinate is a discrete cell on the warehouse planning grid.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Position is a continuous point on the warehouse floor plane.
// X runs along the grid's X axis, Z along the grid's Y axis.
type Position struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Model converts between grid cells and floor coordinates.
// The grid is Size×Size cells centered on the floor origin, with
// Spacing floor units between adjacent cells.
type Model struct {
	Size    int
	Spacing float64
}

// DefaultModel matches the warehouse floor layout: 20×20 cells, 4 units apart.
var DefaultModel = Model{Size: 20, Spacing: 4}

// InBounds reports whether c lies inside the grid domain.
func (m Model) InBounds(c Coordinate) bool {
	return c.X >= 0 && c.X < m.Size && c.Y >= 0 && c.Y < m.Size
}

// ToWorld returns the floor position of the center of cell c.
func (m Model) ToWorld(c Coordinate) Position {
	half := float64(m.Size) / 2
	return Position{
		X: (float64(c.X) - half) * m.Spacing,
		Z: (float64(c.Y) - half) * m.Spacing,
	}
}

// ToGrid returns the grid cell containing floor position p, clamped
// to the grid domain. Inverse of ToWorld for every in-bounds cell.
func (m Model) ToGrid(p Position) Coordinate {
	half := float64(m.Size) / 2
	return Coordinate{
		X: m.clamp(int(math.Round(p.X/m.Spacing + half))),
		Y: m.clamp(int(math.Round(p.Z/m.Spacing + half))),
	}
}

func (m Model) clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v >= m.Size {
		return m.Size - 1
	}
	return v
}
