package sim

// Position is a point on the simulation grid. Movement is cell-by-cell, so
// integer coordinates are sufficient; distances are Manhattan because the
// grid is 4-connected.
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// DistanceTo returns the Manhattan distance to other, in grid units.
func (p Position) DistanceTo(other Position) float64 {
	return float64(abs(p.X-other.X) + abs(p.Y-other.Y))
}

// Neighbors returns the valid 4-connected neighboring positions, clamped to
// the grid bounds. Order is fixed (+x, -x, +y, -y) so random picks over the
// result are reproducible.
func (p Position) Neighbors(gridWidth, gridHeight int) []Position {
	candidates := []Position{
		{p.X + 1, p.Y},
		{p.X - 1, p.Y},
		{p.X, p.Y + 1},
		{p.X, p.Y - 1},
	}
	valid := candidates[:0]
	for _, c := range candidates {
		if c.X >= 0 && c.X < gridWidth && c.Y >= 0 && c.Y < gridHeight {
			valid = append(valid, c)
		}
	}
	return valid
}

// StepToward returns the next cell on a greedy x-then-y path to target.
// Returns p unchanged when already there.
func (p Position) StepToward(target Position) Position {
	if dx := target.X - p.X; dx != 0 {
		if dx > 0 {
			return Position{p.X + 1, p.Y}
		}
		return Position{p.X - 1, p.Y}
	}
	if dy := target.Y - p.Y; dy != 0 {
		if dy > 0 {
			return Position{p.X, p.Y + 1}
		}
		return Position{p.X, p.Y - 1}
	}
	return p
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
