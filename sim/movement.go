package sim

import "math/rand"

// MovementKind selects how a scooter picks its next cell while MOVING.
// The set is closed; the engine dispatches on the tag rather than through an
// open interface so a configuration string maps onto exactly one behavior.
type MovementKind string

const (
	// MovementRandomWalk moves to a uniformly random 4-connected neighbor
	// each tick, clamped to the grid.
	MovementRandomWalk MovementKind = "random_walk"

	// MovementDirected steps greedily toward an externally assigned
	// destination, and stays in place when none is assigned.
	MovementDirected MovementKind = "directed"
)

// validMovementKind reports whether k names a known movement behavior.
func validMovementKind(k MovementKind) bool {
	return k == MovementRandomWalk || k == MovementDirected
}

// nextDestination picks the next cell for a scooter in the MOVING state.
// Directed destinations live on the engine (they are assigned by the
// surrounding system, not computed here); reaching one clears it.
func (e *Engine) nextDestination(sc *Scooter, rng *rand.Rand) Position {
	switch sc.Movement {
	case MovementDirected:
		target, ok := e.directed[sc.ID]
		if !ok {
			return sc.Position
		}
		if sc.Position == target {
			delete(e.directed, sc.ID)
			return sc.Position
		}
		return sc.Position.StepToward(target)
	default: // MovementRandomWalk
		neighbors := sc.Position.Neighbors(e.World.GridWidth, e.World.GridHeight)
		if len(neighbors) == 0 {
			return sc.Position
		}
		return neighbors[rng.Intn(len(neighbors))]
	}
}

// nextStepTowardStation picks the next cell for a scooter traveling to its
// target station: greedy x-then-y, no obstacle avoidance.
func nextStepTowardStation(sc *Scooter) Position {
	if sc.TargetPosition == nil {
		return sc.Position
	}
	return sc.Position.StepToward(*sc.TargetPosition)
}
