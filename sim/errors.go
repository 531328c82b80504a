package sim

import "errors"

// Sentinel errors for the three failure kinds the engine can surface.
// Callers test with errors.Is; messages carry the specific context.
var (
	// ErrConfigInvalid reports an out-of-range or inconsistent configuration.
	// Configuration application is all-or-nothing: the error is returned
	// before any world state is touched.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrInvalidTransition reports a control command that is not valid in the
	// current simulation status. No state changes.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrInvalidSchedule reports an event scheduled before the current clock
	// time. This is a scheduling bug, never an expected runtime condition.
	ErrInvalidSchedule = errors.New("event scheduled in the past")
)
