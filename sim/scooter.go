package sim

// ScooterState enumerates the scooter state machine.
type ScooterState string

const (
	StateMoving              ScooterState = "MOVING"
	StateTravelingToStation  ScooterState = "TRAVELING_TO_STATION"
	StateSwapping            ScooterState = "SWAPPING"
	StateWaitingForBattery   ScooterState = "WAITING_FOR_BATTERY"
	StateIdle                ScooterState = "IDLE"
)

// Scooter is an electric scooter roaming the grid. It always owns exactly one
// battery; swapping exchanges that battery with a station slot in a single
// zero-duration transaction.
//
// Speed, SwapThreshold, Movement and Activity are resolved at world
// construction from the scooter's group (when it has one) or the global
// defaults, so event handlers never chase the group reference. GroupID is a
// weak reference kept for lookups and display only.
type Scooter struct {
	ID            string
	Position      Position
	Battery       *Battery
	State         ScooterState
	Speed         float64 // grid units per simulated second
	SwapThreshold float64 // charge fraction at or below which a swap is sought
	GroupID       string

	Movement MovementKind
	Activity ActivityStrategy

	// Navigation state, meaningful only while TRAVELING_TO_STATION.
	TargetStationID string
	TargetPosition  *Position

	// DistanceToday accumulates grid units traveled since the last day
	// boundary; scheduled groups cap it.
	DistanceToday float64

	// WakeAt is the pending wake-up time while IDLE, or the post-swap idle
	// time while traveling for a pre-idle swap. Valid only when HasWakeAt.
	WakeAt    float64
	HasWakeAt bool

	// arrivedAt is the time of the most recent station arrival, used for
	// wait-time metrics. Valid from ARRIVE_AT_STATION until the swap resolves.
	arrivedAt float64
}

// NeedsSwap reports whether the battery level has fallen to or below the
// scooter's swap threshold.
func (s *Scooter) NeedsSwap() bool {
	return s.Battery.ChargeLevel() <= s.SwapThreshold
}

// TravelTime returns the simulated seconds needed to cover distance grid
// units at the scooter's speed.
func (s *Scooter) TravelTime(distance float64) float64 {
	if distance <= 0 {
		return 0
	}
	return distance / s.Speed
}

// clearNavigation drops any station target.
func (s *Scooter) clearNavigation() {
	s.TargetStationID = ""
	s.TargetPosition = nil
}
