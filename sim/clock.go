package sim

// Status enumerates the lifecycle states of a simulation.
type Status string

const (
	StatusIdle      Status = "IDLE"
	StatusRunning   Status = "RUNNING"
	StatusPaused    Status = "PAUSED"
	StatusStopped   Status = "STOPPED"
	StatusCompleted Status = "COMPLETED"
)

// Clock holds the simulation's notion of time. Now is simulated seconds since
// the start of day 0 and never decreases; the sequence counter breaks ties
// between events scheduled for the same instant (FIFO). Speed is the ratio of
// simulated seconds advanced per real second during automatic pacing and has
// no effect on event ordering.
//
// The clock is owned by the engine: only scheduler dispatch and explicit
// control commands mutate it.
type Clock struct {
	Now    float64
	Status Status
	Speed  float64

	seq int64
}

// NextSeq returns the next event sequence number. Monotonically increasing
// for the lifetime of a run; reset only when the engine rebuilds the world.
func (c *Clock) NextSeq() int64 {
	c.seq++
	return c.seq
}
