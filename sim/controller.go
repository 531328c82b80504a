package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// MinSpeed and MaxSpeed bound the speed multiplier; out-of-range requests
	// are clamped, not rejected.
	MinSpeed = 0.1
	MaxSpeed = 100.0

	// pacingInterval is the wall-clock cadence of the pacing loop. Each tick
	// advances simulated time by speed multiplied by the elapsed interval.
	pacingInterval = 100 * time.Millisecond
)

// StatusInfo is the control-plane view of a simulation session.
type StatusInfo struct {
	SessionID      string  `json:"session_id"`
	Status         Status  `json:"status"`
	SimulationTime float64 `json:"simulation_time"`
	TimeOfDay      string  `json:"time_of_day"`
	Speed          float64 `json:"speed"`
	EventCount     int64   `json:"event_count"`
}

// Observer receives a state snapshot after every pacing tick while the
// simulation runs. Called outside the controller lock; implementations must
// not call back into the controller synchronously.
type Observer func(Snapshot)

// Controller serializes all access to an Engine and paces it against wall
// clock time. The engine itself is single-threaded; the controller's mutex is
// the only concurrency boundary in the system. Control commands, snapshots,
// and metric reads interleave with the pacing loop strictly between event
// dispatches.
type Controller struct {
	mu        sync.Mutex
	engine    *Engine
	sessionID string
	speed     float64
	observers []Observer

	loopRunning bool
	// paceTarget is the simulated time the pacing loop has earned so far. It
	// accumulates speed multiplied by wall time across ticks, so quiet
	// stretches between events are crossed instead of stalling the clock.
	paceTarget float64
}

// NewController creates a controller around an engine built from the default
// configuration, so snapshots and reconfiguration work before the first run.
func NewController() (*Controller, error) {
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		return nil, err
	}
	return &Controller{engine: engine, speed: 1.0}, nil
}

// AddObserver registers a snapshot observer.
func (c *Controller) AddObserver(obs Observer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, obs)
}

// Configure replaces the engine with one built from cfg. Rejected while the
// simulation is running or paused; stop or reset first.
func (c *Controller) Configure(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.engine.Clock.Status {
	case StatusRunning, StatusPaused:
		return fmt.Errorf("%w: cannot configure while %s", ErrInvalidTransition, c.engine.Clock.Status)
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		return err
	}
	c.engine = engine
	c.sessionID = ""
	c.paceTarget = 0
	return nil
}

// Start begins a new run from the IDLE state and returns its session id.
func (c *Controller) Start() (string, error) {
	c.mu.Lock()
	if c.engine.Clock.Status != StatusIdle {
		status := c.engine.Clock.Status
		c.mu.Unlock()
		return "", fmt.Errorf("%w: cannot start from %s", ErrInvalidTransition, status)
	}
	c.engine.Clock.Status = StatusRunning
	c.engine.Clock.Speed = c.speed
	c.sessionID = uuid.NewString()
	session := c.sessionID
	c.paceTarget = c.engine.Clock.Now
	c.startLoopLocked()
	c.mu.Unlock()

	logrus.Infof("simulation started, session %s", session)
	return session, nil
}

// Pause suspends event dispatch at the next event boundary.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine.Clock.Status != StatusRunning {
		return fmt.Errorf("%w: cannot pause from %s", ErrInvalidTransition, c.engine.Clock.Status)
	}
	c.engine.Clock.Status = StatusPaused
	return nil
}

// Resume continues a paused run.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine.Clock.Status != StatusPaused {
		return fmt.Errorf("%w: cannot resume from %s", ErrInvalidTransition, c.engine.Clock.Status)
	}
	c.engine.Clock.Status = StatusRunning
	c.paceTarget = c.engine.Clock.Now
	c.startLoopLocked()
	return nil
}

// Stop terminates the run. Pending events are discarded; metrics and entity
// state remain readable until the next reset or configure.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.engine.Clock.Status {
	case StatusRunning, StatusPaused:
	default:
		return fmt.Errorf("%w: cannot stop from %s", ErrInvalidTransition, c.engine.Clock.Status)
	}
	c.engine.Clock.Status = StatusStopped
	c.engine.Queue = c.engine.Queue[:0]
	return nil
}

// Reset rebuilds the engine to its initial state from the current
// configuration. Valid from any state.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.engine.Reset(); err != nil {
		return err
	}
	c.engine.Clock.Speed = c.speed
	c.sessionID = ""
	c.paceTarget = 0
	return nil
}

// SetSpeed updates the speed multiplier, clamped to [MinSpeed, MaxSpeed], and
// returns the applied value. Takes effect on the next pacing tick; simulated
// event semantics are unaffected.
func (c *Controller) SetSpeed(speed float64) float64 {
	if speed < MinSpeed {
		speed = MinSpeed
	}
	if speed > MaxSpeed {
		speed = MaxSpeed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = speed
	c.engine.Clock.Speed = speed
	return speed
}

// StepOnce dispatches exactly one event, independent of pacing. Permitted
// while idle, running, or paused; an idle engine transitions to PAUSED so the
// stepped state is inspectable.
func (c *Controller) StepOnce() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.engine.Clock.Status {
	case StatusIdle:
		c.engine.Clock.Status = StatusPaused
	case StatusRunning, StatusPaused:
	default:
		return fmt.Errorf("%w: cannot step from %s", ErrInvalidTransition, c.engine.Clock.Status)
	}
	_, err := c.engine.Step()
	return err
}

// Snapshot returns a full point-in-time view of the simulation.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Snapshot()
}

// StatusInfo returns the control-plane view of the session.
func (c *Controller) StatusInfo() StatusInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return StatusInfo{
		SessionID:      c.sessionID,
		Status:         c.engine.Clock.Status,
		SimulationTime: c.engine.Clock.Now,
		TimeOfDay:      FormatSimTime(c.engine.Clock.Now),
		Speed:          c.speed,
		EventCount:     c.engine.EventCount(),
	}
}

// Config returns the active configuration.
func (c *Controller) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Config
}

// MetricsSummary returns the full cumulative metrics report.
func (c *Controller) MetricsSummary() MetricsSummary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Metrics.Summary()
}

// CurrentMetrics returns the lightweight running metrics view.
func (c *Controller) CurrentMetrics() CurrentMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Metrics.Current()
}

// StationSwapLog returns a page of one station's swap history. Fails when the
// station does not exist.
func (c *Controller) StationSwapLog(stationID string, q LogQuery) ([]SwapRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine.World.Station(stationID) == nil {
		return nil, fmt.Errorf("%w: unknown station %q", ErrConfigInvalid, stationID)
	}
	return c.engine.Metrics.StationLog(stationID, q), nil
}

// HasScooter reports whether a scooter with the given id exists.
func (c *Controller) HasScooter(scooterID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.World.Scooter(scooterID) != nil
}

// SetDestination forwards an external destination to a directed scooter.
func (c *Controller) SetDestination(scooterID string, dest Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.SetDestination(scooterID, dest)
}

// ClearDestination removes a directed scooter's assigned destination.
func (c *Controller) ClearDestination(scooterID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.engine.ClearDestination(scooterID)
}

// startLoopLocked launches the pacing goroutine when one is not already
// alive. Callers hold the mutex.
func (c *Controller) startLoopLocked() {
	if c.loopRunning {
		return
	}
	c.loopRunning = true
	go c.paceLoop()
}

// paceLoop advances the engine by speed multiplied by wall time on each tick.
// It exits when the run leaves the RUNNING and PAUSED states; pausing keeps
// the loop alive so resume needs no restart handshake.
func (c *Controller) paceLoop() {
	ticker := time.NewTicker(pacingInterval)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		status := c.engine.Clock.Status
		if status != StatusRunning && status != StatusPaused {
			c.loopRunning = false
			c.mu.Unlock()
			return
		}
		var snap Snapshot
		var observers []Observer
		if status == StatusRunning {
			if c.paceTarget < c.engine.Clock.Now {
				c.paceTarget = c.engine.Clock.Now
			}
			c.paceTarget += c.speed * pacingInterval.Seconds()
			if err := c.engine.RunUntil(c.paceTarget); err != nil {
				logrus.Errorf("simulation halted: %v", err)
				c.engine.Clock.Status = StatusStopped
			}
			if len(c.observers) > 0 {
				snap = c.engine.Snapshot()
				observers = append(observers, c.observers...)
			}
			if c.engine.Clock.Status == StatusCompleted {
				c.loopRunning = false
				logrus.Infof("simulation completed at t=%.1f", c.engine.Clock.Now)
				c.mu.Unlock()
				for _, obs := range observers {
					obs(snap)
				}
				return
			}
		}
		c.mu.Unlock()

		for _, obs := range observers {
			obs(snap)
		}
	}
}
