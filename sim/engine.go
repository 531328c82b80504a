package sim

import (
	"container/heap"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// defaultScooterChargeLevel is the fraction of capacity scooter batteries
// start with; station batteries start full.
const defaultScooterChargeLevel = 0.8

// stationaryTickInterval paces the movement chain of a scooter that stays in
// place (a directed scooter with no destination), keeping its activity and
// swap checks alive without advancing it.
const stationaryTickInterval = 0.1

// Engine is the simulation core: clock, event queue, world, and metrics.
// It is logically single-threaded; callers serialize access (the Controller
// enforces this for concurrent use).
type Engine struct {
	Config  Config
	Clock   Clock
	Queue   EventQueue
	World   *World
	Metrics *Metrics

	rng             *PartitionedRNG
	directed        map[string]Position
	eventCount      int64
	durationSeconds float64
}

// NewEngine validates cfg, builds the initial world, and schedules the
// initial events. No state exists when an error is returned.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{Config: cfg}
	if err := e.build(); err != nil {
		return nil, err
	}
	return e, nil
}

// Reset rebuilds the engine to its initial state from the stored
// configuration: entities, queue, metrics, and RNG streams all restart, so a
// reset engine replays the exact same run.
func (e *Engine) Reset() error {
	return e.build()
}

func (e *Engine) build() error {
	cfg := e.Config
	e.Clock = Clock{Status: StatusIdle, Speed: 1.0}
	e.Queue = make(EventQueue, 0)
	e.Metrics = NewMetrics(cfg.SampleInterval)
	e.rng = NewPartitionedRNG(NewSimulationKey(cfg.Seed))
	e.directed = make(map[string]Position)
	e.eventCount = 0
	e.durationSeconds = cfg.DurationSeconds()

	w := NewWorld(cfg.Grid.Width, cfg.Grid.Height)
	w.MetersPerGridUnit = cfg.Scale.MetersPerGridUnit
	w.TimeScale = cfg.Scale.TimeScale
	e.World = w

	e.buildStations()
	e.buildFleet()
	return e.scheduleInitialEvents()
}

func (e *Engine) buildStations() {
	cfg := e.Config
	positions := cfg.Stations
	if len(positions) == 0 {
		positions = generateStationPositions(cfg.NumStations, cfg.Grid.Width, cfg.Grid.Height)
	}
	batteryID := 0
	for i, pos := range positions {
		st := NewStation(fmt.Sprintf("station_%d", i), Position{X: pos.X, Y: pos.Y},
			cfg.SlotsPerStation, cfg.StationChargeRateKW)
		for slotIdx := 0; slotIdx < cfg.InitialBatteriesPerStation; slotIdx++ {
			spec := cfg.Scooters.BatterySpec
			b := &Battery{
				ID:              fmt.Sprintf("battery_%d", batteryID),
				CapacityKWh:     spec.CapacityKWh,
				ChargeRateKW:    spec.ChargeRateKW,
				ConsumptionRate: spec.ConsumptionRate,
				ChargeKWh:       spec.CapacityKWh, // station stock starts full
			}
			st.Slots[slotIdx].Battery = b
			batteryID++
		}
		e.World.AddStation(st)
	}
}

// generateStationPositions distributes n stations evenly across the grid.
func generateStationPositions(n, gridWidth, gridHeight int) []StationPlacement {
	cols := int(math.Sqrt(float64(n))) + 1
	rows := (n + cols - 1) / cols
	xStep := gridWidth / (cols + 1)
	yStep := gridHeight / (rows + 1)

	positions := make([]StationPlacement, 0, n)
	for row := 0; row < rows && len(positions) < n; row++ {
		for col := 0; col < cols && len(positions) < n; col++ {
			positions = append(positions, StationPlacement{
				X: xStep * (col + 1),
				Y: yStep * (row + 1),
			})
		}
	}
	return positions
}

func (e *Engine) buildFleet() {
	cfg := e.Config
	if len(cfg.Groups) == 0 {
		for i := 0; i < cfg.Scooters.Count; i++ {
			e.addScooter(i, "", cfg.Scooters.Speed, cfg.Scooters.SwapThreshold,
				cfg.Movement, ActivityStrategy{Kind: ActivityAlwaysActive})
		}
		return
	}

	scooterIdx := 0
	for groupIdx, gc := range cfg.Groups {
		group := &ScooterGroup{
			ID:       fmt.Sprintf("group_%d", groupIdx),
			Name:     gc.Name,
			Color:    gc.Color,
			Count:    gc.Count,
			Movement: gc.Movement,
			Activity: gc.Activity,
		}
		if group.Movement == "" {
			group.Movement = cfg.Movement
		}
		if group.Activity == "" {
			group.Activity = ActivityAlwaysActive
		}
		activity := ActivityStrategy{Kind: group.Activity}
		if group.Activity == ActivityScheduled {
			group.Schedule = ActivitySchedule{
				StartHour:           gc.Schedule.StartHour,
				EndHour:             gc.Schedule.EndHour,
				MaxDistancePerDayKm: gc.Schedule.MaxDistancePerDayKm,
				LowBatteryThreshold: gc.Schedule.LowBatteryThreshold,
			}
			activity.Schedule = group.Schedule
		}
		e.World.AddGroup(group)

		speed := gc.Speed
		if speed == 0 {
			speed = cfg.Scooters.Speed
		}
		threshold := gc.SwapThreshold
		if threshold == 0 {
			threshold = cfg.Scooters.SwapThreshold
		}
		for i := 0; i < gc.Count; i++ {
			e.addScooter(scooterIdx, group.ID, speed, threshold, group.Movement, activity)
			scooterIdx++
		}
	}
}

func (e *Engine) addScooter(idx int, groupID string, speed, threshold float64,
	movement MovementKind, activity ActivityStrategy) {
	cfg := e.Config
	spec := cfg.Scooters.BatterySpec
	placement := e.rng.ForSubsystem(SubsystemPlacement)

	b := &Battery{
		ID:              fmt.Sprintf("battery_s%d", idx),
		CapacityKWh:     spec.CapacityKWh,
		ChargeRateKW:    spec.ChargeRateKW,
		ConsumptionRate: spec.ConsumptionRate,
		ChargeKWh:       spec.CapacityKWh * defaultScooterChargeLevel,
	}
	sc := &Scooter{
		ID: fmt.Sprintf("scooter_%d", idx),
		Position: Position{
			X: placement.Intn(cfg.Grid.Width),
			Y: placement.Intn(cfg.Grid.Height),
		},
		Battery:       b,
		State:         StateMoving,
		Speed:         speed,
		SwapThreshold: threshold,
		GroupID:       groupID,
		Movement:      movement,
		Activity:      activity,
	}
	e.World.AddScooter(sc)
}

func (e *Engine) scheduleInitialEvents() error {
	for _, sc := range e.World.Scooters {
		if err := e.scheduleNextMove(sc); err != nil {
			return err
		}
	}
	firstMidnight := NextMidnight(0)
	if firstMidnight < e.durationSeconds {
		return e.Schedule(firstMidnight, &DayBoundaryEvent{Day: 1})
	}
	return nil
}

// Schedule inserts an event into the queue at simulated time at. Fails with
// ErrInvalidSchedule when at precedes the current clock time; back-scheduling
// is a programming error, not a runtime condition.
func (e *Engine) Schedule(at float64, ev Event) error {
	if at < e.Clock.Now {
		return fmt.Errorf("%w: %s at t=%f, clock at t=%f", ErrInvalidSchedule, ev.Kind(), at, e.Clock.Now)
	}
	heap.Push(&e.Queue, &ScheduledEvent{At: at, Seq: e.Clock.NextSeq(), Event: ev})
	return nil
}

// Step pops the minimum event, advances the clock to its time, and dispatches
// it. Exactly one event regardless of run status, so manual single-stepping
// works while paused. Returns false when the queue is empty or the next event
// lies past the configured duration; the status becomes COMPLETED in either
// case and the queue is left untouched.
func (e *Engine) Step() (bool, error) {
	if at, ok := e.Queue.PeekTime(); !ok || at > e.durationSeconds {
		e.Clock.Status = StatusCompleted
		return false, nil
	}
	item := heap.Pop(&e.Queue).(*ScheduledEvent)
	e.Clock.Now = item.At
	logrus.Debugf("[t=%9.1f] dispatch %s (seq %d)", item.At, item.Event.Kind(), item.Seq)
	err := item.Event.Execute(e)
	e.eventCount++
	e.Metrics.Sample(e.Clock.Now)
	return true, err
}

// RunUntil advances while RUNNING and the next event is due at or before
// target. Returns early when a control command flips the status; pause and
// stop take effect at event boundaries, never mid-dispatch.
func (e *Engine) RunUntil(target float64) error {
	for e.Clock.Status == StatusRunning {
		at, ok := e.Queue.PeekTime()
		if !ok {
			e.Clock.Status = StatusCompleted
			return nil
		}
		if at > target {
			return nil
		}
		ok, err := e.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

// RunEvents advances at most n events while RUNNING.
func (e *Engine) RunEvents(n int) error {
	for i := 0; i < n && e.Clock.Status == StatusRunning; i++ {
		ok, err := e.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	return nil
}

// Run drives the simulation to completion without pacing (headless mode).
func (e *Engine) Run() error {
	e.Clock.Status = StatusRunning
	return e.RunUntil(e.durationSeconds)
}

// EventCount returns the number of events dispatched so far.
func (e *Engine) EventCount() int64 {
	return e.eventCount
}

// DurationSeconds returns the configured simulation horizon.
func (e *Engine) DurationSeconds() float64 {
	return e.durationSeconds
}

// SetDestination assigns an externally supplied destination to a directed
// scooter, bypassing the swap-triggered targeting path.
func (e *Engine) SetDestination(scooterID string, dest Position) error {
	sc := e.World.Scooter(scooterID)
	if sc == nil {
		return fmt.Errorf("%w: unknown scooter %q", ErrConfigInvalid, scooterID)
	}
	if sc.Movement != MovementDirected {
		return fmt.Errorf("%w: scooter %q does not use directed movement", ErrConfigInvalid, scooterID)
	}
	if dest.X < 0 || dest.X >= e.World.GridWidth || dest.Y < 0 || dest.Y >= e.World.GridHeight {
		return fmt.Errorf("%w: destination (%d,%d) outside grid", ErrConfigInvalid, dest.X, dest.Y)
	}
	e.directed[scooterID] = dest
	return nil
}

// ClearDestination removes a directed scooter's assigned destination.
func (e *Engine) ClearDestination(scooterID string) {
	delete(e.directed, scooterID)
}

// scheduleNextMove evaluates the scooter's activity strategy and either
// schedules its next movement tick, idles it, or sends it for a pre-idle
// swap.
func (e *Engine) scheduleNextMove(sc *Scooter) error {
	res := sc.Activity.check(sc, e.Clock.Now, e.World.MetersPerGridUnit)
	switch res.decision {
	case decisionGoIdle:
		return e.goIdle(sc, res.wakeAt)
	case decisionSwapThenIdle:
		return e.swapThenIdle(sc, res.wakeAt)
	}

	dest := e.nextDestination(sc, e.rng.ForSubsystem(SubsystemMovement))
	travel := sc.TravelTime(sc.Position.DistanceTo(dest))
	if travel <= 0 {
		travel = stationaryTickInterval
	}
	sc.State = StateMoving
	return e.Schedule(e.Clock.Now+travel, &MovementTickEvent{ScooterID: sc.ID, Dest: dest})
}

// scheduleMoveTowardStation schedules the next greedy step toward the
// scooter's target station.
func (e *Engine) scheduleMoveTowardStation(sc *Scooter) error {
	if sc.TargetPosition == nil {
		return e.scheduleNextMove(sc)
	}
	dest := nextStepTowardStation(sc)
	travel := sc.TravelTime(sc.Position.DistanceTo(dest))
	if travel <= 0 {
		travel = stationaryTickInterval
	}
	return e.Schedule(e.Clock.Now+travel, &MovementTickEvent{ScooterID: sc.ID, Dest: dest})
}

// goIdle parks the scooter until wakeAt.
func (e *Engine) goIdle(sc *Scooter, wakeAt float64) error {
	sc.State = StateIdle
	sc.WakeAt = wakeAt
	sc.HasWakeAt = true
	sc.clearNavigation()
	logrus.Debugf("[t=%9.1f] scooter %s idle until t=%.1f", e.Clock.Now, sc.ID, wakeAt)
	return e.Schedule(wakeAt, &WakeUpEvent{ScooterID: sc.ID})
}

// swapThenIdle routes a low-battery scooter to the nearest station before it
// idles; the post-swap handler reads WakeAt and completes the idle.
func (e *Engine) swapThenIdle(sc *Scooter, wakeAt float64) error {
	st := e.World.NearestStation(sc.Position)
	if st == nil {
		return e.goIdle(sc, wakeAt)
	}
	sc.WakeAt = wakeAt
	sc.HasWakeAt = true
	sc.State = StateTravelingToStation
	sc.TargetStationID = st.ID
	pos := st.Position
	sc.TargetPosition = &pos
	if sc.Position == st.Position {
		return e.Schedule(e.Clock.Now, &ArriveAtStationEvent{ScooterID: sc.ID, StationID: st.ID})
	}
	return e.scheduleMoveTowardStation(sc)
}
