package sim

import "github.com/sirupsen/logrus"

// EventKind enumerates the closed set of event types the scheduler dispatches.
type EventKind string

const (
	KindMovementTick         EventKind = "MOVEMENT_TICK"
	KindArriveAtStation      EventKind = "ARRIVE_AT_STATION"
	KindChargeComplete       EventKind = "CHARGE_COMPLETE"
	KindActivityWindowChange EventKind = "ACTIVITY_WINDOW_CHANGE"
)

// Event is a scheduled unit of work against the world. Events carry their
// target by id, re-resolve it at dispatch time, and treat a vanished or
// state-changed target as a no-op: a stale event fires harmlessly instead of
// being removed from the queue.
type Event interface {
	Kind() EventKind
	Execute(e *Engine) error
}

// MovementTickEvent completes a scooter's move to the next cell. The
// destination is chosen when the tick is scheduled, one cell per tick.
type MovementTickEvent struct {
	ScooterID string
	Dest      Position
}

func (ev *MovementTickEvent) Kind() EventKind { return KindMovementTick }

func (ev *MovementTickEvent) Execute(e *Engine) error {
	sc := e.World.Scooter(ev.ScooterID)
	if sc == nil {
		return nil
	}
	// Stale tick: the scooter left the moving states before this fired.
	if sc.State != StateMoving && sc.State != StateTravelingToStation {
		return nil
	}

	distance := sc.Position.DistanceTo(ev.Dest)
	sc.Battery.Consume(distance * sc.Battery.ConsumptionRate)
	sc.DistanceToday += distance
	sc.Position = ev.Dest

	// A draining battery turns a roaming scooter toward the nearest station.
	if sc.State == StateMoving && sc.NeedsSwap() {
		if st := e.World.NearestStation(sc.Position); st != nil {
			sc.State = StateTravelingToStation
			sc.TargetStationID = st.ID
			pos := st.Position
			sc.TargetPosition = &pos
		}
	}

	switch sc.State {
	case StateMoving:
		return e.scheduleNextMove(sc)
	case StateTravelingToStation:
		if sc.TargetPosition != nil && sc.Position == *sc.TargetPosition {
			return e.Schedule(e.Clock.Now, &ArriveAtStationEvent{
				ScooterID: sc.ID,
				StationID: sc.TargetStationID,
			})
		}
		return e.scheduleMoveTowardStation(sc)
	}
	return nil
}

// ArriveAtStationEvent resolves a scooter's arrival at its target station:
// immediate swap, or a recorded miss and a place in the waiting queue.
type ArriveAtStationEvent struct {
	ScooterID string
	StationID string
}

func (ev *ArriveAtStationEvent) Kind() EventKind { return KindArriveAtStation }

func (ev *ArriveAtStationEvent) Execute(e *Engine) error {
	sc := e.World.Scooter(ev.ScooterID)
	st := e.World.Station(ev.StationID)
	if sc == nil || st == nil {
		return nil
	}
	if sc.State != StateTravelingToStation {
		return nil
	}
	logrus.Debugf("[t=%9.1f] scooter %s arrived at %s", e.Clock.Now, sc.ID, st.ID)
	return e.resolveArrival(sc, st)
}

// ChargeCompleteEvent pins a charging battery to exactly full and offers it
// to waiting scooters. Stale when the battery was swapped out before its
// charge finished.
type ChargeCompleteEvent struct {
	StationID string
	SlotIndex int
	BatteryID string
}

func (ev *ChargeCompleteEvent) Kind() EventKind { return KindChargeComplete }

func (ev *ChargeCompleteEvent) Execute(e *Engine) error {
	st := e.World.Station(ev.StationID)
	if st == nil {
		return nil
	}
	slot := st.Slot(ev.SlotIndex)
	if slot == nil || slot.Battery == nil || slot.Battery.ID != ev.BatteryID {
		return nil
	}
	st.Accrue(e.Clock.Now)
	slot.Battery.ChargeKWh = slot.Battery.CapacityKWh
	slot.IsCharging = false
	logrus.Debugf("[t=%9.1f] battery %s fully charged at %s slot %d",
		e.Clock.Now, ev.BatteryID, st.ID, ev.SlotIndex)
	return e.wakeWaiting(st)
}

// WakeUpEvent returns an idle scooter to service at its scheduled wake time.
// Stale when the scooter already woke (day boundary) or was never idled.
type WakeUpEvent struct {
	ScooterID string
}

func (ev *WakeUpEvent) Kind() EventKind { return KindActivityWindowChange }

func (ev *WakeUpEvent) Execute(e *Engine) error {
	sc := e.World.Scooter(ev.ScooterID)
	if sc == nil || sc.State != StateIdle {
		return nil
	}
	res := sc.Activity.check(sc, e.Clock.Now, e.World.MetersPerGridUnit)
	if res.decision != decisionContinue {
		// The schedule says stay idle (e.g. woken mid-gap); push the wake out.
		if res.wakeAt > e.Clock.Now {
			sc.WakeAt = res.wakeAt
			return e.Schedule(res.wakeAt, &WakeUpEvent{ScooterID: sc.ID})
		}
		return nil
	}
	sc.State = StateMoving
	sc.HasWakeAt = false
	logrus.Debugf("[t=%9.1f] scooter %s waking from idle", e.Clock.Now, sc.ID)
	return e.scheduleNextMove(sc)
}

// DayBoundaryEvent fires at each simulated midnight: daily distance counters
// reset and idle scooters whose schedule admits them are woken.
type DayBoundaryEvent struct {
	Day int
}

func (ev *DayBoundaryEvent) Kind() EventKind { return KindActivityWindowChange }

func (ev *DayBoundaryEvent) Execute(e *Engine) error {
	logrus.Debugf("[t=%9.1f] day boundary: day %d begins", e.Clock.Now, ev.Day)
	for _, sc := range e.World.Scooters {
		sc.DistanceToday = 0
		if sc.State != StateIdle {
			continue
		}
		res := sc.Activity.check(sc, e.Clock.Now, e.World.MetersPerGridUnit)
		if res.decision == decisionContinue {
			sc.State = StateMoving
			sc.HasWakeAt = false
			if err := e.scheduleNextMove(sc); err != nil {
				return err
			}
		}
	}
	next := NextMidnight(e.Clock.Now)
	if next < e.durationSeconds {
		return e.Schedule(next, &DayBoundaryEvent{Day: ev.Day + 1})
	}
	return nil
}
