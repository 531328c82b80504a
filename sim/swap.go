package sim

import "github.com/sirupsen/logrus"

// Swap resolution. The swap itself is a zero-duration transaction: the
// scooter takes the best battery from its slot and deposits its own battery
// into the slot vacated by the take, so total battery count across scooters
// and slots never changes and no battery is ever owned by both sides.

// resolveArrival handles a scooter that just reached a station. The station
// must be accrued to the current clock before matching so charge levels are
// current.
func (e *Engine) resolveArrival(sc *Scooter, st *Station) error {
	now := e.Clock.Now
	sc.arrivedAt = now
	st.Accrue(now)

	best := st.BestSlot()
	if best == nil {
		// No battery at all: record the miss once, join the FIFO, and wait
		// for a charge completion or a returned battery.
		sc.State = StateWaitingForBattery
		st.Waiting = append(st.Waiting, sc.ID)
		e.Metrics.RecordNoBatteryMiss(now, sc.ID, st.ID)
		logrus.Debugf("[t=%9.1f] scooter %s waiting at %s: no battery available", now, sc.ID, st.ID)
		return nil
	}

	if err := e.performSwap(sc, st, best); err != nil {
		return err
	}
	// The deposited battery may serve a scooter already waiting here.
	return e.wakeWaiting(st)
}

// performSwap executes the swap transaction for sc at st, taking from slot.
// Records the SwapEventRecord (and a partial-charge miss when the assigned
// battery is below full), starts the returned battery charging, and puts the
// scooter back into circulation or into its pending idle.
func (e *Engine) performSwap(sc *Scooter, st *Station, slot *Slot) error {
	now := e.Clock.Now

	sc.State = StateSwapping

	oldBattery := sc.Battery
	oldLevel := oldBattery.ChargeLevel()

	newBattery := st.take(slot)
	newLevel := newBattery.ChargeLevel()

	st.deposit(slot, oldBattery, now)
	sc.Battery = newBattery
	sc.clearNavigation()

	e.Metrics.RecordSwap(now, sc.ID, st.ID, oldLevel, newLevel, now-sc.arrivedAt)
	logrus.Debugf("[t=%9.1f] scooter %s swapped at %s slot %d: %.2f -> %.2f",
		now, sc.ID, st.ID, slot.Index, oldLevel, newLevel)

	if slot.IsCharging {
		chargeTime := oldBattery.TimeToFull(st.ChargeRateKW)
		if err := e.Schedule(now+chargeTime, &ChargeCompleteEvent{
			StationID: st.ID,
			SlotIndex: slot.Index,
			BatteryID: oldBattery.ID,
		}); err != nil {
			return err
		}
	}

	// Pre-idle swap: the scooter came here on its way to sleep.
	if sc.HasWakeAt {
		wakeAt := sc.WakeAt
		sc.HasWakeAt = false
		return e.goIdle(sc, wakeAt)
	}
	sc.State = StateMoving
	return e.scheduleNextMove(sc)
}

// wakeWaiting resolves the station's waiting queue head-first while batteries
// remain. Each swap inside the loop deposits another battery, which the next
// iteration may hand to the next waiter. Re-checks never record a second
// no-battery miss; a partial-charge miss still applies when the battery
// eventually taken is below full.
func (e *Engine) wakeWaiting(st *Station) error {
	for len(st.Waiting) > 0 {
		best := st.BestSlot()
		if best == nil {
			return nil
		}
		id := st.Waiting[0]
		st.Waiting = st.Waiting[1:]
		sc := e.World.Scooter(id)
		if sc == nil || sc.State != StateWaitingForBattery {
			continue
		}
		if err := e.performSwap(sc, st, best); err != nil {
			return err
		}
	}
	return nil
}
