package sim

import "testing"

// swapTestEngine builds a single-station world with the scooter already
// standing on the station cell.
func swapTestEngine(t *testing.T, scooters, initialBatteries int) (*Engine, *Station) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Stations = []StationPlacement{{X: 10, Y: 10}}
	cfg.SlotsPerStation = 3
	cfg.InitialBatteriesPerStation = initialBatteries
	cfg.Scooters.Count = scooters
	e, err := NewEngine(cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	st := e.World.Stations[0]
	for _, sc := range e.World.Scooters {
		sc.Position = st.Position
		sc.State = StateTravelingToStation
		sc.TargetStationID = st.ID
	}
	return e, st
}

func TestSwap_FullBatteryAvailable(t *testing.T) {
	// GIVEN a station holding full batteries and an arriving scooter at 80%
	e, st := swapTestEngine(t, 1, 2)
	sc := e.World.Scooters[0]
	oldBattery := sc.Battery

	// WHEN the arrival resolves
	if err := e.resolveArrival(sc, st); err != nil {
		t.Fatalf("resolveArrival: %v", err)
	}

	// THEN the scooter holds a full battery and its old one charges in the slot
	if !sc.Battery.IsFull() {
		t.Errorf("scooter battery level after swap: got %f, want full", sc.Battery.ChargeLevel())
	}
	if sc.Battery == oldBattery {
		t.Error("scooter kept its old battery")
	}
	found := false
	for _, slot := range st.Slots {
		if slot.Battery == oldBattery {
			found = true
			if !slot.IsCharging {
				t.Error("returned battery is not charging")
			}
		}
	}
	if !found {
		t.Error("returned battery not found in any slot")
	}
	if sc.State != StateMoving {
		t.Errorf("scooter state after swap: got %s, want MOVING", sc.State)
	}

	m := e.Metrics.Current()
	if m.TotalSwaps != 1 || m.TotalMisses != 0 {
		t.Errorf("metrics: got swaps=%d misses=%d, want 1/0", m.TotalSwaps, m.TotalMisses)
	}
	log := e.Metrics.StationLog(st.ID, LogQuery{})
	if len(log) != 1 || log[0].WasPartial {
		t.Errorf("swap log: got %+v, want one non-partial record", log)
	}
	if got := e.Metrics.MaxWaitTime(); got != 0 {
		t.Errorf("immediate swap wait time: got %f, want 0", got)
	}
}

func TestSwap_ConservesBatteryCount(t *testing.T) {
	e, st := swapTestEngine(t, 1, 2)
	before := e.World.BatteryCount()

	if err := e.resolveArrival(e.World.Scooters[0], st); err != nil {
		t.Fatalf("resolveArrival: %v", err)
	}

	if after := e.World.BatteryCount(); after != before {
		t.Errorf("battery count changed across swap: %d -> %d", before, after)
	}
}

func TestSwap_NoBatteryRecordsMissAndWaits(t *testing.T) {
	// GIVEN a station with every slot empty
	e, st := swapTestEngine(t, 1, 0)
	sc := e.World.Scooters[0]

	if err := e.resolveArrival(sc, st); err != nil {
		t.Fatalf("resolveArrival: %v", err)
	}

	if sc.State != StateWaitingForBattery {
		t.Errorf("scooter state: got %s, want WAITING_FOR_BATTERY", sc.State)
	}
	if len(st.Waiting) != 1 || st.Waiting[0] != sc.ID {
		t.Errorf("waiting queue: got %v, want [%s]", st.Waiting, sc.ID)
	}
	m := e.Metrics.Current()
	if m.NoBatteryMisses != 1 || m.TotalSwaps != 0 {
		t.Errorf("metrics: got noBattery=%d swaps=%d, want 1/0", m.NoBatteryMisses, m.TotalSwaps)
	}
}

func TestSwap_PartialBatteryCountsAsMiss(t *testing.T) {
	// GIVEN only a 60% battery in the station
	e, st := swapTestEngine(t, 1, 0)
	sc := e.World.Scooters[0]
	st.Slots[0].Battery = testBattery("partial", 0.6)

	if err := e.resolveArrival(sc, st); err != nil {
		t.Fatalf("resolveArrival: %v", err)
	}

	// THEN the swap happens anyway and records a partial-charge miss
	if sc.Battery.ID != "partial" {
		t.Fatalf("scooter battery: got %s, want the partial one", sc.Battery.ID)
	}
	m := e.Metrics.Current()
	if m.TotalSwaps != 1 || m.PartialChargeMisses != 1 {
		t.Errorf("metrics: got swaps=%d partial=%d, want 1/1", m.TotalSwaps, m.PartialChargeMisses)
	}
	log := e.Metrics.StationLog(st.ID, LogQuery{})
	if len(log) != 1 || !log[0].WasPartial {
		t.Errorf("swap log: got %+v, want one partial record", log)
	}
}

func TestSwap_ChargeCompleteWakesWaitingScooter(t *testing.T) {
	// GIVEN a scooter that arrived at empty slots and now waits
	e, st := swapTestEngine(t, 1, 0)
	sc := e.World.Scooters[0]
	if err := e.resolveArrival(sc, st); err != nil {
		t.Fatalf("resolveArrival: %v", err)
	}
	st.deposit(st.Slots[0], testBattery("charging", 0.5), e.Clock.Now)
	st.Slots[0].IsCharging = true

	// WHEN its charge completes 1000 seconds later
	e.Clock.Now = 1000
	ev := &ChargeCompleteEvent{StationID: st.ID, SlotIndex: 0, BatteryID: "charging"}
	if err := ev.Execute(e); err != nil {
		t.Fatalf("ChargeCompleteEvent: %v", err)
	}

	// THEN the waiter swaps onto the now-full battery
	if sc.State == StateWaitingForBattery {
		t.Fatal("scooter still waiting after charge completed")
	}
	if sc.Battery.ID != "charging" || !sc.Battery.IsFull() {
		t.Errorf("scooter battery: got %s at %f, want full 'charging'", sc.Battery.ID, sc.Battery.ChargeLevel())
	}
	if len(st.Waiting) != 0 {
		t.Errorf("waiting queue not drained: %v", st.Waiting)
	}

	m := e.Metrics.Current()
	if m.TotalSwaps != 1 || m.NoBatteryMisses != 1 {
		t.Errorf("metrics: got swaps=%d noBattery=%d, want 1/1", m.TotalSwaps, m.NoBatteryMisses)
	}
	// Wait time spans arrival (t=0) to swap (t=1000)
	if got := e.Metrics.MaxWaitTime(); got != 1000 {
		t.Errorf("wait time: got %f, want 1000", got)
	}
}

func TestSwap_WaitingQueueIsFIFO(t *testing.T) {
	// GIVEN two scooters waiting in arrival order
	e, st := swapTestEngine(t, 2, 0)
	first, second := e.World.Scooters[0], e.World.Scooters[1]
	if err := e.resolveArrival(first, st); err != nil {
		t.Fatalf("resolveArrival first: %v", err)
	}
	if err := e.resolveArrival(second, st); err != nil {
		t.Fatalf("resolveArrival second: %v", err)
	}

	// WHEN a single battery becomes available
	st.deposit(st.Slots[0], testBattery("b", 1.0), e.Clock.Now)
	if err := e.wakeWaiting(st); err != nil {
		t.Fatalf("wakeWaiting: %v", err)
	}

	// THEN the earlier arrival gets it; the later one takes the returned
	// battery only if that one is present, otherwise keeps waiting
	if first.Battery.ID != "b" {
		t.Errorf("first waiter battery: got %s, want b", first.Battery.ID)
	}
	// The first waiter's returned battery (80%) now serves the second waiter.
	if second.State == StateWaitingForBattery {
		t.Error("second waiter should have taken the returned battery")
	}
}

func TestSwap_PreIdleSwapEndsIdle(t *testing.T) {
	// GIVEN a scooter routed in for a swap on its way to sleep
	e, st := swapTestEngine(t, 1, 2)
	sc := e.World.Scooters[0]
	sc.WakeAt = 50000
	sc.HasWakeAt = true

	if err := e.resolveArrival(sc, st); err != nil {
		t.Fatalf("resolveArrival: %v", err)
	}

	if sc.State != StateIdle {
		t.Errorf("scooter state after pre-idle swap: got %s, want IDLE", sc.State)
	}
	if !sc.HasWakeAt || sc.WakeAt != 50000 {
		t.Errorf("wake time: got (%v, %f), want (true, 50000)", sc.HasWakeAt, sc.WakeAt)
	}
}
