package sim

// Slot is a station-owned battery bay. It holds at most one battery and
// charges it independently while occupied and below full.
type Slot struct {
	Index      int
	Battery    *Battery
	IsCharging bool

	// lastAccrual is the sim time up to which charging progress has been
	// applied to the resident battery. Charge accrues lazily: there is no
	// periodic charging tick, so progress is folded in whenever the slot is
	// observed and pinned to exactly full by the slot's ChargeCompleteEvent.
	lastAccrual float64
}

// Station is a battery-swap station with a fixed, ordered set of slots.
// Available/full/empty counts are always derived from slot contents; no
// separate counters exist to drift.
type Station struct {
	ID           string
	Position     Position
	ChargeRateKW float64
	Slots        []*Slot

	// Waiting is the FIFO of scooter ids parked in WAITING_FOR_BATTERY at
	// this station, in arrival order.
	Waiting []string
}

// NewStation creates a station with numSlots empty slots.
func NewStation(id string, pos Position, numSlots int, chargeRateKW float64) *Station {
	st := &Station{
		ID:           id,
		Position:     pos,
		ChargeRateKW: chargeRateKW,
		Slots:        make([]*Slot, numSlots),
	}
	for i := range st.Slots {
		st.Slots[i] = &Slot{Index: i}
	}
	return st
}

// AvailableBatteries counts occupied slots.
func (s *Station) AvailableBatteries() int {
	n := 0
	for _, slot := range s.Slots {
		if slot.Battery != nil {
			n++
		}
	}
	return n
}

// FullBatteries counts occupied slots holding a fully charged battery.
func (s *Station) FullBatteries() int {
	n := 0
	for _, slot := range s.Slots {
		if slot.Battery != nil && slot.Battery.IsFull() {
			n++
		}
	}
	return n
}

// EmptySlots counts unoccupied slots.
func (s *Station) EmptySlots() int {
	return len(s.Slots) - s.AvailableBatteries()
}

// Slot returns the slot at index, or nil when out of range.
func (s *Station) Slot(index int) *Slot {
	if index < 0 || index >= len(s.Slots) {
		return nil
	}
	return s.Slots[index]
}

// BestSlot returns the occupied slot holding the highest-charged battery.
// Slots are scanned in index order with a strict greater-than comparison, so
// equal charge levels resolve to the lowest slot index. Returns nil when no
// slot is occupied. Callers must Accrue first so levels are current.
func (s *Station) BestSlot() *Slot {
	var best *Slot
	bestLevel := -1.0
	for _, slot := range s.Slots {
		if slot.Battery == nil {
			continue
		}
		if level := slot.Battery.ChargeLevel(); level > bestLevel {
			bestLevel = level
			best = slot
		}
	}
	return best
}

// Accrue folds charging progress up to now into every charging slot.
// Idempotent at a fixed now, so snapshots and arrivals may both call it
// within the same dispatch without double-charging.
func (s *Station) Accrue(now float64) {
	for _, slot := range s.Slots {
		if slot.Battery == nil || !slot.IsCharging {
			continue
		}
		elapsed := now - slot.lastAccrual
		if elapsed > 0 {
			slot.Battery.AddCharge(s.ChargeRateKW * elapsed / 3600)
			slot.lastAccrual = now
		}
		if slot.Battery.IsFull() {
			slot.IsCharging = false
		}
	}
}

// deposit places a battery into the slot and starts charging it when below
// full. The slot must be empty.
func (s *Station) deposit(slot *Slot, b *Battery, now float64) {
	slot.Battery = b
	slot.lastAccrual = now
	slot.IsCharging = !b.IsFull()
}

// take removes and returns the slot's battery.
func (s *Station) take(slot *Slot) *Battery {
	b := slot.Battery
	slot.Battery = nil
	slot.IsCharging = false
	return b
}
