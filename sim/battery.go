package sim

// fullLevelEpsilon is the charge level at or above which a battery counts as
// full. Charging math accumulates float error, so exact 1.0 comparison would
// misclassify batteries pinned by a ChargeCompleteEvent a hair below capacity.
const fullLevelEpsilon = 0.9999

// Battery is the unit of exchange between scooters and station slots.
// Ownership transfers atomically inside the swap transaction: at every event
// boundary a battery is referenced by exactly one scooter or at most one slot,
// never both.
type Battery struct {
	ID              string
	CapacityKWh     float64
	ChargeRateKW    float64
	ConsumptionRate float64 // kWh per grid unit traveled
	ChargeKWh       float64
}

// ChargeLevel returns the charge as a fraction in [0, 1].
func (b *Battery) ChargeLevel() float64 {
	return b.ChargeKWh / b.CapacityKWh
}

// IsFull reports whether the battery is fully charged.
func (b *Battery) IsFull() bool {
	return b.ChargeLevel() >= fullLevelEpsilon
}

// Consume drains energy from the battery, floored at zero.
func (b *Battery) Consume(energyKWh float64) {
	b.ChargeKWh -= energyKWh
	if b.ChargeKWh < 0 {
		b.ChargeKWh = 0
	}
}

// AddCharge adds energy to the battery, capped at capacity.
func (b *Battery) AddCharge(energyKWh float64) {
	b.ChargeKWh += energyKWh
	if b.ChargeKWh > b.CapacityKWh {
		b.ChargeKWh = b.CapacityKWh
	}
}

// TimeToFull returns the simulated seconds needed to reach full charge at the
// given rate. Zero when already full.
func (b *Battery) TimeToFull(chargeRateKW float64) float64 {
	remaining := b.CapacityKWh - b.ChargeKWh
	if remaining <= 0 {
		return 0
	}
	// kWh / kW = hours, then to seconds.
	return remaining / chargeRateKW * 3600
}
