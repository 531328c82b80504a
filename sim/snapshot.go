package sim

// ScooterSnapshot is the wire view of one scooter.
type ScooterSnapshot struct {
	ID              string       `json:"id"`
	Position        Position     `json:"position"`
	State           ScooterState `json:"state"`
	BatteryLevel    float64      `json:"battery_level"`
	BatteryID       string       `json:"battery_id"`
	GroupID         string       `json:"group_id,omitempty"`
	TargetStationID string       `json:"target_station_id,omitempty"`
	DistanceToday   float64      `json:"distance_today"`
}

// SlotSnapshot is the wire view of one station slot.
type SlotSnapshot struct {
	Index        int     `json:"index"`
	Occupied     bool    `json:"occupied"`
	BatteryID    string  `json:"battery_id,omitempty"`
	BatteryLevel float64 `json:"battery_level,omitempty"`
	IsCharging   bool    `json:"is_charging"`
}

// StationSnapshot is the wire view of one station.
type StationSnapshot struct {
	ID                 string         `json:"id"`
	Position           Position       `json:"position"`
	Slots              []SlotSnapshot `json:"slots"`
	AvailableBatteries int            `json:"available_batteries"`
	FullBatteries      int            `json:"full_batteries"`
	EmptySlots         int            `json:"empty_slots"`
	WaitingScooters    []string       `json:"waiting_scooters"`
}

// GroupSnapshot is the wire view of one scooter group.
type GroupSnapshot struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Color    string       `json:"color,omitempty"`
	Count    int          `json:"count"`
	Movement MovementKind `json:"movement"`
	Activity ActivityKind `json:"activity"`
}

// Snapshot is a complete point-in-time view of the simulation, safe to
// serialize after the engine reference is released.
type Snapshot struct {
	SimulationTime float64           `json:"simulation_time"`
	TimeOfDay      string            `json:"time_of_day"`
	Tick           int64             `json:"tick"`
	Status         Status            `json:"status"`
	Speed          float64           `json:"speed"`
	GridWidth      int               `json:"grid_width"`
	GridHeight     int               `json:"grid_height"`
	Scooters       []ScooterSnapshot `json:"scooters"`
	Stations       []StationSnapshot `json:"stations"`
	Groups         []GroupSnapshot   `json:"groups"`
	Metrics        CurrentMetrics    `json:"metrics"`
}

// Snapshot captures the full simulation state. Station charge is accrued up
// to the current clock first so slot levels reflect progress between events;
// accrual is idempotent, so this never perturbs the run.
func (e *Engine) Snapshot() Snapshot {
	now := e.Clock.Now
	for _, st := range e.World.Stations {
		st.Accrue(now)
	}

	snap := Snapshot{
		SimulationTime: now,
		TimeOfDay:      FormatSimTime(now),
		Tick:           e.eventCount,
		Status:         e.Clock.Status,
		Speed:          e.Clock.Speed,
		GridWidth:      e.World.GridWidth,
		GridHeight:     e.World.GridHeight,
		Scooters:       make([]ScooterSnapshot, 0, len(e.World.Scooters)),
		Stations:       make([]StationSnapshot, 0, len(e.World.Stations)),
		Groups:         make([]GroupSnapshot, 0, len(e.World.Groups)),
		Metrics:        e.Metrics.Current(),
	}

	for _, sc := range e.World.Scooters {
		snap.Scooters = append(snap.Scooters, ScooterSnapshot{
			ID:              sc.ID,
			Position:        sc.Position,
			State:           sc.State,
			BatteryLevel:    sc.Battery.ChargeLevel(),
			BatteryID:       sc.Battery.ID,
			GroupID:         sc.GroupID,
			TargetStationID: sc.TargetStationID,
			DistanceToday:   sc.DistanceToday,
		})
	}

	for _, st := range e.World.Stations {
		ss := StationSnapshot{
			ID:                 st.ID,
			Position:           st.Position,
			Slots:              make([]SlotSnapshot, 0, len(st.Slots)),
			AvailableBatteries: st.AvailableBatteries(),
			FullBatteries:      st.FullBatteries(),
			EmptySlots:         st.EmptySlots(),
			WaitingScooters:    append([]string{}, st.Waiting...),
		}
		for _, slot := range st.Slots {
			sl := SlotSnapshot{Index: slot.Index, IsCharging: slot.IsCharging}
			if slot.Battery != nil {
				sl.Occupied = true
				sl.BatteryID = slot.Battery.ID
				sl.BatteryLevel = slot.Battery.ChargeLevel()
			}
			ss.Slots = append(ss.Slots, sl)
		}
		snap.Stations = append(snap.Stations, ss)
	}

	for _, g := range e.World.Groups {
		snap.Groups = append(snap.Groups, GroupSnapshot{
			ID:       g.ID,
			Name:     g.Name,
			Color:    g.Color,
			Count:    g.Count,
			Movement: g.Movement,
			Activity: g.Activity,
		})
	}
	return snap
}
