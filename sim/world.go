package sim

// World is the complete entity state of a simulation. Entities live in
// insertion-ordered slices with id indexes on the side: Go map iteration is
// randomized, and any behavior that scanned a map would break run-for-run
// determinism.
type World struct {
	GridWidth  int
	GridHeight int

	// Scale factors for converting abstract simulation units to real-world
	// units. Display concerns except for the daily distance cap, which is
	// configured in kilometers.
	MetersPerGridUnit float64
	TimeScale         float64

	Scooters []*Scooter
	Stations []*Station
	Groups   []*ScooterGroup

	scooterByID map[string]*Scooter
	stationByID map[string]*Station
	groupByID   map[string]*ScooterGroup
}

// NewWorld creates an empty world with the given grid extents.
func NewWorld(gridWidth, gridHeight int) *World {
	return &World{
		GridWidth:   gridWidth,
		GridHeight:  gridHeight,
		scooterByID: make(map[string]*Scooter),
		stationByID: make(map[string]*Station),
		groupByID:   make(map[string]*ScooterGroup),
	}
}

// AddScooter appends a scooter to the world.
func (w *World) AddScooter(s *Scooter) {
	w.Scooters = append(w.Scooters, s)
	w.scooterByID[s.ID] = s
}

// AddStation appends a station to the world.
func (w *World) AddStation(s *Station) {
	w.Stations = append(w.Stations, s)
	w.stationByID[s.ID] = s
}

// AddGroup appends a scooter group to the world.
func (w *World) AddGroup(g *ScooterGroup) {
	w.Groups = append(w.Groups, g)
	w.groupByID[g.ID] = g
}

// Scooter returns the scooter with the given id, or nil.
func (w *World) Scooter(id string) *Scooter {
	return w.scooterByID[id]
}

// Station returns the station with the given id, or nil.
func (w *World) Station(id string) *Station {
	return w.stationByID[id]
}

// Group returns the group with the given id, or nil.
func (w *World) Group(id string) *ScooterGroup {
	return w.groupByID[id]
}

// NearestStation returns the station closest to pos by Manhattan distance.
// Stations are scanned in creation order with a strict less-than comparison,
// so equidistant stations resolve to the lowest station id. Returns nil when
// the world has no stations.
func (w *World) NearestStation(pos Position) *Station {
	var nearest *Station
	minDist := -1.0
	for _, st := range w.Stations {
		d := pos.DistanceTo(st.Position)
		if nearest == nil || d < minDist {
			minDist = d
			nearest = st
		}
	}
	return nearest
}

// BatteryCount returns the total number of batteries across all scooters and
// all station slots. Swap resolution must leave it unchanged.
func (w *World) BatteryCount() int {
	n := 0
	for _, sc := range w.Scooters {
		if sc.Battery != nil {
			n++
		}
	}
	for _, st := range w.Stations {
		n += st.AvailableBatteries()
	}
	return n
}
