package sim

import "fmt"

// GridConfig sizes the simulation grid.
type GridConfig struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// ScaleConfig converts abstract simulation units to real-world units for
// display and for the daily distance cap.
type ScaleConfig struct {
	MetersPerGridUnit float64 `json:"meters_per_grid_unit" yaml:"meters_per_grid_unit"`
	TimeScale         float64 `json:"time_scale" yaml:"time_scale"`
}

// BatterySpec describes the battery model shared by the fleet.
type BatterySpec struct {
	CapacityKWh     float64 `json:"capacity_kwh" yaml:"capacity_kwh"`
	ChargeRateKW    float64 `json:"charge_rate_kw" yaml:"charge_rate_kw"`
	ConsumptionRate float64 `json:"consumption_rate" yaml:"consumption_rate"` // kWh per grid unit
}

// ScooterConfig is the default fleet configuration, used directly when no
// groups are configured and as the fallback for group overrides.
type ScooterConfig struct {
	Count         int         `json:"count" yaml:"count"`
	Speed         float64     `json:"speed" yaml:"speed"` // grid units per simulated second
	SwapThreshold float64     `json:"swap_threshold" yaml:"swap_threshold"`
	BatterySpec   BatterySpec `json:"battery_spec" yaml:"battery_spec"`
}

// StationPlacement pins a station to an explicit grid position.
type StationPlacement struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// ActivityScheduleConfig parameterizes the scheduled activity strategy.
type ActivityScheduleConfig struct {
	StartHour           float64 `json:"start_hour" yaml:"start_hour"`
	EndHour             float64 `json:"end_hour" yaml:"end_hour"`
	MaxDistancePerDayKm float64 `json:"max_distance_per_day_km" yaml:"max_distance_per_day_km"` // 0 = unlimited
	LowBatteryThreshold float64 `json:"low_battery_threshold" yaml:"low_battery_threshold"`
}

// GroupConfig describes one scooter group. Zero-valued Speed/SwapThreshold
// fall back to the fleet defaults.
type GroupConfig struct {
	Name          string                  `json:"name" yaml:"name"`
	Color         string                  `json:"color" yaml:"color"`
	Count         int                     `json:"count" yaml:"count"`
	Speed         float64                 `json:"speed" yaml:"speed"`
	SwapThreshold float64                 `json:"swap_threshold" yaml:"swap_threshold"`
	Movement      MovementKind            `json:"movement_strategy" yaml:"movement_strategy"`
	Activity      ActivityKind            `json:"activity_strategy" yaml:"activity_strategy"`
	Schedule      *ActivityScheduleConfig `json:"activity_schedule" yaml:"activity_schedule"`
}

// Config is the complete simulation configuration. Apply it through
// NewEngine or Controller.Configure; both validate first and touch no state
// on failure.
type Config struct {
	Grid  GridConfig  `json:"grid" yaml:"grid"`
	Scale ScaleConfig `json:"scale" yaml:"scale"`

	NumStations                int                `json:"num_stations" yaml:"num_stations"`
	SlotsPerStation            int                `json:"slots_per_station" yaml:"slots_per_station"`
	StationChargeRateKW        float64            `json:"station_charge_rate_kw" yaml:"station_charge_rate_kw"`
	InitialBatteriesPerStation int                `json:"initial_batteries_per_station" yaml:"initial_batteries_per_station"`
	Stations                   []StationPlacement `json:"stations" yaml:"stations"` // optional explicit positions

	Scooters ScooterConfig `json:"scooters" yaml:"scooters"`
	Groups   []GroupConfig `json:"scooter_groups" yaml:"scooter_groups"` // overrides Scooters.Count when present

	Movement MovementKind `json:"movement_strategy" yaml:"movement_strategy"` // default movement behavior

	DurationHours  float64 `json:"duration_hours" yaml:"duration_hours"`
	Seed           int64   `json:"random_seed" yaml:"random_seed"`
	SampleInterval float64 `json:"sample_interval_seconds" yaml:"sample_interval_seconds"` // metrics cadence
}

// DefaultConfig returns the baseline scenario: a 100x100 grid, five
// ten-slot stations, and fifty always-active random walkers.
func DefaultConfig() Config {
	return Config{
		Grid:  GridConfig{Width: 100, Height: 100},
		Scale: ScaleConfig{MetersPerGridUnit: 100, TimeScale: 60},

		NumStations:                5,
		SlotsPerStation:            10,
		StationChargeRateKW:        1.3,
		InitialBatteriesPerStation: 8,

		Scooters: ScooterConfig{
			Count:         50,
			Speed:         0.025,
			SwapThreshold: 0.2,
			BatterySpec: BatterySpec{
				CapacityKWh:     1.6,
				ChargeRateKW:    1.3,
				ConsumptionRate: 0.005,
			},
		},

		Movement:       MovementRandomWalk,
		DurationHours:  24,
		SampleInterval: 60,
	}
}

// TotalScooters returns the configured population: the sum of group counts
// when groups are present, the fleet count otherwise.
func (c Config) TotalScooters() int {
	if len(c.Groups) == 0 {
		return c.Scooters.Count
	}
	total := 0
	for _, g := range c.Groups {
		total += g.Count
	}
	return total
}

// DurationSeconds returns the configured duration in simulated seconds.
func (c Config) DurationSeconds() float64 {
	return c.DurationHours * 3600
}

// Validate checks every numeric field against its documented range and the
// cross-field consistency rules. All failures wrap ErrConfigInvalid.
func (c Config) Validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, fmt.Sprintf(format, args...))
	}

	if c.Grid.Width < 10 || c.Grid.Width > 1000 || c.Grid.Height < 10 || c.Grid.Height > 1000 {
		return fail("grid must be between 10x10 and 1000x1000, got %dx%d", c.Grid.Width, c.Grid.Height)
	}
	if c.Scale.MetersPerGridUnit <= 0 {
		return fail("meters_per_grid_unit must be positive, got %f", c.Scale.MetersPerGridUnit)
	}
	if c.Scale.TimeScale <= 0 {
		return fail("time_scale must be positive, got %f", c.Scale.TimeScale)
	}
	if len(c.Stations) == 0 && c.NumStations < 1 {
		return fail("at least one station required")
	}
	if c.SlotsPerStation < 1 || c.SlotsPerStation > 50 {
		return fail("slots_per_station must be in [1, 50], got %d", c.SlotsPerStation)
	}
	if c.StationChargeRateKW <= 0 {
		return fail("station_charge_rate_kw must be positive, got %f", c.StationChargeRateKW)
	}
	if c.InitialBatteriesPerStation < 0 || c.InitialBatteriesPerStation > c.SlotsPerStation {
		return fail("initial_batteries_per_station must be in [0, slots_per_station], got %d", c.InitialBatteriesPerStation)
	}
	for i, pos := range c.Stations {
		if pos.X < 0 || pos.X >= c.Grid.Width || pos.Y < 0 || pos.Y >= c.Grid.Height {
			return fail("station %d position (%d,%d) outside grid", i, pos.X, pos.Y)
		}
	}
	if c.Scooters.Speed <= 0 {
		return fail("scooter speed must be positive, got %f", c.Scooters.Speed)
	}
	if c.Scooters.SwapThreshold <= 0 || c.Scooters.SwapThreshold >= 1 {
		return fail("swap_threshold must be in (0, 1), got %f", c.Scooters.SwapThreshold)
	}
	if err := c.Scooters.BatterySpec.validate(); err != nil {
		return err
	}
	if !validMovementKind(c.Movement) {
		return fail("unknown movement strategy %q", c.Movement)
	}
	if c.TotalScooters() < 1 {
		return fail("total scooter count must be positive, got %d", c.TotalScooters())
	}
	for i, g := range c.Groups {
		if err := g.validate(i); err != nil {
			return err
		}
	}
	if c.DurationHours <= 0 {
		return fail("duration_hours must be positive, got %f", c.DurationHours)
	}
	if c.SampleInterval <= 0 {
		return fail("sample_interval_seconds must be positive, got %f", c.SampleInterval)
	}
	return nil
}

func (b BatterySpec) validate() error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrConfigInvalid, fmt.Sprintf(format, args...))
	}
	if b.CapacityKWh <= 0 {
		return fail("battery capacity_kwh must be positive, got %f", b.CapacityKWh)
	}
	if b.ChargeRateKW <= 0 {
		return fail("battery charge_rate_kw must be positive, got %f", b.ChargeRateKW)
	}
	if b.ConsumptionRate <= 0 {
		return fail("battery consumption_rate must be positive, got %f", b.ConsumptionRate)
	}
	return nil
}

func (g GroupConfig) validate(idx int) error {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: group %d (%s): %s", ErrConfigInvalid, idx, g.Name, fmt.Sprintf(format, args...))
	}
	if g.Count < 1 {
		return fail("count must be positive, got %d", g.Count)
	}
	if g.Speed < 0 {
		return fail("speed must be non-negative, got %f", g.Speed)
	}
	if g.SwapThreshold < 0 || g.SwapThreshold >= 1 {
		return fail("swap_threshold must be in [0, 1), got %f", g.SwapThreshold)
	}
	if g.Movement != "" && !validMovementKind(g.Movement) {
		return fail("unknown movement strategy %q", g.Movement)
	}
	if g.Activity != "" && !validActivityKind(g.Activity) {
		return fail("unknown activity strategy %q", g.Activity)
	}
	if g.Activity == ActivityScheduled {
		s := g.Schedule
		if s == nil {
			return fail("activity_schedule required for scheduled strategy")
		}
		if s.StartHour < 0 || s.StartHour >= 24 || s.EndHour < 0 || s.EndHour >= 24 {
			return fail("schedule hours must be in [0, 24), got [%f, %f)", s.StartHour, s.EndHour)
		}
		if s.MaxDistancePerDayKm < 0 {
			return fail("max_distance_per_day_km must be non-negative, got %f", s.MaxDistancePerDayKm)
		}
		if s.LowBatteryThreshold <= 0 || s.LowBatteryThreshold >= 1 {
			return fail("low_battery_threshold must be in (0, 1), got %f", s.LowBatteryThreshold)
		}
	}
	return nil
}
