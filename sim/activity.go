package sim

// ActivityKind selects when a scooter is allowed to be active.
type ActivityKind string

const (
	// ActivityAlwaysActive never idles the scooter.
	ActivityAlwaysActive ActivityKind = "always_active"

	// ActivityScheduled confines activity to a daily hour window with an
	// optional distance cap.
	ActivityScheduled ActivityKind = "scheduled"
)

// validActivityKind reports whether k names a known activity behavior.
func validActivityKind(k ActivityKind) bool {
	return k == ActivityAlwaysActive || k == ActivityScheduled
}

// ActivitySchedule parameterizes the scheduled activity behavior.
type ActivitySchedule struct {
	// StartHour and EndHour bound the active window [StartHour, EndHour) in
	// hours of day; EndHour < StartHour wraps across midnight.
	StartHour float64
	EndHour   float64

	// MaxDistancePerDayKm caps the real-world distance per simulated day.
	// Zero means unlimited.
	MaxDistancePerDayKm float64

	// LowBatteryThreshold is the charge fraction at or below which a scooter
	// swaps before going idle, so it starts the next window charged.
	LowBatteryThreshold float64
}

// ActivityStrategy is a tagged variant: Kind selects the behavior, Schedule
// carries the parameters for the scheduled variant.
type ActivityStrategy struct {
	Kind     ActivityKind
	Schedule ActivitySchedule
}

// activityDecision is the outcome of an activity check.
type activityDecision int

const (
	decisionContinue activityDecision = iota
	decisionGoIdle
	decisionSwapThenIdle
)

// activityResult pairs a decision with the wake-up time for idle decisions.
type activityResult struct {
	decision activityDecision
	wakeAt   float64
}

// withinWindow reports whether hour lies in [StartHour, EndHour), wrapping
// across midnight when EndHour < StartHour.
func (s ActivitySchedule) withinWindow(hour float64) bool {
	if s.StartHour <= s.EndHour {
		return hour >= s.StartHour && hour < s.EndHour
	}
	return hour >= s.StartHour || hour < s.EndHour
}

// distanceCapReached reports whether the scooter's daily travel, converted to
// kilometers, has reached the cap.
func (s ActivitySchedule) distanceCapReached(sc *Scooter, metersPerGridUnit float64) bool {
	if s.MaxDistancePerDayKm <= 0 {
		return false
	}
	km := sc.DistanceToday * metersPerGridUnit / 1000
	return km >= s.MaxDistancePerDayKm
}

// check evaluates whether the scooter may stay active at time now.
// Evaluated on every movement tick and at activity-window-change boundaries.
func (a ActivityStrategy) check(sc *Scooter, now, metersPerGridUnit float64) activityResult {
	if a.Kind != ActivityScheduled {
		return activityResult{decision: decisionContinue}
	}

	s := a.Schedule
	hour := HourOfDay(now)

	if !s.withinWindow(hour) {
		wake := now + SecondsUntilHour(now, s.StartHour)
		if sc.Battery.ChargeLevel() <= s.LowBatteryThreshold {
			return activityResult{decision: decisionSwapThenIdle, wakeAt: wake}
		}
		return activityResult{decision: decisionGoIdle, wakeAt: wake}
	}

	if s.distanceCapReached(sc, metersPerGridUnit) {
		// Idle until the window reopens after the next day boundary resets
		// the distance counter.
		wake := NextMidnight(now) + s.StartHour*3600
		if sc.Battery.ChargeLevel() <= s.LowBatteryThreshold {
			return activityResult{decision: decisionSwapThenIdle, wakeAt: wake}
		}
		return activityResult{decision: decisionGoIdle, wakeAt: wake}
	}

	return activityResult{decision: decisionContinue}
}
