package sim

import "fmt"

// Simulation time directly represents time-of-day in the simulated world:
// 0 s = midnight of day 0, 3600 s = 01:00, 86400 s = midnight of day 1.
// The pacing speed multiplier only affects how fast simulation time advances
// relative to wall-clock time, never these conversions.

const secondsPerDay = 24 * 3600

// HourOfDay returns the hour-of-day component of t as a float in [0, 24).
func HourOfDay(t float64) float64 {
	hours := t / 3600
	return hours - float64(int(hours/24))*24
}

// DayNumber returns the 0-indexed day containing t.
func DayNumber(t float64) int {
	return int(t / secondsPerDay)
}

// NextMidnight returns the simulation time of the first midnight strictly
// after t.
func NextMidnight(t float64) float64 {
	return float64(DayNumber(t)+1) * secondsPerDay
}

// SecondsUntilHour returns the simulation seconds from t until the next
// occurrence of targetHour, wrapping across midnight. Returns a full day when
// t is exactly at targetHour.
func SecondsUntilHour(t, targetHour float64) float64 {
	current := HourOfDay(t)
	hours := targetHour - current
	if hours <= 0 {
		hours += 24
	}
	return hours * 3600
}

// FormatSimTime renders t as a human-readable "Day 1, 08:30" label.
func FormatSimTime(t float64) string {
	day := DayNumber(t)
	hour := HourOfDay(t)
	h := int(hour)
	m := int((hour - float64(h)) * 60)
	return fmt.Sprintf("Day %d, %02d:%02d", day+1, h, m)
}
