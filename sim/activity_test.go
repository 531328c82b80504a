package sim

import "testing"

func scheduledScooter(level float64, schedule ActivitySchedule) *Scooter {
	return &Scooter{
		ID:      "scooter_0",
		Battery: testBattery("b0", level),
		State:   StateMoving,
		Speed:   0.025,
		Activity: ActivityStrategy{
			Kind:     ActivityScheduled,
			Schedule: schedule,
		},
	}
}

func TestActivity_AlwaysActiveNeverIdles(t *testing.T) {
	sc := &Scooter{Battery: testBattery("b0", 0.05), Activity: ActivityStrategy{Kind: ActivityAlwaysActive}}
	res := sc.Activity.check(sc, 3*3600, 100)
	if res.decision != decisionContinue {
		t.Errorf("always-active at 03:00 with low battery: got decision %d, want continue", res.decision)
	}
}

func TestActivity_WindowBoundaries(t *testing.T) {
	schedule := ActivitySchedule{StartHour: 8, EndHour: 20, LowBatteryThreshold: 0.3}
	tests := []struct {
		name string
		hour float64
		want activityDecision
	}{
		{"before window", 7.99, decisionGoIdle},
		{"window start is inclusive", 8.0, decisionContinue},
		{"mid window", 14.0, decisionContinue},
		{"just before end", 19.99, decisionContinue},
		{"window end is exclusive", 20.0, decisionGoIdle},
		{"late evening", 23.0, decisionGoIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := scheduledScooter(0.9, schedule)
			res := sc.Activity.check(sc, tt.hour*3600, 100)
			if res.decision != tt.want {
				t.Errorf("check at hour %.2f: got decision %d, want %d", tt.hour, res.decision, tt.want)
			}
		})
	}
}

func TestActivity_OutsideWindowWakesAtNextStart(t *testing.T) {
	// GIVEN a scooter checked at 22:00 against an 08:00-20:00 window
	schedule := ActivitySchedule{StartHour: 8, EndHour: 20, LowBatteryThreshold: 0.3}
	sc := scheduledScooter(0.9, schedule)

	res := sc.Activity.check(sc, 22*3600, 100)

	// THEN it idles until 08:00 the next day
	if res.decision != decisionGoIdle {
		t.Fatalf("got decision %d, want goIdle", res.decision)
	}
	want := 22*3600 + 10*3600.0
	if res.wakeAt != want {
		t.Errorf("wakeAt: got %f, want %f", res.wakeAt, want)
	}
}

func TestActivity_WindowWrapsMidnight(t *testing.T) {
	// 22:00 - 06:00 window
	schedule := ActivitySchedule{StartHour: 22, EndHour: 6, LowBatteryThreshold: 0.3}

	active := []float64{22, 23, 0, 3, 5.99}
	for _, hour := range active {
		sc := scheduledScooter(0.9, schedule)
		if res := sc.Activity.check(sc, hour*3600, 100); res.decision != decisionContinue {
			t.Errorf("wrapped window at hour %.2f: got decision %d, want continue", hour, res.decision)
		}
	}
	idle := []float64{6, 12, 21.99}
	for _, hour := range idle {
		sc := scheduledScooter(0.9, schedule)
		if res := sc.Activity.check(sc, hour*3600, 100); res.decision != decisionGoIdle {
			t.Errorf("wrapped window at hour %.2f: got decision %d, want goIdle", hour, res.decision)
		}
	}
}

func TestActivity_LowBatterySwapsBeforeIdle(t *testing.T) {
	schedule := ActivitySchedule{StartHour: 8, EndHour: 20, LowBatteryThreshold: 0.3}
	sc := scheduledScooter(0.25, schedule)

	res := sc.Activity.check(sc, 21*3600, 100)
	if res.decision != decisionSwapThenIdle {
		t.Errorf("low battery outside window: got decision %d, want swapThenIdle", res.decision)
	}
}

func TestActivity_DistanceCap(t *testing.T) {
	// GIVEN a 5 km daily cap with 100 m grid units (50 grid units)
	schedule := ActivitySchedule{StartHour: 8, EndHour: 20, MaxDistancePerDayKm: 5, LowBatteryThreshold: 0.3}

	sc := scheduledScooter(0.9, schedule)
	sc.DistanceToday = 49
	if res := sc.Activity.check(sc, 10*3600, 100); res.decision != decisionContinue {
		t.Errorf("under cap: got decision %d, want continue", res.decision)
	}

	sc.DistanceToday = 50
	res := sc.Activity.check(sc, 10*3600, 100)
	if res.decision != decisionGoIdle {
		t.Fatalf("at cap: got decision %d, want goIdle", res.decision)
	}
	// Wakes when the window opens after the next midnight resets the counter
	want := 86400 + 8*3600.0
	if res.wakeAt != want {
		t.Errorf("cap wakeAt: got %f, want %f", res.wakeAt, want)
	}
}

func TestActivity_ZeroCapMeansUnlimited(t *testing.T) {
	schedule := ActivitySchedule{StartHour: 8, EndHour: 20, LowBatteryThreshold: 0.3}
	sc := scheduledScooter(0.9, schedule)
	sc.DistanceToday = 1e6
	if res := sc.Activity.check(sc, 10*3600, 100); res.decision != decisionContinue {
		t.Errorf("zero cap: got decision %d, want continue", res.decision)
	}
}
