package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// MissKind distinguishes the two miss outcomes.
type MissKind string

const (
	MissNoBattery     MissKind = "no_battery"
	MissPartialCharge MissKind = "partial_charge"
)

// SwapRecord is an immutable log entry for one completed swap. Appended to
// the owning station's log; never mutated or removed except on reset.
type SwapRecord struct {
	Timestamp       float64 `json:"timestamp"`
	ScooterID       string  `json:"scooter_id"`
	StationID       string  `json:"station_id"`
	OldBatteryLevel float64 `json:"old_battery_level"`
	NewBatteryLevel float64 `json:"new_battery_level"`
	WasPartial      bool    `json:"was_partial"`
}

// MissRecord is an immutable log entry for one miss.
type MissRecord struct {
	Timestamp   float64  `json:"timestamp"`
	ScooterID   string   `json:"scooter_id"`
	StationID   string   `json:"station_id"`
	Kind        MissKind `json:"kind"`
	ChargeLevel float64  `json:"charge_level,omitempty"` // partial misses only
}

// RatePoint is one sample of the miss-rate time series.
type RatePoint struct {
	Time     float64 `json:"time"`
	MissRate float64 `json:"miss_rate"`
}

// StationCounters is a per-station swap/miss breakdown.
type StationCounters struct {
	Swaps  int `json:"swaps"`
	Misses int `json:"misses"`
}

// CurrentMetrics is the lightweight running view for live display.
type CurrentMetrics struct {
	TotalSwaps          int     `json:"total_swaps"`
	TotalMisses         int     `json:"total_misses"`
	MissRate            float64 `json:"miss_rate"`
	NoBatteryMisses     int     `json:"no_battery_misses"`
	PartialChargeMisses int     `json:"partial_charge_misses"`
}

// MetricsSummary is the full cumulative report. Derived quantities (rates,
// wait statistics) are computed on read, never stored.
type MetricsSummary struct {
	TotalSwaps            int                        `json:"total_swaps"`
	TotalMisses           int                        `json:"total_misses"`
	NoBatteryMisses       int                        `json:"no_battery_misses"`
	PartialChargeMisses   int                        `json:"partial_charge_misses"`
	MissRate              float64                    `json:"miss_rate"`
	NoBatteryMissRate     float64                    `json:"no_battery_miss_rate"`
	PartialChargeMissRate float64                    `json:"partial_charge_miss_rate"`
	AverageWaitTime       float64                    `json:"average_wait_time"`
	MaxWaitTime           float64                    `json:"max_wait_time"`
	PerStation            map[string]StationCounters `json:"per_station"`
	MissRateHistory       []RatePoint                `json:"miss_rate_history"`
}

// LogQuery selects and orders a page of a station's swap log.
type LogQuery struct {
	SortBy string  // "timestamp" (default) or "battery_level"
	Order  string  // "asc" (default) or "desc"
	Limit  int     // 0 = no limit
	Offset int
	Since  float64 // exclude records at or before this time; 0 = all
}

// Metrics aggregates simulation outcomes: running totals, per-station
// breakdowns, wait-time samples, and a periodically sampled miss-rate time
// series. It observes terminal events only; it never reaches back into
// entity state.
type Metrics struct {
	swaps          []SwapRecord
	misses         []MissRecord
	swapsByStation map[string][]SwapRecord
	perStation     map[string]*StationCounters
	waitSamples    []float64

	history        []RatePoint
	sampleInterval float64
	lastSample     float64
}

// NewMetrics creates an empty aggregator sampling the miss rate every
// sampleInterval simulated seconds.
func NewMetrics(sampleInterval float64) *Metrics {
	return &Metrics{
		swapsByStation: make(map[string][]SwapRecord),
		perStation:     make(map[string]*StationCounters),
		sampleInterval: sampleInterval,
	}
}

func (m *Metrics) station(id string) *StationCounters {
	c, ok := m.perStation[id]
	if !ok {
		c = &StationCounters{}
		m.perStation[id] = c
	}
	return c
}

// RecordSwap appends the swap record and its wait-time sample, and records a
// partial-charge miss when the assigned battery is below full.
func (m *Metrics) RecordSwap(now float64, scooterID, stationID string, oldLevel, newLevel, waitTime float64) {
	rec := SwapRecord{
		Timestamp:       now,
		ScooterID:       scooterID,
		StationID:       stationID,
		OldBatteryLevel: oldLevel,
		NewBatteryLevel: newLevel,
		WasPartial:      newLevel < fullLevelEpsilon,
	}
	m.swaps = append(m.swaps, rec)
	m.swapsByStation[stationID] = append(m.swapsByStation[stationID], rec)
	m.station(stationID).Swaps++
	m.waitSamples = append(m.waitSamples, waitTime)

	if rec.WasPartial {
		m.misses = append(m.misses, MissRecord{
			Timestamp:   now,
			ScooterID:   scooterID,
			StationID:   stationID,
			Kind:        MissPartialCharge,
			ChargeLevel: newLevel,
		})
		m.station(stationID).Misses++
	}
}

// RecordNoBatteryMiss records an arrival that found no battery at all.
func (m *Metrics) RecordNoBatteryMiss(now float64, scooterID, stationID string) {
	m.misses = append(m.misses, MissRecord{
		Timestamp: now,
		ScooterID: scooterID,
		StationID: stationID,
		Kind:      MissNoBattery,
	})
	m.station(stationID).Misses++
}

// Sample appends a miss-rate point when a full sample interval has elapsed
// since the previous one. Called after every dispatch.
func (m *Metrics) Sample(now float64) {
	if now-m.lastSample >= m.sampleInterval {
		m.history = append(m.history, RatePoint{Time: now, MissRate: m.MissRate()})
		m.lastSample = now
	}
}

// TotalSwaps returns the number of completed swaps.
func (m *Metrics) TotalSwaps() int { return len(m.swaps) }

// TotalMisses returns the number of misses of both kinds.
func (m *Metrics) TotalMisses() int { return len(m.misses) }

// NoBatteryMisses counts arrivals that found no battery.
func (m *Metrics) NoBatteryMisses() int {
	n := 0
	for _, miss := range m.misses {
		if miss.Kind == MissNoBattery {
			n++
		}
	}
	return n
}

// PartialChargeMisses counts swaps that assigned a below-full battery.
func (m *Metrics) PartialChargeMisses() int {
	return len(m.misses) - m.NoBatteryMisses()
}

// MissRate returns total misses over total swaps; zero before any swap.
func (m *Metrics) MissRate() float64 {
	if len(m.swaps) == 0 {
		return 0
	}
	return float64(len(m.misses)) / float64(len(m.swaps))
}

// AverageWaitTime returns the mean arrival-to-departure time across swaps.
func (m *Metrics) AverageWaitTime() float64 {
	if len(m.waitSamples) == 0 {
		return 0
	}
	return stat.Mean(m.waitSamples, nil)
}

// MaxWaitTime returns the largest arrival-to-departure time seen.
func (m *Metrics) MaxWaitTime() float64 {
	if len(m.waitSamples) == 0 {
		return 0
	}
	return floats.Max(m.waitSamples)
}

// Current returns the running totals for live display.
func (m *Metrics) Current() CurrentMetrics {
	return CurrentMetrics{
		TotalSwaps:          m.TotalSwaps(),
		TotalMisses:         m.TotalMisses(),
		MissRate:            m.MissRate(),
		NoBatteryMisses:     m.NoBatteryMisses(),
		PartialChargeMisses: m.PartialChargeMisses(),
	}
}

// Summary compiles the full cumulative report.
func (m *Metrics) Summary() MetricsSummary {
	swaps := m.TotalSwaps()
	denom := swaps
	if denom == 0 {
		denom = 1
	}
	perStation := make(map[string]StationCounters, len(m.perStation))
	for id, c := range m.perStation {
		perStation[id] = *c
	}
	history := make([]RatePoint, len(m.history))
	copy(history, m.history)

	return MetricsSummary{
		TotalSwaps:            swaps,
		TotalMisses:           m.TotalMisses(),
		NoBatteryMisses:       m.NoBatteryMisses(),
		PartialChargeMisses:   m.PartialChargeMisses(),
		MissRate:              m.MissRate(),
		NoBatteryMissRate:     float64(m.NoBatteryMisses()) / float64(denom),
		PartialChargeMissRate: float64(m.PartialChargeMisses()) / float64(denom),
		AverageWaitTime:       m.AverageWaitTime(),
		MaxWaitTime:           m.MaxWaitTime(),
		PerStation:            perStation,
		MissRateHistory:       history,
	}
}

// StationLog returns a filtered, sorted, paginated copy of one station's swap
// history. Unknown sort keys fall back to timestamp; unknown orders to
// ascending.
func (m *Metrics) StationLog(stationID string, q LogQuery) []SwapRecord {
	src := m.swapsByStation[stationID]
	records := make([]SwapRecord, 0, len(src))
	for _, rec := range src {
		if q.Since > 0 && rec.Timestamp <= q.Since {
			continue
		}
		records = append(records, rec)
	}

	desc := q.Order == "desc"
	switch q.SortBy {
	case "battery_level":
		sort.SliceStable(records, func(i, j int) bool {
			if desc {
				return records[i].NewBatteryLevel > records[j].NewBatteryLevel
			}
			return records[i].NewBatteryLevel < records[j].NewBatteryLevel
		})
	default: // timestamp; the per-station log is already in time order
		if desc {
			sort.SliceStable(records, func(i, j int) bool {
				return records[i].Timestamp > records[j].Timestamp
			})
		}
	}

	if q.Offset >= len(records) {
		return []SwapRecord{}
	}
	records = records[q.Offset:]
	if q.Limit > 0 && q.Limit < len(records) {
		records = records[:q.Limit]
	}
	return records
}

// Print displays the aggregated metrics at the end of a headless run.
func (m *Metrics) Print() {
	s := m.Summary()
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Total Swaps            : %d\n", s.TotalSwaps)
	fmt.Printf("Total Misses           : %d\n", s.TotalMisses)
	fmt.Printf("  No-Battery Misses    : %d\n", s.NoBatteryMisses)
	fmt.Printf("  Partial Misses       : %d\n", s.PartialChargeMisses)
	fmt.Printf("Miss Rate              : %.4f\n", s.MissRate)
	fmt.Printf("Average Wait Time      : %.1f s\n", s.AverageWaitTime)
	fmt.Printf("Max Wait Time          : %.1f s\n", s.MaxWaitTime)

	ids := make([]string, 0, len(s.PerStation))
	for id := range s.PerStation {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := s.PerStation[id]
		fmt.Printf("  %-12s swaps=%-6d misses=%d\n", id, c.Swaps, c.Misses)
	}
}

// Reset clears all recorded data.
func (m *Metrics) Reset() {
	m.swaps = nil
	m.misses = nil
	m.swapsByStation = make(map[string][]SwapRecord)
	m.perStation = make(map[string]*StationCounters)
	m.waitSamples = nil
	m.history = nil
	m.lastSample = 0
}
