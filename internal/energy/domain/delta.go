package energy

import (
	metering "home-energy/internal/metering/domain"
	readings "home-energy/internal/readings/domain"
)

// PeriodTotal is the net counter change across all meters in scope for an
// interval, plus the number of readings that fell inside it.
type PeriodTotal struct {
	Total        float64 `json:"total"`
	ReadingCount int     `json:"reading_count"`
}

// TotalForPeriod computes the net change in cumulative reading value for
// all meters of the given types across the interval.
//
// Each meter is measured against its latest known state at period start:
// the most recent reading strictly before the interval ("anchor") is the
// baseline, and the last reading inside the interval is the end value.
// A meter with no anchor (its earliest data falls inside the interval)
// degrades to the intra-period delta, so a meter's first-ever reading never
// produces a spurious jump from zero. Meters with no in-period readings
// contribute nothing.
//
// Negative deltas are returned as-is; display layers clamp where needed,
// and keeping the signed value makes historical corruption visible.
// Meters fold in id order, so identical snapshots total to identical bits.
func TotalForPeriod(snapshot []readings.MeterReading, interval Interval, types []metering.EnergyType) PeriodTotal {
	scoped := readings.FilterByType(snapshot, types)
	groups := readings.GroupByMeter(scoped)

	var result PeriodTotal
	for _, meterID := range readings.MeterIDs(scoped) {
		sorted := readings.SortAscending(groups[meterID])

		var inPeriod []readings.MeterReading
		for _, reading := range sorted {
			if interval.Contains(reading.Timestamp) {
				inPeriod = append(inPeriod, reading)
			}
		}
		if len(inPeriod) == 0 {
			continue
		}

		endValue := inPeriod[len(inPeriod)-1].Value
		baseline := inPeriod[0].Value
		for _, reading := range sorted {
			if reading.Timestamp.Before(interval.Start) {
				baseline = reading.Value
			} else {
				break
			}
		}

		result.Total += endValue - baseline
		result.ReadingCount += len(inPeriod)
	}
	return result
}
