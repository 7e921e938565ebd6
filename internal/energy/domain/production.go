package energy

import (
	metering "home-energy/internal/metering/domain"
	readings "home-energy/internal/readings/domain"
)

// ProductionForPeriod computes the energy produced by all solar/production
// meters across the interval.
//
// The arithmetic branches on the device's accumulation policy:
// period-amount meters log each yield as a standalone figure, so in-period
// readings are summed; cumulative meters are measured as the last reading
// at or before the interval end minus the anchor before the interval
// start. Without an anchor the first reading at or after the start is the
// baseline, so a brand-new meter contributes zero rather than its full
// counter value.
func ProductionForPeriod(snapshot []readings.MeterReading, devices []metering.Device, interval Interval) float64 {
	var total float64
	for _, device := range devices {
		if !device.IsProductionMeter() {
			continue
		}
		series := readings.SortAscending(seriesForDevice(snapshot, device.ID))
		if len(series) == 0 {
			continue
		}

		switch device.EffectivePolicy() {
		case metering.PolicyPeriodAmount:
			for _, reading := range series {
				if interval.Contains(reading.Timestamp) {
					total += reading.Value
				}
			}
		default:
			total += cumulativeDelta(series, interval)
		}
	}
	return total
}

func seriesForDevice(snapshot []readings.MeterReading, deviceID string) []readings.MeterReading {
	var series []readings.MeterReading
	for _, reading := range snapshot {
		if reading.MeterID == deviceID || reading.DeviceID == deviceID {
			series = append(series, reading)
		}
	}
	return series
}

// cumulativeDelta measures a sorted cumulative series across an interval:
// last reading at or before End, minus the anchor before Start (or the
// first reading at or after Start when no anchor exists).
func cumulativeDelta(sorted []readings.MeterReading, interval Interval) float64 {
	var last *readings.MeterReading
	for i := range sorted {
		if !sorted[i].Timestamp.After(interval.End) {
			last = &sorted[i]
		}
	}
	if last == nil {
		return 0
	}

	var anchor *readings.MeterReading
	for i := range sorted {
		if sorted[i].Timestamp.Before(interval.Start) {
			anchor = &sorted[i]
		}
	}
	if anchor != nil {
		return last.Value - anchor.Value
	}
	for i := range sorted {
		if !sorted[i].Timestamp.Before(interval.Start) {
			return last.Value - sorted[i].Value
		}
	}
	return 0
}
