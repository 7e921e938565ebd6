package energy

import (
	"math"
	"sort"
	"time"

	metering "home-energy/internal/metering/domain"
	readings "home-energy/internal/readings/domain"
)

// AnnotatedReading is a reading enriched for list display with the change
// since its chronological predecessor and the running total since the
// meter's first-ever reading.
type AnnotatedReading struct {
	readings.MeterReading
	Difference       float64 `json:"difference"`
	TotalConsumption float64 `json:"total_consumption"`
}

// WithDifferences annotates every reading with its per-entry difference
// and running total, then returns the whole set newest-first for display.
//
// Per meter, sorted oldest-first: under the cumulative policy the first
// entry's difference is zero and later entries diff against their
// predecessor; under the period-amount policy every entry's difference is
// its own value, since there is no counter to diff. The running total
// starts at zero at the meter's first reading under either policy and
// accumulates the differences from there.
func WithDifferences(snapshot []readings.MeterReading, devices []metering.Device) []AnnotatedReading {
	annotated := make([]AnnotatedReading, 0, len(snapshot))
	groups := readings.GroupByMeter(snapshot)

	// Meter id order plus the stable sort below pins the display order of
	// readings sharing a timestamp.
	for _, meterID := range readings.MeterIDs(snapshot) {
		sorted := readings.SortAscending(groups[meterID])
		policy := metering.PolicyCumulative
		if len(sorted) > 0 {
			policy = metering.PolicyForMeter(devices, meterID, sorted[0].DeviceID)
		}

		var runningTotal float64
		for i, reading := range sorted {
			var difference float64
			switch {
			case policy == metering.PolicyPeriodAmount:
				difference = reading.Value
			case i > 0:
				difference = reading.Value - sorted[i-1].Value
			}
			if i > 0 {
				runningTotal += difference
			}
			annotated = append(annotated, AnnotatedReading{
				MeterReading:     reading,
				Difference:       difference,
				TotalConsumption: runningTotal,
			})
		}
	}

	sort.SliceStable(annotated, func(i, j int) bool {
		return annotated[i].Timestamp.After(annotated[j].Timestamp)
	})
	return annotated
}

// DailyCostRow is one day of the daily consumption and cost table.
type DailyCostRow struct {
	Day         time.Time                       `json:"day"`
	Consumption map[metering.EnergyType]float64 `json:"consumption"`
	Cost        map[metering.EnergyType]float64 `json:"cost"`
	TotalCost   float64                         `json:"total_cost"`
}

// DailyCostTable buckets a reading set by calendar date and derives a
// day-over-day consumption and cost row per day. Per meter and day the
// highest observed reading counts; the delta against the meter's previous
// recorded day is attributed to that day, clamped at zero for display, and
// priced with the tariff for the meter's energy type. Days where no type
// consumed anything are dropped.
func DailyCostTable(snapshot []readings.MeterReading, providers []metering.EnergyProvider) []DailyCostRow {
	type meterDay struct {
		day   time.Time
		value float64
	}

	// Highest reading per meter per calendar date.
	maxPerDay := make(map[string]map[time.Time]float64)
	meterType := make(map[string]metering.EnergyType)
	for _, reading := range snapshot {
		day := dayOf(reading.Timestamp)
		if maxPerDay[reading.MeterID] == nil {
			maxPerDay[reading.MeterID] = make(map[time.Time]float64)
		}
		if existing, ok := maxPerDay[reading.MeterID][day]; !ok || reading.Value > existing {
			maxPerDay[reading.MeterID][day] = reading.Value
		}
		meterType[reading.MeterID] = reading.Type
	}

	// Day-over-day deltas per meter, accumulated per type per day. Meters
	// fold in id order so the per-type sums are reproducible.
	consumptionByDay := make(map[time.Time]map[metering.EnergyType]float64)
	for _, meterID := range readings.MeterIDs(snapshot) {
		days := maxPerDay[meterID]
		series := make([]meterDay, 0, len(days))
		for day, value := range days {
			series = append(series, meterDay{day: day, value: value})
		}
		sort.Slice(series, func(i, j int) bool { return series[i].day.Before(series[j].day) })

		for i := 1; i < len(series); i++ {
			delta := math.Max(0, series[i].value-series[i-1].value)
			if consumptionByDay[series[i].day] == nil {
				consumptionByDay[series[i].day] = make(map[metering.EnergyType]float64)
			}
			consumptionByDay[series[i].day][meterType[meterID]] += delta
		}
	}

	days := make([]time.Time, 0, len(consumptionByDay))
	for day := range consumptionByDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	rows := make([]DailyCostRow, 0, len(days))
	for _, day := range days {
		perType := consumptionByDay[day]
		row := DailyCostRow{
			Day:         day,
			Consumption: perType,
			Cost:        make(map[metering.EnergyType]float64, len(perType)),
		}
		var consumed float64
		for _, energyType := range typesInOrder(perType) {
			amount := perType[energyType]
			consumed += amount
			if tariff, ok := metering.ProviderForType(providers, energyType, day); ok {
				cost := amount * tariff.PricePerUnit
				row.Cost[energyType] = cost
				row.TotalCost += cost
			} else {
				row.Cost[energyType] = 0
			}
		}
		if consumed == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func typesInOrder(perType map[metering.EnergyType]float64) []metering.EnergyType {
	list := make([]metering.EnergyType, 0, len(perType))
	for energyType := range perType {
		list = append(list, energyType)
	}
	sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
	return list
}

func dayOf(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
