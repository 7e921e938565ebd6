package energy

import (
	"reflect"
	"testing"
	"time"

	metering "home-energy/internal/metering/domain"
	readings "home-energy/internal/readings/domain"
)

func electricityReading(meterID string, at time.Time, value float64) readings.MeterReading {
	return readings.MeterReading{
		ID:        readings.NewID(),
		MeterID:   meterID,
		Type:      metering.Electricity,
		Value:     value,
		Timestamp: at,
		Unit:      "kWh",
	}
}

func TestTotalForPeriodUsesAnchor(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	snapshot := []readings.MeterReading{
		electricityReading("m1", start.AddDate(0, 0, -10), 100),
		electricityReading("m1", start.AddDate(0, 0, 5), 150),
		electricityReading("m1", start.AddDate(0, 0, 20), 170),
	}

	got := TotalForPeriod(snapshot, Interval{Start: start, End: end}, []metering.EnergyType{metering.Electricity})
	if got.Total != 70 {
		t.Fatalf("total = %v, want 70 (end value minus pre-period anchor)", got.Total)
	}
	if got.ReadingCount != 2 {
		t.Fatalf("reading count = %d, want 2", got.ReadingCount)
	}
}

func TestTotalForPeriodWithoutAnchor(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	snapshot := []readings.MeterReading{
		electricityReading("m1", start.AddDate(0, 0, 2), 100),
		electricityReading("m1", start.AddDate(0, 0, 10), 150),
		electricityReading("m1", start.AddDate(0, 0, 20), 170),
	}

	got := TotalForPeriod(snapshot, Interval{Start: start, End: end}, []metering.EnergyType{metering.Electricity})
	if got.Total != 70 {
		t.Fatalf("total = %v, want 70 (first in-period reading as baseline)", got.Total)
	}
	if got.ReadingCount != 3 {
		t.Fatalf("reading count = %d, want 3", got.ReadingCount)
	}
}

func TestTotalForPeriodMonthlyScenario(t *testing.T) {
	snapshot := []readings.MeterReading{
		electricityReading("M1", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 1000),
		electricityReading("M1", time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), 1200),
		electricityReading("M1", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 1450),
	}
	interval := Interval{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 2, 29, 23, 59, 59, 0, time.UTC),
	}

	got := TotalForPeriod(snapshot, interval, []metering.EnergyType{metering.Electricity})
	if got.Total != 250 || got.ReadingCount != 1 {
		t.Fatalf("got {%v, %d}, want {250, 1}", got.Total, got.ReadingCount)
	}
}

func TestTotalForPeriodUnorderedInput(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	// Deliberately shuffled: storage order carries no meaning.
	snapshot := []readings.MeterReading{
		electricityReading("m1", start.AddDate(0, 0, 20), 170),
		electricityReading("m1", start.AddDate(0, 0, -10), 100),
		electricityReading("m1", start.AddDate(0, 0, 5), 150),
	}

	got := TotalForPeriod(snapshot, Interval{Start: start, End: end}, []metering.EnergyType{metering.Electricity})
	if got.Total != 70 {
		t.Fatalf("total = %v, want 70 regardless of input order", got.Total)
	}
}

func TestTotalForPeriodMultipleMeters(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	snapshot := []readings.MeterReading{
		electricityReading("m1", start.AddDate(0, 0, -5), 100),
		electricityReading("m1", start.AddDate(0, 0, 15), 130),
		electricityReading("m2", start.AddDate(0, 0, -5), 500),
		electricityReading("m2", start.AddDate(0, 0, 15), 520),
		// No in-period data: must not contribute.
		electricityReading("m3", start.AddDate(0, 0, -5), 9999),
	}

	got := TotalForPeriod(snapshot, Interval{Start: start, End: end}, []metering.EnergyType{metering.Electricity})
	if got.Total != 50 {
		t.Fatalf("total = %v, want 50 across both meters", got.Total)
	}
	if got.ReadingCount != 2 {
		t.Fatalf("reading count = %d, want 2", got.ReadingCount)
	}
}

func TestTotalForPeriodKeepsNegativeDelta(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	// Corrupted history, e.g. from a bulk import. The aggregator must
	// report the true signed value, not crash or clamp.
	snapshot := []readings.MeterReading{
		electricityReading("m1", start.AddDate(0, 0, -5), 300),
		electricityReading("m1", start.AddDate(0, 0, 10), 250),
	}

	got := TotalForPeriod(snapshot, Interval{Start: start, End: end}, []metering.EnergyType{metering.Electricity})
	if got.Total != -50 {
		t.Fatalf("total = %v, want -50", got.Total)
	}
}

func TestTotalForPeriodEmptySnapshot(t *testing.T) {
	interval := ResolvePeriod(PeriodMonthly, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC))
	got := TotalForPeriod(nil, interval, []metering.EnergyType{metering.Electricity})
	if got.Total != 0 || got.ReadingCount != 0 {
		t.Fatalf("empty snapshot must aggregate to zero, got %+v", got)
	}
}

func TestTotalForPeriodIdempotent(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	snapshot := []readings.MeterReading{
		electricityReading("m1", start.AddDate(0, 0, -10), 100),
		electricityReading("m1", start.AddDate(0, 0, 5), 150),
		electricityReading("m2", start.AddDate(0, 0, 6), 30),
	}
	interval := Interval{Start: start, End: end}
	types := []metering.EnergyType{metering.Electricity}

	first := TotalForPeriod(snapshot, interval, types)
	second := TotalForPeriod(snapshot, interval, types)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("aggregation not idempotent: %+v vs %+v", first, second)
	}
}

func TestTotalForPeriodBitStableAcrossMeters(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 31, 23, 59, 59, 0, time.UTC)
	// Per-meter deltas 0.1, 0.2 and 0.3: float addition is not associative,
	// so any variation in summation order shows up in the result bits.
	snapshot := []readings.MeterReading{
		electricityReading("m1", start.AddDate(0, 0, 1), 10.0),
		electricityReading("m1", start.AddDate(0, 0, 2), 10.1),
		electricityReading("m2", start.AddDate(0, 0, 1), 20.0),
		electricityReading("m2", start.AddDate(0, 0, 2), 20.2),
		electricityReading("m3", start.AddDate(0, 0, 1), 30.0),
		electricityReading("m3", start.AddDate(0, 0, 2), 30.3),
	}
	interval := Interval{Start: start, End: end}
	types := []metering.EnergyType{metering.Electricity}

	want := TotalForPeriod(snapshot, interval, types)
	for i := 0; i < 2000; i++ {
		if got := TotalForPeriod(snapshot, interval, types); got != want {
			t.Fatalf("call %d: total %v differs from first call %v", i, got.Total, want.Total)
		}
	}
}
