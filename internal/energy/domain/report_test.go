package energy

import (
	"testing"
	"time"

	metering "home-energy/internal/metering/domain"
	readings "home-energy/internal/readings/domain"
)

func TestWithDifferencesCumulative(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	snapshot := []readings.MeterReading{
		electricityReading("m1", base, 1000),
		electricityReading("m1", base.AddDate(0, 1, 0), 1200),
		electricityReading("m1", base.AddDate(0, 2, 0), 1450),
	}

	got := WithDifferences(snapshot, nil)
	if len(got) != 3 {
		t.Fatalf("annotated %d readings, want 3", len(got))
	}
	// Newest first for display.
	if got[0].Value != 1450 || got[2].Value != 1000 {
		t.Fatalf("expected descending timestamp order, got values %v, %v, %v", got[0].Value, got[1].Value, got[2].Value)
	}
	if got[2].Difference != 0 || got[2].TotalConsumption != 0 {
		t.Fatalf("first reading must annotate as zero, got diff %v total %v", got[2].Difference, got[2].TotalConsumption)
	}
	if got[1].Difference != 200 || got[1].TotalConsumption != 200 {
		t.Fatalf("second reading: diff %v total %v, want 200/200", got[1].Difference, got[1].TotalConsumption)
	}
	if got[0].Difference != 250 || got[0].TotalConsumption != 450 {
		t.Fatalf("third reading: diff %v total %v, want 250/450", got[0].Difference, got[0].TotalConsumption)
	}
}

func TestWithDifferencesPeriodAmountPolicy(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	snapshot := []readings.MeterReading{
		solarReading("pv1", base, 5),
		solarReading("pv1", base.AddDate(0, 0, 1), 7),
		solarReading("pv1", base.AddDate(0, 0, 2), 3),
	}
	devices := []metering.Device{solarDevice("pv1", metering.PolicyPeriodAmount)}

	got := WithDifferences(snapshot, devices)
	// Oldest entry is last after the display sort.
	if got[2].Difference != 5 {
		t.Fatalf("sum-policy difference = %v, want the raw value 5", got[2].Difference)
	}
	if got[1].Difference != 7 || got[0].Difference != 3 {
		t.Fatalf("sum-policy differences = %v, %v, want 7, 3", got[1].Difference, got[0].Difference)
	}
	if got[0].TotalConsumption != 10 {
		t.Fatalf("running total = %v, want 10", got[0].TotalConsumption)
	}
}

func TestWithDifferencesGroupsPerMeter(t *testing.T) {
	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	snapshot := []readings.MeterReading{
		electricityReading("m1", base, 100),
		electricityReading("m2", base.Add(time.Hour), 9000),
		electricityReading("m1", base.AddDate(0, 0, 1), 110),
	}

	got := WithDifferences(snapshot, nil)
	for _, annotated := range got {
		if annotated.MeterID == "m2" && annotated.Difference != 0 {
			t.Fatalf("meter m2 first reading diffed against another meter: %v", annotated.Difference)
		}
	}
}

func TestWithDifferencesStableOrderForEqualTimestamps(t *testing.T) {
	at := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	snapshot := []readings.MeterReading{
		electricityReading("m3", at, 300),
		electricityReading("m1", at, 100),
		electricityReading("m2", at, 200),
	}

	want := []string{"m1", "m2", "m3"}
	for i := 0; i < 100; i++ {
		got := WithDifferences(snapshot, nil)
		for j, annotated := range got {
			if annotated.MeterID != want[j] {
				t.Fatalf("call %d: meter order %v at row %d, want %v", i, annotated.MeterID, j, want[j])
			}
		}
	}
}

func TestDailyCostTable(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	day3 := day1.AddDate(0, 0, 2)
	snapshot := []readings.MeterReading{
		electricityReading("m1", day1, 1000),
		// Two readings the same day: the daily maximum counts.
		electricityReading("m1", day2, 1008),
		electricityReading("m1", day2.Add(8*time.Hour), 1010),
		electricityReading("m1", day3, 1010),
	}
	providers := []metering.EnergyProvider{
		{ID: "p1", Type: metering.Electricity, PricePerUnit: 0.5},
	}

	rows := DailyCostTable(snapshot, providers)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1 (zero-consumption day dropped)", len(rows))
	}
	row := rows[0]
	if !row.Day.Equal(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("row day = %s", row.Day)
	}
	if row.Consumption[metering.Electricity] != 10 {
		t.Fatalf("consumption = %v, want 10", row.Consumption[metering.Electricity])
	}
	if row.TotalCost != 5 {
		t.Fatalf("total cost = %v, want 5", row.TotalCost)
	}
}

func TestDailyCostTableBitStableAcrossMeters(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)
	// Deltas 0.1, 0.2 and 0.3 from three meters land on the same day and
	// type; the per-day sum must come out bit-equal on every call.
	snapshot := []readings.MeterReading{
		electricityReading("m1", day1, 10.0),
		electricityReading("m1", day2, 10.1),
		electricityReading("m2", day1, 20.0),
		electricityReading("m2", day2, 20.2),
		electricityReading("m3", day1, 30.0),
		electricityReading("m3", day2, 30.3),
	}
	providers := []metering.EnergyProvider{
		{ID: "p1", Type: metering.Electricity, PricePerUnit: 1},
	}

	first := DailyCostTable(snapshot, providers)
	if len(first) != 1 {
		t.Fatalf("got %d rows, want 1", len(first))
	}
	for i := 0; i < 2000; i++ {
		again := DailyCostTable(snapshot, providers)
		if again[0].TotalCost != first[0].TotalCost {
			t.Fatalf("call %d: total cost %v differs from first call %v", i, again[0].TotalCost, first[0].TotalCost)
		}
		if again[0].Consumption[metering.Electricity] != first[0].Consumption[metering.Electricity] {
			t.Fatalf("call %d: consumption differs across calls", i)
		}
	}
}

func TestDailyCostTableWithoutTariff(t *testing.T) {
	day1 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	snapshot := []readings.MeterReading{
		typedReading("w1", metering.Water, day1, 100),
		typedReading("w1", metering.Water, day1.AddDate(0, 0, 1), 101),
	}

	rows := DailyCostTable(snapshot, nil)
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Consumption[metering.Water] != 1 || rows[0].TotalCost != 0 {
		t.Fatalf("row = %+v, want consumption 1 at zero cost", rows[0])
	}
}
