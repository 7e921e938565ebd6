package energy

import (
	"math"
	"testing"

	metering "home-energy/internal/metering/domain"
)

func TestAutarkyAndSavings(t *testing.T) {
	tariff := &metering.EnergyProvider{Type: metering.Electricity, PricePerUnit: 0.25}
	got := AutarkyAndSavings(400, 300, 100, tariff, DefaultSavingsPolicy())

	if got.Autarky != 50 {
		t.Fatalf("autarky = %v, want 50", got.Autarky)
	}
	if math.Abs(got.SelfConsumption-66.666666) > 0.001 {
		t.Fatalf("self consumption = %v, want ~66.67", got.SelfConsumption)
	}
	if got.Savings != 200*0.25 {
		t.Fatalf("savings = %v, want 50", got.Savings)
	}
	if got.CO2Saved != 300*0.4 {
		t.Fatalf("co2 saved = %v, want 120", got.CO2Saved)
	}
}

func TestAutarkyFullWithoutConsumption(t *testing.T) {
	got := AutarkyAndSavings(0, 50, 0, nil, DefaultSavingsPolicy())
	if got.Autarky != 100 {
		t.Fatalf("autarky = %v, want special-cased 100", got.Autarky)
	}
	if got.SelfConsumption != 100 {
		t.Fatalf("self consumption = %v, want 100", got.SelfConsumption)
	}
}

func TestAutarkyAllZero(t *testing.T) {
	got := AutarkyAndSavings(0, 0, 0, nil, DefaultSavingsPolicy())
	for name, value := range map[string]float64{
		"autarky":          got.Autarky,
		"self_consumption": got.SelfConsumption,
		"savings":          got.Savings,
		"co2_saved":        got.CO2Saved,
	} {
		if value != 0 {
			t.Fatalf("%s = %v, want 0", name, value)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			t.Fatalf("%s is not finite", name)
		}
	}
}

func TestAutarkyFallbackPrice(t *testing.T) {
	got := AutarkyAndSavings(100, 80, 20, nil, DefaultSavingsPolicy())
	if got.Savings != 60*0.30 {
		t.Fatalf("savings = %v, want fallback-priced 18", got.Savings)
	}
}

func TestAutarkyExportExceedsProduction(t *testing.T) {
	// Feed-in above production (meter drift): direct consumption floors at
	// zero instead of going negative.
	got := AutarkyAndSavings(100, 50, 80, nil, DefaultSavingsPolicy())
	if got.Autarky != 0 || got.Savings != 0 {
		t.Fatalf("got autarky %v savings %v, want zeros", got.Autarky, got.Savings)
	}
}
