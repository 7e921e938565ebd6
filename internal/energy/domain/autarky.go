package energy

import (
	"math"

	metering "home-energy/internal/metering/domain"
)

// SavingsPolicy holds the pricing assumptions behind savings and CO2
// figures. The fallback price applies when no electricity tariff is
// configured; the CO2 factor is the avoided emission mass per unit of
// production.
type SavingsPolicy struct {
	FallbackPricePerUnit float64
	CO2FactorKgPerUnit   float64
}

// DefaultSavingsPolicy mirrors the household defaults: 0.30 per kWh and
// 0.4 kg CO2 avoided per produced kWh.
func DefaultSavingsPolicy() SavingsPolicy {
	return SavingsPolicy{FallbackPricePerUnit: 0.30, CO2FactorKgPerUnit: 0.4}
}

// AutarkySavings captures the self-sufficiency figures for a period.
// Autarky and SelfConsumption are percentages; Savings is monetary;
// CO2Saved is kilograms.
type AutarkySavings struct {
	Autarky         float64 `json:"autarky"`
	SelfConsumption float64 `json:"self_consumption"`
	Savings         float64 `json:"savings"`
	CO2Saved        float64 `json:"co2_saved"`
}

// AutarkyAndSavings derives self-sufficiency ratios and monetary savings
// from period consumption, production and grid feed-in.
//
// Directly consumed production (production minus export, floored at zero)
// is valued at the electricity tariff price, or the policy fallback when no
// tariff is passed. Autarky is special-cased to 100% when there is
// production but no recorded consumption. Degenerate inputs never yield
// NaN or Inf; every field is coerced to zero instead.
func AutarkyAndSavings(consumption, production, gridFeedIn float64, tariff *metering.EnergyProvider, policy SavingsPolicy) AutarkySavings {
	directConsumption := math.Max(0, production-gridFeedIn)

	price := policy.FallbackPricePerUnit
	if tariff != nil {
		price = tariff.PricePerUnit
	}

	result := AutarkySavings{
		Savings:  directConsumption * price,
		CO2Saved: production * policy.CO2FactorKgPerUnit,
	}

	switch {
	case consumption > 0:
		result.Autarky = directConsumption / consumption * 100
	case production > 0:
		result.Autarky = 100
	}

	if production > 0 {
		result.SelfConsumption = directConsumption / production * 100
	}

	result.Autarky = zeroIfNotFinite(result.Autarky)
	result.SelfConsumption = zeroIfNotFinite(result.SelfConsumption)
	result.Savings = zeroIfNotFinite(result.Savings)
	result.CO2Saved = zeroIfNotFinite(result.CO2Saved)
	return result
}

func zeroIfNotFinite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}
