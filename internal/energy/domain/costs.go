package energy

import (
	"time"

	metering "home-energy/internal/metering/domain"
	readings "home-energy/internal/readings/domain"
)

// Costs is the per-type and total monetary cost for a period.
type Costs struct {
	Electricity float64 `json:"electricity"`
	Gas         float64 `json:"gas"`
	Water       float64 `json:"water"`
	Total       float64 `json:"total"`
}

// RealConsumption is the measured per-type consumption for a period,
// independent of whether a tariff exists to price it.
type RealConsumption struct {
	Electricity float64 `json:"electricity"`
	Gas         float64 `json:"gas"`
	Water       float64 `json:"water"`
}

// DetailedCosts is the full derived picture for one period. It is never
// persisted; every call recomputes it from the reading snapshot.
type DetailedCosts struct {
	Period          Interval        `json:"period"`
	Costs           Costs           `json:"costs"`
	RealConsumption RealConsumption `json:"real_consumption"`
	Production      float64         `json:"production"`
	Consumption     float64         `json:"consumption"`
	GridFeedIn      float64         `json:"grid_feed_in"`
	Autarky         float64         `json:"autarky"`
	SelfConsumption float64         `json:"self_consumption"`
	Savings         float64         `json:"savings"`
	CO2Saved        float64         `json:"co2_saved"`
}

// DetailedCostsForPeriod resolves the period against the reference date
// and combines delta aggregation with the tariff snapshot into the full
// cost breakdown. Types without a tariff report their consumption with a
// cost of zero. Consumption and feed-in use the trailing-delta
// arithmetic; production goes through the device registry when production
// meters are registered, so per-device accumulation policies apply, and
// falls back to the type-scoped trailing delta for unregistered meters.
func DetailedCostsForPeriod(
	snapshot []readings.MeterReading,
	providers []metering.EnergyProvider,
	devices []metering.Device,
	period Period,
	reference time.Time,
	policy SavingsPolicy,
) DetailedCosts {
	interval := ResolvePeriod(period, reference)

	electricity := TotalForPeriod(snapshot, interval, []metering.EnergyType{metering.Electricity}).Total
	gas := TotalForPeriod(snapshot, interval, []metering.EnergyType{metering.Gas}).Total
	water := TotalForPeriod(snapshot, interval, []metering.EnergyType{metering.Water}).Total
	gridFeedIn := TotalForPeriod(snapshot, interval, metering.FeedInTypes()).Total

	production := TotalForPeriod(snapshot, interval, metering.ProductionTypes()).Total
	if hasProductionMeter(devices) {
		production = ProductionForPeriod(snapshot, devices, interval)
	}

	result := DetailedCosts{
		Period: interval,
		RealConsumption: RealConsumption{
			Electricity: electricity,
			Gas:         gas,
			Water:       water,
		},
		Production:  production,
		Consumption: electricity,
		GridFeedIn:  gridFeedIn,
	}

	result.Costs.Electricity = costFor(providers, metering.Electricity, electricity, reference)
	result.Costs.Gas = costFor(providers, metering.Gas, gas, reference)
	result.Costs.Water = costFor(providers, metering.Water, water, reference)
	result.Costs.Total = result.Costs.Electricity + result.Costs.Gas + result.Costs.Water

	var electricityTariff *metering.EnergyProvider
	if tariff, ok := metering.ProviderForType(providers, metering.Electricity, reference); ok {
		electricityTariff = &tariff
	}
	savings := AutarkyAndSavings(electricity, production, gridFeedIn, electricityTariff, policy)
	result.Autarky = savings.Autarky
	result.SelfConsumption = savings.SelfConsumption
	result.Savings = savings.Savings
	result.CO2Saved = savings.CO2Saved

	return result
}

func hasProductionMeter(devices []metering.Device) bool {
	for _, device := range devices {
		if device.IsProductionMeter() {
			return true
		}
	}
	return false
}

func costFor(providers []metering.EnergyProvider, energyType metering.EnergyType, consumption float64, at time.Time) float64 {
	tariff, ok := metering.ProviderForType(providers, energyType, at)
	if !ok {
		return 0
	}
	return consumption*tariff.PricePerUnit + tariff.BasicFee
}
