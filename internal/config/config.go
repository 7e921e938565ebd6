// Package config loads the household policy configuration: validator
// thresholds, pricing fallbacks and the emission factor. Wiring-level
// settings (addresses, secrets, database URL) stay environment variables
// in main.
package config

import (
	"errors"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	energy "home-energy/internal/energy/domain"
	metering "home-energy/internal/metering/domain"
	readings "home-energy/internal/readings/domain"
)

// ValidationConfig holds per-type daily consumption warning thresholds.
type ValidationConfig struct {
	Thresholds map[string]float64 `yaml:"thresholds"`
	Default    float64            `yaml:"default"`
}

// SavingsConfig holds the pricing assumptions for savings figures.
type SavingsConfig struct {
	FallbackPrice float64 `yaml:"fallback_price"`
	CO2Factor     float64 `yaml:"co2_factor"`
}

// Policy is the domain policy configuration.
type Policy struct {
	Validation ValidationConfig `yaml:"validation"`
	Savings    SavingsConfig    `yaml:"savings"`
	Currency   string           `yaml:"currency"`
}

// LoadPolicy loads policy from the yaml file named by ENERGY_POLICY_CONFIG
// (optional) on top of built-in defaults and env overrides.
func LoadPolicy() (Policy, error) {
	policy := Policy{
		Validation: ValidationConfig{
			Thresholds: map[string]float64{
				string(metering.Electricity): readings.DefaultElectricityPerDay,
				string(metering.Gas):         readings.DefaultGasPerDay,
				string(metering.Water):       readings.DefaultWaterPerDay,
			},
			Default: readings.DefaultThresholdPerDay,
		},
		Savings: SavingsConfig{
			FallbackPrice: getenvFloatDefault("PRICE_PER_UNIT", energy.DefaultSavingsPolicy().FallbackPricePerUnit),
			CO2Factor:     getenvFloatDefault("CO2_FACTOR", energy.DefaultSavingsPolicy().CO2FactorKgPerUnit),
		},
		Currency: getenvDefault("CURRENCY", "EUR"),
	}

	if path := os.Getenv("ENERGY_POLICY_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return policy, err
		}
		if err := yaml.Unmarshal(data, &policy); err != nil {
			return policy, err
		}
	}

	if policy.Savings.CO2Factor < 0 || policy.Savings.FallbackPrice < 0 {
		return policy, errors.New("config: negative savings policy values")
	}
	return policy, nil
}

// ValidatorThresholds converts the config into the validator's form.
func (p Policy) ValidatorThresholds() readings.Thresholds {
	perType := make(map[metering.EnergyType]float64, len(p.Validation.Thresholds))
	for key, value := range p.Validation.Thresholds {
		perType[metering.EnergyType(key)] = value
	}
	return readings.Thresholds{PerType: perType, Default: p.Validation.Default}
}

// SavingsPolicy converts the config into the core's pricing policy.
func (p Policy) SavingsPolicy() energy.SavingsPolicy {
	return energy.SavingsPolicy{
		FallbackPricePerUnit: p.Savings.FallbackPrice,
		CO2FactorKgPerUnit:   p.Savings.CO2Factor,
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
