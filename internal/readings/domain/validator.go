package readings

import (
	"fmt"
	"math"
	"time"

	"home-energy/internal/locale"
	metering "home-energy/internal/metering/domain"
)

// Default per-type thresholds for plausible daily consumption, in the
// meter's native unit per day.
const (
	DefaultElectricityPerDay = 50
	DefaultGasPerDay         = 20
	DefaultWaterPerDay       = 1
	DefaultThresholdPerDay   = 50
)

// minSpanDays guards the implied-daily-consumption division against
// readings taken minutes apart (~2.4 hours).
const minSpanDays = 0.1

// Thresholds holds the maximum plausible daily consumption per energy type.
type Thresholds struct {
	PerType map[metering.EnergyType]float64
	Default float64
}

// DefaultThresholds returns the built-in warning thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PerType: map[metering.EnergyType]float64{
			metering.Electricity: DefaultElectricityPerDay,
			metering.Gas:         DefaultGasPerDay,
			metering.Water:       DefaultWaterPerDay,
		},
		Default: DefaultThresholdPerDay,
	}
}

// For resolves the threshold for an energy type.
func (t Thresholds) For(energyType metering.EnergyType) float64 {
	if value, ok := t.PerType[energyType]; ok && value > 0 {
		return value
	}
	if t.Default > 0 {
		return t.Default
	}
	return DefaultThresholdPerDay
}

// ValidationResult is the outcome of checking a candidate reading.
// A blocking problem sets Valid to false with a message; an anomalous but
// plausible value keeps Valid true and sets Warning, letting the caller
// ask the user for confirmation before saving.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// Validator checks candidate readings against their chronological
// neighbors for the same meter. It is stateless; the same check runs for
// create and edit flows (edit callers exclude the candidate's own prior
// record from existing).
type Validator struct {
	thresholds Thresholds
}

// NewValidator constructs a validator with the given warning thresholds.
func NewValidator(thresholds Thresholds) *Validator {
	if thresholds.Default <= 0 && len(thresholds.PerType) == 0 {
		thresholds = DefaultThresholds()
	}
	return &Validator{thresholds: thresholds}
}

// Validate checks a candidate against the existing readings.
func (v *Validator) Validate(candidate MeterReading, existing []MeterReading) ValidationResult {
	if math.IsNaN(candidate.Value) || math.IsInf(candidate.Value, 0) {
		return ValidationResult{Message: "reading value must be a finite number"}
	}

	predecessor, hasPredecessor := nearestBefore(existing, candidate.MeterID, candidate.Timestamp)
	if hasPredecessor && candidate.Value < predecessor.Value {
		return ValidationResult{Message: fmt.Sprintf(
			"reading %s is lower than the earlier reading %s from %s",
			locale.FormatNumber(candidate.Value, 2),
			locale.FormatNumber(predecessor.Value, 2),
			predecessor.Timestamp.Format("2006-01-02"),
		)}
	}

	successor, hasSuccessor := nearestAfter(existing, candidate.MeterID, candidate.Timestamp)
	if hasSuccessor && candidate.Value > successor.Value {
		return ValidationResult{Message: fmt.Sprintf(
			"reading %s is higher than the later reading %s from %s",
			locale.FormatNumber(candidate.Value, 2),
			locale.FormatNumber(successor.Value, 2),
			successor.Timestamp.Format("2006-01-02"),
		)}
	}

	if hasPredecessor {
		spanDays := candidate.Timestamp.Sub(predecessor.Timestamp).Hours() / 24
		if spanDays >= minSpanDays {
			perDay := (candidate.Value - predecessor.Value) / spanDays
			threshold := v.thresholds.For(candidate.Type)
			if perDay > threshold {
				return ValidationResult{
					Valid: true,
					Warning: fmt.Sprintf(
						"implied consumption of %s per day exceeds the usual %s for %s",
						locale.FormatNumber(perDay, 1),
						locale.FormatNumber(threshold, 1),
						candidate.Type,
					),
				}
			}
		}
	}

	return ValidationResult{Valid: true}
}

func nearestBefore(existing []MeterReading, meterID string, at time.Time) (MeterReading, bool) {
	var best MeterReading
	found := false
	for _, reading := range existing {
		if reading.MeterID != meterID || !reading.Timestamp.Before(at) {
			continue
		}
		if !found || reading.Timestamp.After(best.Timestamp) {
			best = reading
			found = true
		}
	}
	return best, found
}

func nearestAfter(existing []MeterReading, meterID string, at time.Time) (MeterReading, bool) {
	var best MeterReading
	found := false
	for _, reading := range existing {
		if reading.MeterID != meterID || !reading.Timestamp.After(at) {
			continue
		}
		if !found || reading.Timestamp.Before(best.Timestamp) {
			best = reading
			found = true
		}
	}
	return best, found
}
