package readings

import (
	"math"
	"strings"
	"testing"
	"time"

	metering "home-energy/internal/metering/domain"
)

func reading(meterID string, at time.Time, value float64) MeterReading {
	return MeterReading{
		ID:        NewID(),
		MeterID:   meterID,
		Type:      metering.Electricity,
		Value:     value,
		Timestamp: at,
	}
}

func TestValidateRejectsNonFinite(t *testing.T) {
	validator := NewValidator(DefaultThresholds())
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		candidate := reading("m1", time.Now(), value)
		result := validator.Validate(candidate, nil)
		if result.Valid {
			t.Fatalf("value %v must be rejected", value)
		}
	}
}

func TestValidateRejectsBelowPredecessor(t *testing.T) {
	validator := NewValidator(DefaultThresholds())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []MeterReading{reading("m1", base, 1000)}

	candidate := reading("m1", base.AddDate(0, 1, 0), 990)
	result := validator.Validate(candidate, existing)
	if result.Valid {
		t.Fatal("reading below its predecessor must be rejected")
	}
	if result.Message == "" {
		t.Fatal("rejection must carry a message")
	}
}

func TestValidateRejectsAbovSuccessor(t *testing.T) {
	validator := NewValidator(DefaultThresholds())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []MeterReading{
		reading("m1", base, 1000),
		reading("m1", base.AddDate(0, 2, 0), 1100),
	}

	candidate := reading("m1", base.AddDate(0, 1, 0), 1150)
	if result := validator.Validate(candidate, existing); result.Valid {
		t.Fatal("reading above its successor must be rejected")
	}
}

func TestValidateAcceptsBetweenNeighbors(t *testing.T) {
	validator := NewValidator(DefaultThresholds())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []MeterReading{
		reading("m1", base, 1000),
		reading("m1", base.AddDate(0, 2, 0), 1100),
	}

	candidate := reading("m1", base.AddDate(0, 1, 0), 1050)
	result := validator.Validate(candidate, existing)
	if !result.Valid {
		t.Fatalf("in-between reading rejected: %s", result.Message)
	}
	if result.Warning != "" {
		t.Fatalf("unexpected warning: %s", result.Warning)
	}
}

func TestValidateIgnoresOtherMeters(t *testing.T) {
	validator := NewValidator(DefaultThresholds())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []MeterReading{reading("other", base, 99999)}

	candidate := reading("m1", base.AddDate(0, 0, 1), 10)
	if result := validator.Validate(candidate, existing); !result.Valid {
		t.Fatalf("neighbor search leaked across meters: %s", result.Message)
	}
}

func TestValidateWarnsOnHighDailyConsumption(t *testing.T) {
	validator := NewValidator(DefaultThresholds())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []MeterReading{reading("m1", base, 1000)}

	// 600 units over 10 days: 60/day, above the electricity default of 50.
	candidate := reading("m1", base.AddDate(0, 0, 10), 1600)
	result := validator.Validate(candidate, existing)
	if !result.Valid {
		t.Fatalf("warning case must stay valid, got rejection: %s", result.Message)
	}
	if result.Warning == "" {
		t.Fatal("expected a high-consumption warning")
	}
	if !strings.Contains(result.Warning, "electricity") {
		t.Fatalf("warning should name the energy type: %s", result.Warning)
	}
}

func TestValidateSkipsWarningForTinySpans(t *testing.T) {
	validator := NewValidator(DefaultThresholds())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []MeterReading{reading("m1", base, 1000)}

	// One hour apart: the implied daily rate would explode, but the span
	// guard suppresses the division.
	candidate := reading("m1", base.Add(time.Hour), 1010)
	result := validator.Validate(candidate, existing)
	if !result.Valid || result.Warning != "" {
		t.Fatalf("tiny span must not warn, got %+v", result)
	}
}

func TestValidateHonorsConfiguredThresholds(t *testing.T) {
	validator := NewValidator(Thresholds{
		PerType: map[metering.EnergyType]float64{metering.Electricity: 500},
		Default: 50,
	})
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	existing := []MeterReading{reading("m1", base, 1000)}

	candidate := reading("m1", base.AddDate(0, 0, 10), 1600)
	if result := validator.Validate(candidate, existing); result.Warning != "" {
		t.Fatalf("60/day is below the configured 500 threshold: %s", result.Warning)
	}
}

func TestValidateGasUsesGasThreshold(t *testing.T) {
	validator := NewValidator(DefaultThresholds())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	predecessor := reading("g1", base, 100)
	predecessor.Type = metering.Gas

	// 250 over 10 days = 25/day, above the gas default of 20 but below the
	// generic 50.
	candidate := reading("g1", base.AddDate(0, 0, 10), 350)
	candidate.Type = metering.Gas
	result := validator.Validate(candidate, []MeterReading{predecessor})
	if result.Warning == "" {
		t.Fatal("expected gas-threshold warning")
	}
}
