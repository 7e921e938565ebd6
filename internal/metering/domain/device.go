package metering

// AccumulationPolicy describes how a meter's recorded values accumulate.
type AccumulationPolicy string

const (
	// PolicyCumulative marks odometer-style counters: each reading is a
	// running total and consumption is the difference between readings.
	PolicyCumulative AccumulationPolicy = "difference"
	// PolicyPeriodAmount marks meters whose every reading stands alone as
	// that period's amount; aggregation sums readings instead of diffing.
	PolicyPeriodAmount AccumulationPolicy = "sum"
)

// IsValid checks if the policy is one of the supported values.
func (p AccumulationPolicy) IsValid() bool {
	switch p {
	case PolicyCumulative, PolicyPeriodAmount:
		return true
	default:
		return false
	}
}

// NormalizePolicy maps unknown or empty values to the cumulative default.
func NormalizePolicy(value string) AccumulationPolicy {
	policy := AccumulationPolicy(value)
	if !policy.IsValid() {
		return PolicyCumulative
	}
	return policy
}

const DeviceTypeMeter = "meter"

// Device is a registered meter or other household device.
type Device struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       string             `json:"type"`
	MeterType  EnergyType         `json:"meter_type"`
	Policy     AccumulationPolicy `json:"policy,omitempty"`
	Unit       string             `json:"unit,omitempty"`
	Location   string             `json:"location,omitempty"`
	ProviderID string             `json:"provider_id,omitempty"`
}

// IsMeter reports whether the device is a meter.
func (d Device) IsMeter() bool { return d.Type == DeviceTypeMeter }

// IsProductionMeter reports whether the device measures on-site production.
func (d Device) IsProductionMeter() bool {
	return d.IsMeter() && ContainsType(ProductionTypes(), d.MeterType)
}

// EffectivePolicy returns the device policy, defaulting to cumulative.
func (d Device) EffectivePolicy() AccumulationPolicy {
	if !d.Policy.IsValid() {
		return PolicyCumulative
	}
	return d.Policy
}

// PolicyForMeter resolves the accumulation policy for a meter id. A reading
// may reference its device either through the meter id or a dedicated
// device link, so both are matched. Unknown meters default to cumulative.
func PolicyForMeter(devices []Device, meterID, deviceID string) AccumulationPolicy {
	if device, ok := DeviceForMeter(devices, meterID, deviceID); ok {
		return device.EffectivePolicy()
	}
	return PolicyCumulative
}

// DeviceForMeter looks up the device owning a meter id or device id.
func DeviceForMeter(devices []Device, meterID, deviceID string) (Device, bool) {
	for _, device := range devices {
		if device.ID == meterID || (deviceID != "" && device.ID == deviceID) {
			return device, true
		}
	}
	return Device{}, false
}
