package metering

import "time"

// EnergyProvider is a tariff contract for one energy type.
type EnergyProvider struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Type         EnergyType `json:"type"`
	PricePerUnit float64    `json:"price_per_unit"`
	BasicFee     float64    `json:"basic_fee"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidTo      *time.Time `json:"valid_to,omitempty"`
}

// ActiveAt reports whether the contract window covers the given time.
// Open-ended windows (nil bounds) always match on that side.
func (p EnergyProvider) ActiveAt(at time.Time) bool {
	if p.ValidFrom != nil && at.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && at.After(*p.ValidTo) {
		return false
	}
	return true
}

// ProviderForType resolves the tariff for an energy type at a given time.
// An active contract wins; otherwise any provider of the type is used so
// that pricing survives missing contract windows. Returns false when no
// provider of the type exists at all (consumption is then priced at zero).
func ProviderForType(providers []EnergyProvider, energyType EnergyType, at time.Time) (EnergyProvider, bool) {
	var fallback *EnergyProvider
	for i := range providers {
		if providers[i].Type != energyType {
			continue
		}
		if providers[i].ActiveAt(at) {
			return providers[i], true
		}
		if fallback == nil {
			fallback = &providers[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return EnergyProvider{}, false
}
