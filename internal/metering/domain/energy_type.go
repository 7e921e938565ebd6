package metering

// EnergyType is the kind of energy a meter or tariff refers to.
// The set is open ended: readings carry their type as data, so new kinds
// can be filtered without code changes.
type EnergyType string

const (
	Electricity     EnergyType = "electricity"
	Gas             EnergyType = "gas"
	Water           EnergyType = "water"
	Heat            EnergyType = "heat"
	Solar           EnergyType = "solar"
	SolarPVFeedIn   EnergyType = "solar_pv_feed_in"
	Production      EnergyType = "production"
	GridFeedIn      EnergyType = "grid_feed_in"
	GridConsumption EnergyType = "grid_consumption"
)

// ProductionTypes lists energy types counted as on-site production.
func ProductionTypes() []EnergyType {
	return []EnergyType{Solar, Production}
}

// FeedInTypes lists energy types counted as grid export.
func FeedInTypes() []EnergyType {
	return []EnergyType{GridFeedIn, SolarPVFeedIn}
}

// ContainsType reports whether types includes t.
func ContainsType(types []EnergyType, t EnergyType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
