package readings

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	metering "home-energy/internal/metering/domain"
)

// MeterReading is one manually entered meter observation. Timestamps are
// not unique or ordered in storage; every aggregation sorts explicitly.
type MeterReading struct {
	ID        string              `json:"id"`
	MeterID   string              `json:"meter_id"`
	MeterName string              `json:"meter_name,omitempty"`
	Type      metering.EnergyType `json:"type"`
	Value     float64             `json:"reading"`
	Timestamp time.Time           `json:"timestamp"`
	Unit      string              `json:"unit,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	DeviceID  string              `json:"device_id,omitempty"`
}

// readingWire carries the canonical field plus the legacy "value" alias
// still present in older exports. The alias is resolved here, once, at the
// boundary; the rest of the code only ever sees Value.
type readingWire struct {
	ID        string              `json:"id"`
	MeterID   string              `json:"meter_id"`
	MeterName string              `json:"meter_name"`
	Type      metering.EnergyType `json:"type"`
	Reading   *float64            `json:"reading"`
	Legacy    *float64            `json:"value"`
	Timestamp time.Time           `json:"timestamp"`
	Unit      string              `json:"unit"`
	Notes     string              `json:"notes"`
	DeviceID  string              `json:"device_id"`
}

// UnmarshalJSON decodes a reading, accepting the legacy "value" alias for
// the canonical "reading" field.
func (r *MeterReading) UnmarshalJSON(data []byte) error {
	var wire readingWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	r.ID = wire.ID
	r.MeterID = wire.MeterID
	r.MeterName = wire.MeterName
	r.Type = wire.Type
	r.Timestamp = wire.Timestamp
	r.Unit = wire.Unit
	r.Notes = wire.Notes
	r.DeviceID = wire.DeviceID
	switch {
	case wire.Reading != nil:
		r.Value = *wire.Reading
	case wire.Legacy != nil:
		r.Value = *wire.Legacy
	default:
		r.Value = 0
	}
	return nil
}

// NewID generates a random reading identifier.
func NewID() string {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return hex.EncodeToString(buf[:])
	}
	buf[6] = (buf[6] & 0x0f) | 0x40
	buf[8] = (buf[8] & 0x3f) | 0x80
	return hex.EncodeToString(buf[:])
}

// SortAscending orders a copy of the readings by timestamp, oldest first.
func SortAscending(list []MeterReading) []MeterReading {
	sorted := make([]MeterReading, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// SortDescending orders a copy of the readings by timestamp, newest first.
func SortDescending(list []MeterReading) []MeterReading {
	sorted := make([]MeterReading, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	return sorted
}

// GroupByMeter splits readings into per-meter series.
func GroupByMeter(list []MeterReading) map[string][]MeterReading {
	groups := make(map[string][]MeterReading)
	for _, reading := range list {
		groups[reading.MeterID] = append(groups[reading.MeterID], reading)
	}
	return groups
}

// MeterIDs returns the distinct meter ids in the set, sorted. Aggregators
// iterate meters in this order so float accumulation over a snapshot is
// reproducible call to call.
func MeterIDs(list []MeterReading) []string {
	seen := make(map[string]struct{}, len(list))
	ids := make([]string, 0, len(list))
	for _, reading := range list {
		if _, ok := seen[reading.MeterID]; ok {
			continue
		}
		seen[reading.MeterID] = struct{}{}
		ids = append(ids, reading.MeterID)
	}
	sort.Strings(ids)
	return ids
}

// FilterByType keeps readings whose energy type is in the given set.
func FilterByType(list []MeterReading, types []metering.EnergyType) []MeterReading {
	var filtered []MeterReading
	for _, reading := range list {
		if metering.ContainsType(types, reading.Type) {
			filtered = append(filtered, reading)
		}
	}
	return filtered
}
