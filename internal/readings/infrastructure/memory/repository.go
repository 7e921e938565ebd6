package memory

import (
	"context"
	"sync"

	readings "home-energy/internal/readings/domain"
)

// ReadingRepository is an in-memory repository for meter readings.
type ReadingRepository struct {
	mu   sync.RWMutex
	data map[string]readings.MeterReading
}

// NewReadingRepository constructs a repository.
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{data: make(map[string]readings.MeterReading)}
}

// Get loads a reading by id.
func (r *ReadingRepository) Get(ctx context.Context, id string) (*readings.MeterReading, error) {
	_ = ctx
	if id == "" {
		return nil, readings.ErrEmptyID
	}

	r.mu.RLock()
	stored, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

// Save upserts a reading.
func (r *ReadingRepository) Save(ctx context.Context, reading *readings.MeterReading) error {
	_ = ctx
	if reading == nil {
		return readings.ErrEmptyID
	}
	if reading.ID == "" {
		return readings.ErrEmptyID
	}
	if reading.MeterID == "" {
		return readings.ErrEmptyMeterID
	}

	r.mu.Lock()
	r.data[reading.ID] = *reading
	r.mu.Unlock()
	return nil
}

// Delete removes a reading by id.
func (r *ReadingRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	if id == "" {
		return readings.ErrEmptyID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return readings.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

// Snapshot returns all stored readings.
func (r *ReadingRepository) Snapshot(ctx context.Context) ([]readings.MeterReading, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]readings.MeterReading, 0, len(r.data))
	for _, stored := range r.data {
		result = append(result, stored)
	}
	return readings.SortAscending(result), nil
}

// ListByMeter returns all readings of one meter.
func (r *ReadingRepository) ListByMeter(ctx context.Context, meterID string) ([]readings.MeterReading, error) {
	if meterID == "" {
		return nil, readings.ErrEmptyMeterID
	}

	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var result []readings.MeterReading
	for _, stored := range snapshot {
		if stored.MeterID == meterID {
			result = append(result, stored)
		}
	}
	return result, nil
}
