package readings

import "context"

// Repository persists meter readings.
type Repository interface {
	Get(ctx context.Context, id string) (*MeterReading, error)
	Save(ctx context.Context, reading *MeterReading) error
	Delete(ctx context.Context, id string) error
	Snapshot(ctx context.Context) ([]MeterReading, error)
	ListByMeter(ctx context.Context, meterID string) ([]MeterReading, error)
}
