package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	readings "home-energy/internal/readings/domain"
)

// DBTX is the narrow database surface the repository needs. Both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const defaultReadingsTable = "meter_readings"

// ReadingRepository is a Postgres implementation for meter readings.
type ReadingRepository struct {
	db    DBTX
	table string
}

// NewReadingRepository constructs a repository.
func NewReadingRepository(db DBTX, opts ...ReadingOption) *ReadingRepository {
	repo := &ReadingRepository{db: db, table: defaultReadingsTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ReadingOption configures the repository.
type ReadingOption func(*ReadingRepository)

// WithReadingsTable overrides the default table name.
func WithReadingsTable(table string) ReadingOption {
	return func(repo *ReadingRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a reading by id.
func (r *ReadingRepository) Get(ctx context.Context, id string) (*readings.MeterReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if id == "" {
		return nil, readings.ErrEmptyID
	}

	query := fmt.Sprintf(`
SELECT id, meter_id, meter_name, energy_type, reading, recorded_at, unit, notes, device_id
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var reading readings.MeterReading
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&reading.ID,
		&reading.MeterID,
		&reading.MeterName,
		&reading.Type,
		&reading.Value,
		&reading.Timestamp,
		&reading.Unit,
		&reading.Notes,
		&reading.DeviceID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	reading.Timestamp = reading.Timestamp.UTC()
	return &reading, nil
}

// Save upserts a reading.
func (r *ReadingRepository) Save(ctx context.Context, reading *readings.MeterReading) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if reading == nil || reading.ID == "" {
		return readings.ErrEmptyID
	}
	if reading.MeterID == "" {
		return readings.ErrEmptyMeterID
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	meter_id,
	meter_name,
	energy_type,
	reading,
	recorded_at,
	unit,
	notes,
	device_id
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9
)
ON CONFLICT (id)
DO UPDATE SET
	meter_id = EXCLUDED.meter_id,
	meter_name = EXCLUDED.meter_name,
	energy_type = EXCLUDED.energy_type,
	reading = EXCLUDED.reading,
	recorded_at = EXCLUDED.recorded_at,
	unit = EXCLUDED.unit,
	notes = EXCLUDED.notes,
	device_id = EXCLUDED.device_id`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		reading.ID,
		reading.MeterID,
		reading.MeterName,
		reading.Type,
		reading.Value,
		reading.Timestamp.UTC(),
		reading.Unit,
		reading.Notes,
		reading.DeviceID,
	)
	return err
}

// Delete removes a reading by id.
func (r *ReadingRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("reading repo: nil db")
	}
	if id == "" {
		return readings.ErrEmptyID
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return readings.ErrNotFound
	}
	return nil
}

// Snapshot returns all stored readings ordered by timestamp.
func (r *ReadingRepository) Snapshot(ctx context.Context) ([]readings.MeterReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, meter_id, meter_name, energy_type, reading, recorded_at, unit, notes, device_id
FROM %s
ORDER BY recorded_at ASC, id ASC`, r.table)

	return r.queryMany(ctx, query)
}

// ListByMeter returns all readings of one meter ordered by timestamp.
func (r *ReadingRepository) ListByMeter(ctx context.Context, meterID string) ([]readings.MeterReading, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("reading repo: nil db")
	}
	if meterID == "" {
		return nil, readings.ErrEmptyMeterID
	}

	query := fmt.Sprintf(`
SELECT id, meter_id, meter_name, energy_type, reading, recorded_at, unit, notes, device_id
FROM %s
WHERE meter_id = $1
ORDER BY recorded_at ASC, id ASC`, r.table)

	return r.queryMany(ctx, query, meterID)
}

func (r *ReadingRepository) queryMany(ctx context.Context, query string, args ...any) ([]readings.MeterReading, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []readings.MeterReading
	for rows.Next() {
		var reading readings.MeterReading
		if err := rows.Scan(
			&reading.ID,
			&reading.MeterID,
			&reading.MeterName,
			&reading.Type,
			&reading.Value,
			&reading.Timestamp,
			&reading.Unit,
			&reading.Notes,
			&reading.DeviceID,
		); err != nil {
			return nil, err
		}
		reading.Timestamp = reading.Timestamp.UTC()
		result = append(result, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
