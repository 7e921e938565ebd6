package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	metering "home-energy/internal/metering/domain"
)

// DBTX is the narrow database surface the repositories need. Both *sql.DB
// and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const defaultDevicesTable = "devices"

// DeviceRepository is a Postgres implementation for devices.
type DeviceRepository struct {
	db    DBTX
	table string
}

// NewDeviceRepository constructs a repository.
func NewDeviceRepository(db DBTX, opts ...DeviceOption) *DeviceRepository {
	repo := &DeviceRepository{db: db, table: defaultDevicesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// DeviceOption configures the repository.
type DeviceOption func(*DeviceRepository)

// WithDevicesTable overrides the default table name.
func WithDevicesTable(table string) DeviceOption {
	return func(repo *DeviceRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a device by id.
func (r *DeviceRepository) Get(ctx context.Context, id string) (*metering.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}
	if id == "" {
		return nil, metering.ErrEmptyDeviceID
	}

	query := fmt.Sprintf(`
SELECT id, name, device_type, meter_type, policy, unit, location, provider_id
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var device metering.Device
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&device.ID,
		&device.Name,
		&device.Type,
		&device.MeterType,
		&device.Policy,
		&device.Unit,
		&device.Location,
		&device.ProviderID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &device, nil
}

// Save upserts a device.
func (r *DeviceRepository) Save(ctx context.Context, device *metering.Device) error {
	if r == nil || r.db == nil {
		return errors.New("device repo: nil db")
	}
	if device == nil || device.ID == "" {
		return metering.ErrEmptyDeviceID
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	device_type,
	meter_type,
	policy,
	unit,
	location,
	provider_id
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	device_type = EXCLUDED.device_type,
	meter_type = EXCLUDED.meter_type,
	policy = EXCLUDED.policy,
	unit = EXCLUDED.unit,
	location = EXCLUDED.location,
	provider_id = EXCLUDED.provider_id`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		device.ID,
		device.Name,
		device.Type,
		device.MeterType,
		device.Policy,
		device.Unit,
		device.Location,
		device.ProviderID,
	)
	return err
}

// Delete removes a device by id.
func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("device repo: nil db")
	}
	if id == "" {
		return metering.ErrEmptyDeviceID
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
		return metering.ErrDeviceNotFound
	}
	return nil
}

// List returns all devices.
func (r *DeviceRepository) List(ctx context.Context) ([]metering.Device, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("device repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, device_type, meter_type, policy, unit, location, provider_id
FROM %s
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []metering.Device
	for rows.Next() {
		var device metering.Device
		if err := rows.Scan(
			&device.ID,
			&device.Name,
			&device.Type,
			&device.MeterType,
			&device.Policy,
			&device.Unit,
			&device.Location,
			&device.ProviderID,
		); err != nil {
			return nil, err
		}
		result = append(result, device)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
