package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	metering "home-energy/internal/metering/domain"
)

const defaultProvidersTable = "energy_providers"

// ProviderRepository is a Postgres implementation for energy providers.
type ProviderRepository struct {
	db    DBTX
	table string
}

// NewProviderRepository constructs a repository.
func NewProviderRepository(db DBTX, opts ...ProviderOption) *ProviderRepository {
	repo := &ProviderRepository{db: db, table: defaultProvidersTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// ProviderOption configures the repository.
type ProviderOption func(*ProviderRepository)

// WithProvidersTable overrides the default table name.
func WithProvidersTable(table string) ProviderOption {
	return func(repo *ProviderRepository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Get loads a provider by id.
func (r *ProviderRepository) Get(ctx context.Context, id string) (*metering.EnergyProvider, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("provider repo: nil db")
	}
	if id == "" {
		return nil, metering.ErrEmptyProviderID
	}

	query := fmt.Sprintf(`
SELECT id, name, energy_type, price_per_unit, basic_fee, valid_from, valid_to
FROM %s
WHERE id = $1
LIMIT 1`, r.table)

	var provider metering.EnergyProvider
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&provider.ID,
		&provider.Name,
		&provider.Type,
		&provider.PricePerUnit,
		&provider.BasicFee,
		&provider.ValidFrom,
		&provider.ValidTo,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &provider, nil
}

// Save upserts a provider.
func (r *ProviderRepository) Save(ctx context.Context, provider *metering.EnergyProvider) error {
	if r == nil || r.db == nil {
		return errors.New("provider repo: nil db")
	}
	if provider == nil || provider.ID == "" {
		return metering.ErrEmptyProviderID
	}
	if provider.PricePerUnit < 0 || provider.BasicFee < 0 {
		return metering.ErrNegativePrice
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	id,
	name,
	energy_type,
	price_per_unit,
	basic_fee,
	valid_from,
	valid_to
) VALUES (
	$1, $2, $3, $4, $5, $6, $7
)
ON CONFLICT (id)
DO UPDATE SET
	name = EXCLUDED.name,
	energy_type = EXCLUDED.energy_type,
	price_per_unit = EXCLUDED.price_per_unit,
	basic_fee = EXCLUDED.basic_fee,
	valid_from = EXCLUDED.valid_from,
	valid_to = EXCLUDED.valid_to`, r.table)

	_, err := r.db.ExecContext(
		ctx,
		query,
		provider.ID,
		provider.Name,
		provider.Type,
		provider.PricePerUnit,
		provider.BasicFee,
		provider.ValidFrom,
		provider.ValidTo,
	)
	return err
}

// Delete removes a provider by id.
func (r *ProviderRepository) Delete(ctx context.Context, id string) error {
	if r == nil || r.db == nil {
		return errors.New("provider repo: nil db")
	}
	if id == "" {
		return metering.ErrEmptyProviderID
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
		return metering.ErrProviderNotFound
	}
	return nil
}

// List returns all providers.
func (r *ProviderRepository) List(ctx context.Context) ([]metering.EnergyProvider, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("provider repo: nil db")
	}

	query := fmt.Sprintf(`
SELECT id, name, energy_type, price_per_unit, basic_fee, valid_from, valid_to
FROM %s
ORDER BY id ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []metering.EnergyProvider
	for rows.Next() {
		var provider metering.EnergyProvider
		if err := rows.Scan(
			&provider.ID,
			&provider.Name,
			&provider.Type,
			&provider.PricePerUnit,
			&provider.BasicFee,
			&provider.ValidFrom,
			&provider.ValidTo,
		); err != nil {
			return nil, err
		}
		result = append(result, provider)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
