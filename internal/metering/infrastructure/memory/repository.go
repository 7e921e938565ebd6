package memory

import (
	"context"
	"sync"

	metering "home-energy/internal/metering/domain"
)

// DeviceRepository is an in-memory repository for devices.
type DeviceRepository struct {
	mu   sync.RWMutex
	data map[string]metering.Device
}

// NewDeviceRepository constructs a repository.
func NewDeviceRepository() *DeviceRepository {
	return &DeviceRepository{data: make(map[string]metering.Device)}
}

// Get loads a device by id.
func (r *DeviceRepository) Get(ctx context.Context, id string) (*metering.Device, error) {
	_ = ctx
	if id == "" {
		return nil, metering.ErrEmptyDeviceID
	}

	r.mu.RLock()
	stored, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

// Save upserts a device.
func (r *DeviceRepository) Save(ctx context.Context, device *metering.Device) error {
	_ = ctx
	if device == nil || device.ID == "" {
		return metering.ErrEmptyDeviceID
	}

	r.mu.Lock()
	r.data[device.ID] = *device
	r.mu.Unlock()
	return nil
}

// Delete removes a device by id.
func (r *DeviceRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	if id == "" {
		return metering.ErrEmptyDeviceID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return metering.ErrDeviceNotFound
	}
	delete(r.data, id)
	return nil
}

// List returns all devices.
func (r *DeviceRepository) List(ctx context.Context) ([]metering.Device, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]metering.Device, 0, len(r.data))
	for _, stored := range r.data {
		result = append(result, stored)
	}
	return result, nil
}

// ProviderRepository is an in-memory repository for energy providers.
type ProviderRepository struct {
	mu   sync.RWMutex
	data map[string]metering.EnergyProvider
}

// NewProviderRepository constructs a repository.
func NewProviderRepository() *ProviderRepository {
	return &ProviderRepository{data: make(map[string]metering.EnergyProvider)}
}

// Get loads a provider by id.
func (r *ProviderRepository) Get(ctx context.Context, id string) (*metering.EnergyProvider, error) {
	_ = ctx
	if id == "" {
		return nil, metering.ErrEmptyProviderID
	}

	r.mu.RLock()
	stored, ok := r.data[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return &stored, nil
}

// Save upserts a provider.
func (r *ProviderRepository) Save(ctx context.Context, provider *metering.EnergyProvider) error {
	_ = ctx
	if provider == nil || provider.ID == "" {
		return metering.ErrEmptyProviderID
	}
	if provider.PricePerUnit < 0 || provider.BasicFee < 0 {
		return metering.ErrNegativePrice
	}

	r.mu.Lock()
	r.data[provider.ID] = *provider
	r.mu.Unlock()
	return nil
}

// Delete removes a provider by id.
func (r *ProviderRepository) Delete(ctx context.Context, id string) error {
	_ = ctx
	if id == "" {
		return metering.ErrEmptyProviderID
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[id]; !ok {
		return metering.ErrProviderNotFound
	}
	delete(r.data, id)
	return nil
}

// List returns all providers.
func (r *ProviderRepository) List(ctx context.Context) ([]metering.EnergyProvider, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]metering.EnergyProvider, 0, len(r.data))
	for _, stored := range r.data {
		result = append(result, stored)
	}
	return result, nil
}
