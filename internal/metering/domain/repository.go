package metering

import "context"

// DeviceRepository persists devices.
type DeviceRepository interface {
	Get(ctx context.Context, id string) (*Device, error)
	Save(ctx context.Context, device *Device) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Device, error)
}

// ProviderRepository persists energy provider contracts.
type ProviderRepository interface {
	Get(ctx context.Context, id string) (*EnergyProvider, error)
	Save(ctx context.Context, provider *EnergyProvider) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]EnergyProvider, error)
}
