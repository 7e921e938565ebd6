package application

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"home-energy/internal/audit"
	metering "home-energy/internal/metering/domain"
)

// Actor identifies who performs a mutation, for the audit trail.
type Actor struct {
	HouseholdID string
	Subject     string
	Role        string
	IP          string
	UserAgent   string
}

// MasterDataService manages devices and provider contracts.
type MasterDataService struct {
	devices   metering.DeviceRepository
	providers metering.ProviderRepository
	audit     audit.Logger
	logger    *log.Logger
}

// NewMasterDataService constructs a master data service.
func NewMasterDataService(devices metering.DeviceRepository, providers metering.ProviderRepository, auditLog audit.Logger, logger *log.Logger) (*MasterDataService, error) {
	if devices == nil {
		return nil, errors.New("master data service: nil device repository")
	}
	if providers == nil {
		return nil, errors.New("master data service: nil provider repository")
	}
	if auditLog == nil {
		auditLog = audit.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &MasterDataService{devices: devices, providers: providers, audit: auditLog, logger: logger}, nil
}

// SaveDevice validates and upserts a device.
func (s *MasterDataService) SaveDevice(ctx context.Context, device *metering.Device, actor Actor) error {
	if device == nil || device.ID == "" {
		return metering.ErrEmptyDeviceID
	}
	if device.Policy != "" && !device.Policy.IsValid() {
		return metering.ErrUnknownPolicy
	}
	device.Policy = metering.NormalizePolicy(string(device.Policy))

	existing, err := s.devices.Get(ctx, device.ID)
	if err != nil {
		return err
	}
	action := audit.ActionCreate
	if existing != nil {
		action = audit.ActionUpdate
	}
	if err := s.devices.Save(ctx, device); err != nil {
		return err
	}
	s.logAudit(ctx, actor, action, audit.ResourceDevice, device.ID, device)
	return nil
}

// DeleteDevice removes a device.
func (s *MasterDataService) DeleteDevice(ctx context.Context, id string, actor Actor) error {
	if id == "" {
		return metering.ErrEmptyDeviceID
	}
	if err := s.devices.Delete(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, actor, audit.ActionDelete, audit.ResourceDevice, id, nil)
	return nil
}

// GetDevice loads a device by id.
func (s *MasterDataService) GetDevice(ctx context.Context, id string) (*metering.Device, error) {
	return s.devices.Get(ctx, id)
}

// ListDevices returns all devices.
func (s *MasterDataService) ListDevices(ctx context.Context) ([]metering.Device, error) {
	return s.devices.List(ctx)
}

// SaveProvider validates and upserts a provider contract.
func (s *MasterDataService) SaveProvider(ctx context.Context, provider *metering.EnergyProvider, actor Actor) error {
	if provider == nil || provider.ID == "" {
		return metering.ErrEmptyProviderID
	}
	if provider.PricePerUnit < 0 || provider.BasicFee < 0 {
		return metering.ErrNegativePrice
	}

	existing, err := s.providers.Get(ctx, provider.ID)
	if err != nil {
		return err
	}
	action := audit.ActionCreate
	if existing != nil {
		action = audit.ActionUpdate
	}
	if err := s.providers.Save(ctx, provider); err != nil {
		return err
	}
	s.logAudit(ctx, actor, action, audit.ResourceProvider, provider.ID, provider)
	return nil
}

// DeleteProvider removes a provider contract.
func (s *MasterDataService) DeleteProvider(ctx context.Context, id string, actor Actor) error {
	if id == "" {
		return metering.ErrEmptyProviderID
	}
	if err := s.providers.Delete(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, actor, audit.ActionDelete, audit.ResourceProvider, id, nil)
	return nil
}

// GetProvider loads a provider by id.
func (s *MasterDataService) GetProvider(ctx context.Context, id string) (*metering.EnergyProvider, error) {
	return s.providers.Get(ctx, id)
}

// ListProviders returns all provider contracts.
func (s *MasterDataService) ListProviders(ctx context.Context) ([]metering.EnergyProvider, error) {
	return s.providers.List(ctx)
}

func (s *MasterDataService) logAudit(ctx context.Context, actor Actor, action, resourceType, resourceID string, payload any) {
	var metadata json.RawMessage
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			metadata = data
		}
	}
	entry := audit.Entry{
		HouseholdID:  actor.HouseholdID,
		Actor:        actor.Subject,
		Role:         actor.Role,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Metadata:     metadata,
		IP:           actor.IP,
		UserAgent:    actor.UserAgent,
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Printf("audit log failed for %s %s: %v", action, resourceID, err)
	}
}
