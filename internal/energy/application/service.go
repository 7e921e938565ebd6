package application

import (
	"context"
	"errors"
	"log"
	"time"

	energy "home-energy/internal/energy/domain"
	metering "home-energy/internal/metering/domain"
	"home-energy/internal/observability/metrics"
	readings "home-energy/internal/readings/domain"
)

// Service computes period summaries, reports and cost tables from the
// stored readings and master data. All calculations run on an explicit
// in-memory snapshot so a single request sees one consistent state.
type Service struct {
	readings  readings.Repository
	devices   metering.DeviceRepository
	providers metering.ProviderRepository
	policy    energy.SavingsPolicy
	logger    *log.Logger
	now       func() time.Time
}

// NewService constructs an energy calculation service.
func NewService(readingRepo readings.Repository, deviceRepo metering.DeviceRepository, providerRepo metering.ProviderRepository, policy energy.SavingsPolicy, logger *log.Logger) (*Service, error) {
	if readingRepo == nil {
		return nil, errors.New("energy service: nil reading repository")
	}
	if deviceRepo == nil {
		return nil, errors.New("energy service: nil device repository")
	}
	if providerRepo == nil {
		return nil, errors.New("energy service: nil provider repository")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{
		readings:  readingRepo,
		devices:   deviceRepo,
		providers: providerRepo,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Summary computes the full cost and autarky breakdown for the period
// containing the reference date. A zero reference means now.
func (s *Service) Summary(ctx context.Context, period energy.Period, reference time.Time) (energy.DetailedCosts, error) {
	started := s.now()
	if !period.IsValid() {
		period = energy.PeriodMonthly
	}
	if reference.IsZero() {
		reference = s.now()
	}

	snapshot, providers, devices, err := s.load(ctx)
	if err != nil {
		metrics.ObserveSummary(string(period), metrics.ResultError, s.now().Sub(started))
		return energy.DetailedCosts{}, err
	}

	result := energy.DetailedCostsForPeriod(snapshot, providers, devices, period, reference, s.policy)
	metrics.ObserveSummary(string(period), metrics.ResultSuccess, s.now().Sub(started))
	return result, nil
}

// TotalForPeriod computes the consumption total for one set of energy
// types in the period containing the reference date.
func (s *Service) TotalForPeriod(ctx context.Context, period energy.Period, reference time.Time, types []metering.EnergyType) (energy.PeriodTotal, error) {
	if !period.IsValid() {
		period = energy.PeriodMonthly
	}
	if reference.IsZero() {
		reference = s.now()
	}

	snapshot, err := s.readings.Snapshot(ctx)
	if err != nil {
		return energy.PeriodTotal{}, err
	}
	return energy.TotalForPeriod(snapshot, energy.ResolvePeriod(period, reference), types), nil
}

// Production computes produced energy for the period containing the
// reference date, honoring per-device accumulation policies.
func (s *Service) Production(ctx context.Context, period energy.Period, reference time.Time) (float64, error) {
	if !period.IsValid() {
		period = energy.PeriodMonthly
	}
	if reference.IsZero() {
		reference = s.now()
	}

	snapshot, err := s.readings.Snapshot(ctx)
	if err != nil {
		return 0, err
	}
	devices, err := s.devices.List(ctx)
	if err != nil {
		return 0, err
	}
	return energy.ProductionForPeriod(snapshot, devices, energy.ResolvePeriod(period, reference)), nil
}

// Report returns all readings annotated with per-entry differences and
// running totals, newest first.
func (s *Service) Report(ctx context.Context) ([]energy.AnnotatedReading, error) {
	snapshot, err := s.readings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, err
	}
	return energy.WithDifferences(snapshot, devices), nil
}

// DailyCosts returns the per-day consumption and cost table.
func (s *Service) DailyCosts(ctx context.Context) ([]energy.DailyCostRow, error) {
	snapshot, err := s.readings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	providers, err := s.providers.List(ctx)
	if err != nil {
		return nil, err
	}
	return energy.DailyCostTable(snapshot, providers), nil
}

func (s *Service) load(ctx context.Context) ([]readings.MeterReading, []metering.EnergyProvider, []metering.Device, error) {
	snapshot, err := s.readings.Snapshot(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	providers, err := s.providers.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	devices, err := s.devices.List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return snapshot, providers, devices, nil
}
