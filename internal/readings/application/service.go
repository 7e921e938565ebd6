package application

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"home-energy/internal/audit"
	"home-energy/internal/observability/metrics"
	readings "home-energy/internal/readings/domain"
)

// Actor identifies who performs a mutation, for the audit trail.
type Actor struct {
	HouseholdID string
	Subject     string
	Role        string
	IP          string
	UserAgent   string
}

// ReadingService validates and persists meter readings.
type ReadingService struct {
	repo      readings.Repository
	validator *readings.Validator
	audit     audit.Logger
	logger    *log.Logger
	now       func() time.Time
}

// NewReadingService constructs a reading service.
func NewReadingService(repo readings.Repository, validator *readings.Validator, auditLog audit.Logger, logger *log.Logger) (*ReadingService, error) {
	if repo == nil {
		return nil, errors.New("reading service: nil repository")
	}
	if validator == nil {
		return nil, errors.New("reading service: nil validator")
	}
	if auditLog == nil {
		auditLog = audit.Nop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &ReadingService{
		repo:      repo,
		validator: validator,
		audit:     auditLog,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Create validates and stores a new reading. A high-consumption warning
// blocks the write with ErrConfirmationRequired unless confirmed.
func (s *ReadingService) Create(ctx context.Context, reading readings.MeterReading, confirmed bool, actor Actor) (*readings.MeterReading, readings.ValidationResult, error) {
	started := s.now()
	if reading.MeterID == "" {
		return nil, readings.ValidationResult{}, readings.ErrEmptyMeterID
	}
	if reading.ID == "" {
		reading.ID = readings.NewID()
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = s.now().UTC()
	}

	snapshot, err := s.repo.ListByMeter(ctx, reading.MeterID)
	if err != nil {
		metrics.ObserveReadingWrite(audit.ActionCreate, metrics.ResultError, s.now().Sub(started))
		return nil, readings.ValidationResult{}, err
	}

	result := s.validator.Validate(reading, snapshot)
	if !result.Valid {
		metrics.IncValidation(metrics.ValidationRejected)
		return nil, result, readings.ErrRejected
	}
	if result.Warning != "" {
		metrics.IncValidation(metrics.ValidationWarned)
		if !confirmed {
			return nil, result, readings.ErrConfirmationRequired
		}
	} else {
		metrics.IncValidation(metrics.ValidationAccepted)
	}

	if err := s.repo.Save(ctx, &reading); err != nil {
		metrics.ObserveReadingWrite(audit.ActionCreate, metrics.ResultError, s.now().Sub(started))
		return nil, result, err
	}
	s.logAudit(ctx, actor, audit.ActionCreate, reading)
	metrics.ObserveReadingWrite(audit.ActionCreate, metrics.ResultSuccess, s.now().Sub(started))
	return &reading, result, nil
}

// Update validates and replaces an existing reading. The stored version
// is excluded from the neighbor check so a value correction does not
// collide with itself.
func (s *ReadingService) Update(ctx context.Context, reading readings.MeterReading, confirmed bool, actor Actor) (*readings.MeterReading, readings.ValidationResult, error) {
	started := s.now()
	if reading.ID == "" {
		return nil, readings.ValidationResult{}, readings.ErrEmptyID
	}

	existing, err := s.repo.Get(ctx, reading.ID)
	if err != nil {
		return nil, readings.ValidationResult{}, err
	}
	if existing == nil {
		return nil, readings.ValidationResult{}, readings.ErrNotFound
	}
	if reading.MeterID == "" {
		reading.MeterID = existing.MeterID
	}
	if reading.Timestamp.IsZero() {
		reading.Timestamp = existing.Timestamp
	}

	snapshot, err := s.repo.ListByMeter(ctx, reading.MeterID)
	if err != nil {
		return nil, readings.ValidationResult{}, err
	}
	neighbors := snapshot[:0:0]
	for _, stored := range snapshot {
		if stored.ID != reading.ID {
			neighbors = append(neighbors, stored)
		}
	}

	result := s.validator.Validate(reading, neighbors)
	if !result.Valid {
		metrics.IncValidation(metrics.ValidationRejected)
		return nil, result, readings.ErrRejected
	}
	if result.Warning != "" {
		metrics.IncValidation(metrics.ValidationWarned)
		if !confirmed {
			return nil, result, readings.ErrConfirmationRequired
		}
	} else {
		metrics.IncValidation(metrics.ValidationAccepted)
	}

	if err := s.repo.Save(ctx, &reading); err != nil {
		metrics.ObserveReadingWrite(audit.ActionUpdate, metrics.ResultError, s.now().Sub(started))
		return nil, result, err
	}
	s.logAudit(ctx, actor, audit.ActionUpdate, reading)
	metrics.ObserveReadingWrite(audit.ActionUpdate, metrics.ResultSuccess, s.now().Sub(started))
	return &reading, result, nil
}

// Delete removes a reading.
func (s *ReadingService) Delete(ctx context.Context, id string, actor Actor) error {
	started := s.now()
	if id == "" {
		return readings.ErrEmptyID
	}

	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return readings.ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		metrics.ObserveReadingWrite(audit.ActionDelete, metrics.ResultError, s.now().Sub(started))
		return err
	}
	s.logAudit(ctx, actor, audit.ActionDelete, *existing)
	metrics.ObserveReadingWrite(audit.ActionDelete, metrics.ResultSuccess, s.now().Sub(started))
	return nil
}

// Get loads a reading by id.
func (s *ReadingService) Get(ctx context.Context, id string) (*readings.MeterReading, error) {
	return s.repo.Get(ctx, id)
}

// List returns all readings ordered by timestamp.
func (s *ReadingService) List(ctx context.Context) ([]readings.MeterReading, error) {
	return s.repo.Snapshot(ctx)
}

// Preview runs validation without persisting anything.
func (s *ReadingService) Preview(ctx context.Context, reading readings.MeterReading) (readings.ValidationResult, error) {
	if reading.MeterID == "" {
		return readings.ValidationResult{}, readings.ErrEmptyMeterID
	}
	snapshot, err := s.repo.ListByMeter(ctx, reading.MeterID)
	if err != nil {
		return readings.ValidationResult{}, err
	}
	return s.validator.Validate(reading, snapshot), nil
}

func (s *ReadingService) logAudit(ctx context.Context, actor Actor, action string, reading readings.MeterReading) {
	metadata, err := json.Marshal(reading)
	if err != nil {
		metadata = nil
	}
	entry := audit.Entry{
		HouseholdID:  actor.HouseholdID,
		Actor:        actor.Subject,
		Role:         actor.Role,
		Action:       action,
		ResourceType: audit.ResourceReading,
		ResourceID:   reading.ID,
		Metadata:     metadata,
		IP:           actor.IP,
		UserAgent:    actor.UserAgent,
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.logger.Printf("audit log failed for %s %s: %v", action, reading.ID, err)
	}
}
