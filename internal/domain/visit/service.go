package visit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicdesk/internal/realtime"
)

// Broadcaster publishes realtime events. Satisfied by realtime.Publisher;
// defined here so tests can record publishes without a gateway.
type Broadcaster interface {
	Publish(ctx context.Context, event realtime.Event) error
}

// Service provides business logic for the visit queue.
type Service struct {
	repo      VisitRepository
	broadcast Broadcaster
	logger    zerolog.Logger
}

// NewService creates a new visit service.
func NewService(repo VisitRepository, broadcast Broadcaster, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		broadcast: broadcast,
		logger:    logger.With().Str("component", "visit_service").Logger(),
	}
}

// CreateVisit checks a patient into a doctor's queue and notifies listeners.
func (s *Service) CreateVisit(ctx context.Context, v *Visit) error {
	if v.PatientName == "" {
		return fmt.Errorf("patient_name is required")
	}
	if v.DoctorID == "" {
		return fmt.Errorf("doctor_id is required")
	}
	if err := ValidateDate(v.VisitDate); err != nil {
		return err
	}
	v.Status = StatusWaiting

	if err := s.repo.Create(ctx, v); err != nil {
		return err
	}

	s.notifyQueueChanged(ctx, v)
	return nil
}

// GetVisit returns one visit.
func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	return s.repo.GetByID(ctx, id)
}

// ListQueue returns the visit queue for a date, optionally for one doctor.
func (s *Service) ListQueue(ctx context.Context, date, doctorID string, limit, offset int) ([]*Visit, int, error) {
	if err := ValidateDate(date); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByDate(ctx, date, doctorID, limit, offset)
}

// UpdateStatus moves a visit through the queue lifecycle and notifies
// listeners.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Visit, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("unknown status %q", status)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, status) {
		return nil, fmt.Errorf("cannot move visit from %s to %s", current.Status, status)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.notifyQueueChanged(ctx, updated)
	return updated, nil
}

// notifyQueueChanged broadcasts the clinic-wide and doctor-scoped queue
// events for a visit. Broadcast failures are logged and swallowed: a missed
// push leaves clients briefly stale, but a visit mutation must never fail
// or roll back because nobody could be notified.
func (s *Service) notifyQueueChanged(ctx context.Context, v *Visit) {
	events := []realtime.Event{
		realtime.ClinicQueueUpdated{VisitDate: v.VisitDate},
		realtime.DoctorQueueUpdated{DoctorID: v.DoctorID, VisitDate: v.VisitDate},
	}
	for _, event := range events {
		if err := s.broadcast.Publish(ctx, event); err != nil {
			s.logger.Error().Err(err).
				Str("event_type", event.EventType()).
				Str("visit_id", v.ID.String()).
				Msg("queue broadcast failed, clients will refetch on next change")
		}
	}
}
