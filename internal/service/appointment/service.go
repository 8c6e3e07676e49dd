package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/errors"
)

// Service covers appointment reads and lifecycle updates. Scheduling
// itself goes through the workflow orchestrator so the bill is created
// in the same transaction.
type Service struct {
	repo repository.AppointmentRepository
}

func NewService(repo repository.AppointmentRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("appointment", err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Update applies a status transition and/or notes. Completed and
// cancelled are terminal.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("appointment", err)
	}

	if req.Status != nil && *req.Status != apt.Status {
		if !validTransition(apt.Status, *req.Status) {
			return nil, errors.Conflict(fmt.Sprintf("cannot move appointment from %s to %s", apt.Status, *req.Status), nil)
		}
		apt.Status = *req.Status
	}
	if req.Notes != nil {
		apt.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return apt, nil
}

func validTransition(from, to model.AppointmentStatus) bool {
	switch from {
	case model.AppointmentStatusScheduled:
		return to == model.AppointmentStatusInProgress || to == model.AppointmentStatusCancelled
	case model.AppointmentStatusInProgress:
		return to == model.AppointmentStatusCompleted
	}
	return false
}
