package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/errors"
)

// Service manages bedside delivery tasks. Tasks are created by the
// prescription cascade; partners claim and complete them here.
type Service struct {
	taskRepo repository.DeliveryTaskRepository
	userRepo repository.UserRepository
}

func NewService(taskRepo repository.DeliveryTaskRepository, userRepo repository.UserRepository) *Service {
	return &Service{taskRepo: taskRepo, userRepo: userRepo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.DeliveryTask, error) {
	task, err := s.taskRepo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("delivery task", err)
	}
	return task, nil
}

func (s *Service) List(ctx context.Context, filters *model.DeliveryTaskFilters) ([]*model.DeliveryTask, error) {
	tasks, err := s.taskRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery tasks: %w", err)
	}
	return tasks, nil
}

// Accept claims an assigned task for one partner. The update only
// succeeds while the task is unclaimed, so concurrent accepts resolve
// to one winner and a conflict for everyone else.
func (s *Service) Accept(ctx context.Context, taskID, partnerID uuid.UUID) (*model.DeliveryTask, error) {
	partner, err := s.userRepo.Get(ctx, partnerID)
	if err != nil {
		return nil, errors.NotFound("delivery partner", err)
	}
	if partner.Role != model.RoleDeliveryPartner && partner.Role != model.RoleNurse {
		return nil, errors.Forbidden("only delivery partners and nurses can accept delivery tasks", nil)
	}

	ok, err := s.taskRepo.Accept(ctx, taskID, partnerID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to accept delivery task: %w", err)
	}
	if !ok {
		return nil, errors.Conflict("task has already been accepted", nil)
	}
	return s.taskRepo.Get(ctx, taskID)
}

// Complete marks a delivered task done. Only the partner who accepted
// the task can complete it.
func (s *Service) Complete(ctx context.Context, taskID, partnerID uuid.UUID) (*model.DeliveryTask, error) {
	ok, err := s.taskRepo.Complete(ctx, taskID, partnerID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to complete delivery task: %w", err)
	}
	if !ok {
		return nil, errors.Conflict("task is not accepted by this partner", nil)
	}
	return s.taskRepo.Get(ctx, taskID)
}
