package hospital

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/idgen"
)

// Hospital records change rarely but are read on every appointment and
// prescription, so reads go through a short-lived in-process cache.
const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute
)

type Service struct {
	repo  repository.HospitalRepository
	cache *cache.Cache
}

func NewService(repo repository.HospitalRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, cacheCleanup),
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateHospitalRequest) (*model.Hospital, error) {
	hospital := &model.Hospital{
		Base:        model.Base{ID: uuid.New()},
		Code:        idgen.New(idgen.PrefixHospital),
		Name:        req.Name,
		Address:     req.Address,
		Departments: req.Departments,
		Services:    req.Services,
		BedCapacity: req.BedCapacity,
		Status:      model.HospitalStatusActive,
	}
	if err := s.repo.Create(ctx, hospital); err != nil {
		return nil, fmt.Errorf("failed to create hospital: %w", err)
	}
	return hospital, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error) {
	if cached, found := s.cache.Get(id.String()); found {
		return cached.(*model.Hospital), nil
	}

	hospital, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("hospital", err)
	}
	s.cache.Set(id.String(), hospital, cache.DefaultExpiration)
	return hospital, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateHospitalRequest) (*model.Hospital, error) {
	hospital, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("hospital", err)
	}

	if req.Name != nil {
		hospital.Name = *req.Name
	}
	if req.Address != nil {
		hospital.Address = *req.Address
	}
	if req.Departments != nil {
		hospital.Departments = *req.Departments
	}
	if req.Services != nil {
		hospital.Services = *req.Services
	}
	if req.BedCapacity != nil {
		hospital.BedCapacity = *req.BedCapacity
	}
	if req.Status != nil {
		hospital.Status = *req.Status
	}

	if err := s.repo.Update(ctx, hospital); err != nil {
		return nil, fmt.Errorf("failed to update hospital: %w", err)
	}
	s.cache.Delete(id.String())
	return hospital, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Hospital, error) {
	hospitals, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hospitals: %w", err)
	}
	return hospitals, nil
}
