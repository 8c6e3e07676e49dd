package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/idgen"
	"github.com/jwalitptl/hms-api/pkg/security"
)

// Service manages the shared user directory: patients, hospital staff
// and delivery partners all live in one table, discriminated by role.
type Service struct {
	repo   repository.UserRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.UserRepository, hasher security.PasswordHasher) *Service {
	return &Service{repo: repo, hasher: hasher}
}

func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, errors.BadRequest(fmt.Sprintf("invalid role: %s", req.Role), nil)
	}
	if req.Role.IsStaff() && req.HospitalID == "" {
		return nil, errors.BadRequest("hospital staff must belong to a hospital", nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.Conflict("email is already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Code:         idgen.New(codePrefix(req.Role)),
		Role:         req.Role,
		Name:         req.Name,
		Email:        email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Department:   req.Department,
		IsActive:     true,
	}
	if req.HospitalID != "" {
		hospitalID, err := uuid.Parse(req.HospitalID)
		if err != nil {
			return nil, errors.BadRequest("invalid hospital ID", err)
		}
		user.HospitalID = &hospitalID
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("user", err)
	}
	return user, nil
}

// Update applies partial updates. Admission state changes here are what
// the prescription cascade later reads to route delivery.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("user", err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Department != nil {
		user.Department = *req.Department
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.IsAdmitted != nil {
		if *req.IsAdmitted && user.Role != model.RolePatient {
			return nil, errors.BadRequest("only patients can be admitted", nil)
		}
		user.IsAdmitted = *req.IsAdmitted
		if !user.IsAdmitted {
			user.BedNumber = ""
			user.Ward = ""
		}
	}
	if req.BedNumber != nil {
		user.BedNumber = *req.BedNumber
	}
	if req.Ward != nil {
		user.Ward = *req.Ward
	}
	if user.IsAdmitted && user.BedNumber == "" {
		return nil, errors.BadRequest("admitted patients need a bed number", nil)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return errors.NotFound("user", err)
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

func (s *Service) List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error) {
	users, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func codePrefix(role model.Role) string {
	if role == model.RolePatient {
		return idgen.PrefixPatient
	}
	return idgen.PrefixStaff
}
