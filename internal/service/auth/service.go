package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/auth"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/idgen"
	"github.com/jwalitptl/hms-api/pkg/security"
)

// Service handles registration, login and token refresh.
type Service struct {
	userRepo repository.UserRepository
	hasher   security.PasswordHasher
	jwt      auth.JWTService
}

func NewService(userRepo repository.UserRepository, hasher security.PasswordHasher, jwt auth.JWTService) *Service {
	return &Service{userRepo: userRepo, hasher: hasher, jwt: jwt}
}

// Register creates a new account. Self-service registration is limited
// to patients and delivery partners; staff accounts come through the
// admin user endpoints.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, *model.TokenResponse, error) {
	if req.Role != model.RolePatient && req.Role != model.RoleDeliveryPartner {
		return nil, nil, errors.Forbidden("self-registration is limited to patients and delivery partners", nil)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if existing, err := s.userRepo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, nil, errors.Conflict("email is already registered", nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, nil, errors.BadRequest("invalid password", err)
	}

	prefix := idgen.PrefixPatient
	if req.Role == model.RoleDeliveryPartner {
		prefix = idgen.PrefixStaff
	}
	user := &model.User{
		Base:         model.Base{ID: uuid.New()},
		Code:         idgen.New(prefix),
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
			return nil, nil, errors.BadRequest("invalid hospital ID", err)
		}
		user.HospitalID = &hospitalID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Login verifies credentials and issues a token pair. Invalid email and
// invalid password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.User, *model.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, errors.Unauthorized(fmt.Errorf("invalid credentials"))
	}
	if !user.IsActive {
		return nil, nil, errors.Unauthorized(fmt.Errorf("account is deactivated"))
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, nil, errors.Unauthorized(fmt.Errorf("invalid credentials"))
	}

	// Best-effort; login still succeeds if this write fails.
	_ = s.userRepo.UpdateLastLogin(ctx, user.ID, time.Now())

	tokens, err := s.issueTokens(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh exchanges a valid refresh token for a new pair. The user is
// re-read so a deactivation since issuance revokes access.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized(err)
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, errors.Unauthorized(fmt.Errorf("user no longer exists"))
	}
	if !user.IsActive {
		return nil, errors.Unauthorized(fmt.Errorf("account is deactivated"))
	}
	return s.issueTokens(user)
}

func (s *Service) issueTokens(user *model.User) (*model.TokenResponse, error) {
	access, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}
