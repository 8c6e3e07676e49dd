package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

type fakeRepo struct {
	users   map[uuid.UUID]*model.User
	byEmail map[string]*model.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:   map[uuid.UUID]*model.User{},
		byEmail: map[string]*model.User{},
	}
}

func (f *fakeRepo) Create(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeRepo) Update(_ context.Context, u *model.User) error {
	f.users[u.ID] = u
	return nil
}

func (f *fakeRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	if u, ok := f.users[id]; ok {
		u.IsActive = false
	}
	return nil
}

func (f *fakeRepo) List(context.Context, *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeRepo) ListActiveNurses(context.Context, uuid.UUID) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error { return nil }

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error)  { return "hashed:" + password, nil }
func (plainHasher) Compare(hashed, password string) error { return nil }

func createRequest() *model.CreateUserRequest {
	return &model.CreateUserRequest{
		Role:     model.RolePatient,
		Name:     "Asha Rao",
		Email:    "Asha@Example.com",
		Password: "correct-horse",
	}
}

func TestCreatePatient(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	u, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Contains(t, u.Code, "PAT-")
	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, "hashed:correct-horse", u.PasswordHash)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmitted)
}

func TestCreateStaffNeedsHospital(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	req := createRequest()
	req.Role = model.RoleDoctor

	_, err := svc.Create(context.Background(), req)
	assert.Error(t, err)

	req.HospitalID = uuid.New().String()
	u, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, u.Code, "STF-")
	require.NotNil(t, u.HospitalID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	_, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	// Same address, different casing.
	req := createRequest()
	req.Email = "ASHA@example.COM"
	_, err = svc.Create(context.Background(), req)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	req := createRequest()
	req.Role = model.Role("janitor")
	_, err := svc.Create(context.Background(), req)
	assert.Error(t, err)
}

func boolPtr(b bool) *bool    { return &b }
func strPtr(s string) *string { return &s }

func TestAdmitPatient(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, plainHasher{})

	u, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), u.ID, &model.UpdateUserRequest{
		IsAdmitted: boolPtr(true),
		BedNumber:  strPtr("W2-17"),
		Ward:       strPtr("General"),
	})
	require.NoError(t, err)
	assert.True(t, got.IsAdmitted)
	assert.Equal(t, "W2-17", got.BedNumber)
	assert.Equal(t, model.DeliveryTypeBedside, got.DeliveryType())
}

func TestAdmitWithoutBedRejected(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	u, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), u.ID, &model.UpdateUserRequest{
		IsAdmitted: boolPtr(true),
	})
	assert.Error(t, err)
}

func TestAdmitStaffRejected(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	req := createRequest()
	req.Role = model.RoleNurse
	req.HospitalID = uuid.New().String()
	u, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), u.ID, &model.UpdateUserRequest{
		IsAdmitted: boolPtr(true),
		BedNumber:  strPtr("W1-01"),
	})
	assert.Error(t, err)
}

func TestDischargeClearsBed(t *testing.T) {
	svc := NewService(newFakeRepo(), plainHasher{})

	u, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), u.ID, &model.UpdateUserRequest{
		IsAdmitted: boolPtr(true),
		BedNumber:  strPtr("W2-17"),
		Ward:       strPtr("General"),
	})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), u.ID, &model.UpdateUserRequest{
		IsAdmitted: boolPtr(false),
	})
	require.NoError(t, err)
	assert.False(t, got.IsAdmitted)
	assert.Empty(t, got.BedNumber)
	assert.Empty(t, got.Ward)
	assert.Equal(t, model.DeliveryTypePickup, got.DeliveryType())
}

func TestDeactivate(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, plainHasher{})

	u, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), u.ID))
	assert.False(t, repo.users[u.ID].IsActive)

	err = svc.Deactivate(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}
