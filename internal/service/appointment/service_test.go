package appointment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

type fakeRepo struct {
	appointments map[uuid.UUID]*model.Appointment
}

func (f *fakeRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, ok := f.appointments[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	return apt, nil
}

func (f *fakeRepo) Update(_ context.Context, apt *model.Appointment) error {
	f.appointments[apt.ID] = apt
	return nil
}

func (f *fakeRepo) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	return nil, nil
}

func newScheduled() (*Service, *model.Appointment) {
	apt := &model.Appointment{
		Base:   model.Base{ID: uuid.New()},
		Code:   "APT-TEST0001",
		Status: model.AppointmentStatusScheduled,
	}
	repo := &fakeRepo{appointments: map[uuid.UUID]*model.Appointment{apt.ID: apt}}
	return NewService(repo), apt
}

func statusPtr(s model.AppointmentStatus) *model.AppointmentStatus { return &s }

func TestUpdateStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from model.AppointmentStatus
		to   model.AppointmentStatus
		ok   bool
	}{
		{"scheduled to in_progress", model.AppointmentStatusScheduled, model.AppointmentStatusInProgress, true},
		{"scheduled to cancelled", model.AppointmentStatusScheduled, model.AppointmentStatusCancelled, true},
		{"scheduled to completed skips", model.AppointmentStatusScheduled, model.AppointmentStatusCompleted, false},
		{"in_progress to completed", model.AppointmentStatusInProgress, model.AppointmentStatusCompleted, true},
		{"in_progress to cancelled", model.AppointmentStatusInProgress, model.AppointmentStatusCancelled, false},
		{"completed is terminal", model.AppointmentStatusCompleted, model.AppointmentStatusInProgress, false},
		{"cancelled is terminal", model.AppointmentStatusCancelled, model.AppointmentStatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, apt := newScheduled()
			apt.Status = tt.from

			got, err := svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
				Status: statusPtr(tt.to),
			})
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got.Status)
			} else {
				assert.True(t, apperrors.IsConflict(err))
				assert.Equal(t, tt.from, apt.Status)
			}
		})
	}
}

func TestUpdateSameStatusIsNoOp(t *testing.T) {
	svc, apt := newScheduled()

	got, err := svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{
		Status: statusPtr(model.AppointmentStatusScheduled),
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, got.Status)
}

func TestUpdateNotes(t *testing.T) {
	svc, apt := newScheduled()

	notes := "patient requested an interpreter"
	got, err := svc.Update(context.Background(), apt.ID, &model.UpdateAppointmentRequest{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, got.Notes)
	assert.Equal(t, model.AppointmentStatusScheduled, got.Status)
}

func TestUpdateUnknownAppointment(t *testing.T) {
	svc := NewService(&fakeRepo{appointments: map[uuid.UUID]*model.Appointment{}})

	_, err := svc.Update(context.Background(), uuid.New(), &model.UpdateAppointmentRequest{
		Status: statusPtr(model.AppointmentStatusCancelled),
	})
	assert.True(t, apperrors.IsNotFound(err))
}
