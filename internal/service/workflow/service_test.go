package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

// One registry-backed metrics instance for the whole test binary.
var testMetrics = metrics.NewMetrics("test", "workflow")

type fakeWorkflowRepo struct {
	apt    *model.Appointment
	bill   *model.Bill
	p      *model.Prescription
	notif  *model.PharmacyNotification
	task   *model.DeliveryTask
	events []*model.OutboxEvent
}

func (f *fakeWorkflowRepo) CreateAppointmentWithBill(_ context.Context, apt *model.Appointment, bill *model.Bill, events []*model.OutboxEvent) error {
	f.apt, f.bill, f.events = apt, bill, events
	return nil
}

func (f *fakeWorkflowRepo) CreatePrescriptionCascade(_ context.Context, p *model.Prescription, bill *model.Bill, notif *model.PharmacyNotification, task *model.DeliveryTask, events []*model.OutboxEvent) error {
	f.p, f.bill, f.notif, f.task, f.events = p, bill, notif, task, events
	return nil
}

func (f *fakeWorkflowRepo) CreateNurseBroadcast(context.Context, *model.NurseRequest, []*model.NurseNotification, *model.OutboxEvent) error {
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error      { return nil }
func (f *fakeUserRepo) Update(context.Context, *model.User) error      { return nil }
func (f *fakeUserRepo) Deactivate(context.Context, uuid.UUID) error    { return nil }
func (f *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (f *fakeUserRepo) List(context.Context, *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) ListActiveNurses(context.Context, uuid.UUID) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error { return nil }

type fakeHospitalRepo struct {
	hospitals map[uuid.UUID]*model.Hospital
}

func (f *fakeHospitalRepo) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	h, ok := f.hospitals[id]
	if !ok {
		return nil, apperrors.NotFound("hospital", nil)
	}
	return h, nil
}

func (f *fakeHospitalRepo) Create(context.Context, *model.Hospital) error { return nil }
func (f *fakeHospitalRepo) Update(context.Context, *model.Hospital) error { return nil }
func (f *fakeHospitalRepo) List(context.Context) ([]*model.Hospital, error) {
	return nil, nil
}

type fixture struct {
	svc        *Service
	repo       *fakeWorkflowRepo
	hospitalID uuid.UUID
	patient    *model.User
	doctor     *model.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	hospitalID := uuid.New()
	patient := &model.User{
		Base:     model.Base{ID: uuid.New()},
		Role:     model.RolePatient,
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		IsActive: true,
	}
	doctor := &model.User{
		Base:     model.Base{ID: uuid.New()},
		Role:     model.RoleDoctor,
		Name:     "Dr. Mehta",
		IsActive: true,
	}

	repo := &fakeWorkflowRepo{}
	svc := NewService(
		repo,
		&fakeUserRepo{users: map[uuid.UUID]*model.User{patient.ID: patient, doctor.ID: doctor}},
		&fakeHospitalRepo{hospitals: map[uuid.UUID]*model.Hospital{hospitalID: {
			Base:        model.Base{ID: hospitalID},
			Name:        "City General",
			Departments: []string{"Cardiology", "Neurology", "General Medicine"},
		}}},
		email.NoopService{},
		testMetrics,
		logger.NewLogger(nil),
	)

	return &fixture{svc: svc, repo: repo, hospitalID: hospitalID, patient: patient, doctor: doctor}
}

func (f *fixture) scheduleRequest() *model.ScheduleAppointmentRequest {
	return &model.ScheduleAppointmentRequest{
		HospitalID: f.hospitalID.String(),
		PatientID:  f.patient.ID.String(),
		DoctorID:   f.doctor.ID.String(),
		Department: "Cardiology",
		Type:       model.AppointmentTypeConsultation,
		StartTime:  time.Now().Add(48 * time.Hour),
	}
}

func TestScheduleAppointmentWithBilling(t *testing.T) {
	f := newFixture(t)

	apt, bill, err := f.svc.ScheduleAppointmentWithBilling(context.Background(), f.scheduleRequest())
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusScheduled, apt.Status)
	assert.Contains(t, apt.Code, "APT-")
	assert.Equal(t, f.patient.ID, apt.PatientID)

	// Cardiology consultation is 150, tax 10%.
	require.Len(t, bill.Services, 1)
	assert.Equal(t, 150.0, bill.Services[0].Cost)
	assert.Equal(t, 150.0, bill.Subtotal)
	assert.Equal(t, 15.0, bill.Tax)
	assert.Equal(t, 165.0, bill.TotalAmount)
	assert.Equal(t, model.BillStatusPending, bill.Status)

	// Appointment and bill went through the same cascade, with the event.
	assert.Same(t, apt, f.repo.apt)
	assert.Same(t, bill, f.repo.bill)
	require.Len(t, f.repo.events, 1)
	assert.Equal(t, model.EventAppointmentScheduled, f.repo.events[0].EventType)
}

func TestScheduleAppointmentRejectsUnknownDepartment(t *testing.T) {
	f := newFixture(t)

	req := f.scheduleRequest()
	req.Department = "Astrology"

	_, _, err := f.svc.ScheduleAppointmentWithBilling(context.Background(), req)
	assert.Error(t, err)
	assert.Nil(t, f.repo.apt)
}

func TestScheduleAppointmentRejectsShortNotice(t *testing.T) {
	f := newFixture(t)

	req := f.scheduleRequest()
	req.StartTime = time.Now().Add(2 * time.Hour)

	_, _, err := f.svc.ScheduleAppointmentWithBilling(context.Background(), req)
	assert.Error(t, err)
}

func TestScheduleAppointmentRejectsNonDoctor(t *testing.T) {
	f := newFixture(t)

	req := f.scheduleRequest()
	req.DoctorID = f.patient.ID.String()

	_, _, err := f.svc.ScheduleAppointmentWithBilling(context.Background(), req)
	assert.Error(t, err)
}

func prescriptionRequest(f *fixture) *model.CreatePrescriptionRequest {
	return &model.CreatePrescriptionRequest{
		HospitalID: f.hospitalID.String(),
		PatientID:  f.patient.ID.String(),
		DoctorID:   f.doctor.ID.String(),
		Medications: []model.MedicationLineRequest{
			{Name: "Amoxicillin 500mg", Dosage: "1 capsule twice daily", Quantity: "14 capsules", Duration: "7 days"},
		},
	}
}

func TestCreatePrescriptionOutpatient(t *testing.T) {
	f := newFixture(t)

	p, bill, err := f.svc.CreatePrescriptionWithBilling(context.Background(), prescriptionRequest(f))
	require.NoError(t, err)

	assert.Equal(t, model.DeliveryTypePickup, p.DeliveryType)
	assert.False(t, p.IsEmergency)
	require.Len(t, p.Medications, 1)
	assert.Equal(t, model.MedicationStatusPrescribed, p.Medications[0].Status)

	// 14 x 3.8 = 53.2, tax 5.32.
	assert.Equal(t, 53.2, bill.Subtotal)
	assert.Equal(t, 5.32, bill.Tax)
	assert.Equal(t, 58.52, bill.TotalAmount)

	// Outpatients pick up at the counter; no delivery task.
	assert.Nil(t, f.repo.task)
	require.NotNil(t, f.repo.notif)
	assert.False(t, f.repo.notif.IsEmergency)
	assert.Len(t, f.repo.events, 2)
}

func TestCreatePrescriptionAdmittedPatient(t *testing.T) {
	f := newFixture(t)
	f.patient.IsAdmitted = true
	f.patient.BedNumber = "ICU-004"
	f.patient.Ward = "ICU"

	p, _, err := f.svc.CreatePrescriptionWithBilling(context.Background(), prescriptionRequest(f))
	require.NoError(t, err)

	// Admission drives bedside routing and emergency handling.
	assert.Equal(t, model.DeliveryTypeBedside, p.DeliveryType)
	assert.True(t, p.IsEmergency)

	require.NotNil(t, f.repo.task)
	assert.Equal(t, "ICU-004", f.repo.task.BedNumber)
	assert.Equal(t, "ICU", f.repo.task.Ward)
	assert.Equal(t, model.DeliveryTaskStatusAssigned, f.repo.task.Status)
	assert.True(t, f.repo.notif.IsEmergency)
	assert.Len(t, f.repo.events, 3)
}

func TestCreatePrescriptionRequiresMedications(t *testing.T) {
	f := newFixture(t)

	req := prescriptionRequest(f)
	req.Medications = nil

	_, _, err := f.svc.CreatePrescriptionWithBilling(context.Background(), req)
	assert.Error(t, err)
}
