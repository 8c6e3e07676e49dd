package pharmacy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "pharmacy")

type fakeNotifRepo struct {
	notifs  map[uuid.UUID]*model.PharmacyNotification
	pending int
}

func (f *fakeNotifRepo) Get(_ context.Context, id uuid.UUID) (*model.PharmacyNotification, error) {
	n, ok := f.notifs[id]
	if !ok {
		return nil, apperrors.NotFound("pharmacy notification", nil)
	}
	return n, nil
}

func (f *fakeNotifRepo) List(context.Context, *model.PharmacyNotificationFilters) ([]*model.PharmacyNotification, error) {
	return nil, nil
}

func (f *fakeNotifRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.NotificationStatus) error {
	if n, ok := f.notifs[id]; ok {
		n.Status = status
	}
	return nil
}

func (f *fakeNotifRepo) CountByStatus(context.Context, uuid.UUID, model.NotificationStatus) (int, error) {
	return f.pending, nil
}

type fakePrescriptionRepo struct {
	prescriptions map[uuid.UUID]*model.Prescription
	updated       model.MedicationLines
}

func (f *fakePrescriptionRepo) Get(_ context.Context, id uuid.UUID) (*model.Prescription, error) {
	p, ok := f.prescriptions[id]
	if !ok {
		return nil, apperrors.NotFound("prescription", nil)
	}
	return p, nil
}

func (f *fakePrescriptionRepo) List(context.Context, *model.PrescriptionFilters) ([]*model.Prescription, error) {
	return nil, nil
}

func (f *fakePrescriptionRepo) UpdateMedications(_ context.Context, _ uuid.UUID, medications model.MedicationLines) error {
	f.updated = medications
	return nil
}

type fakeDeliveryRepo struct {
	assigned int
	acceptOK bool
}

func (f *fakeDeliveryRepo) Get(context.Context, uuid.UUID) (*model.DeliveryTask, error) {
	return nil, apperrors.NotFound("delivery task", nil)
}
func (f *fakeDeliveryRepo) List(context.Context, *model.DeliveryTaskFilters) ([]*model.DeliveryTask, error) {
	return nil, nil
}
func (f *fakeDeliveryRepo) Accept(context.Context, uuid.UUID, uuid.UUID, time.Time) (bool, error) {
	return f.acceptOK, nil
}
func (f *fakeDeliveryRepo) Complete(context.Context, uuid.UUID, uuid.UUID, time.Time) (bool, error) {
	return false, nil
}
func (f *fakeDeliveryRepo) CountByStatus(context.Context, uuid.UUID, model.DeliveryTaskStatus) (int, error) {
	return f.assigned, nil
}

type fakeNurseRepo struct {
	requests map[uuid.UUID]*model.NurseRequest
}

func (f *fakeNurseRepo) Get(_ context.Context, id uuid.UUID) (*model.NurseRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, apperrors.NotFound("nurse request", nil)
	}
	return r, nil
}

func (f *fakeNurseRepo) ListOpen(context.Context, uuid.UUID) ([]*model.NurseRequest, error) {
	return nil, nil
}

// Accept mirrors the database compare-and-swap: only a pending request
// flips, and exactly once.
func (f *fakeNurseRepo) Accept(_ context.Context, id, nurseID uuid.UUID, at time.Time) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != model.NurseRequestStatusPending {
		return false, nil
	}
	r.Status = model.NurseRequestStatusAccepted
	r.AcceptedBy = &nurseID
	r.AcceptedAt = &at
	return true, nil
}

func (f *fakeNurseRepo) Complete(_ context.Context, id, nurseID uuid.UUID, at time.Time) (bool, error) {
	r, ok := f.requests[id]
	if !ok || r.Status != model.NurseRequestStatusAccepted || r.AcceptedBy == nil || *r.AcceptedBy != nurseID {
		return false, nil
	}
	r.Status = model.NurseRequestStatusCompleted
	r.CompletedAt = &at
	return true, nil
}

func (f *fakeNurseRepo) ListNotificationsForNurse(context.Context, uuid.UUID) ([]*model.NurseNotification, error) {
	return nil, nil
}
func (f *fakeNurseRepo) DismissNotification(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type fakeUserRepo struct {
	users  map[uuid.UUID]*model.User
	nurses []*model.User
}

func (f *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", nil)
	}
	return u, nil
}

func (f *fakeUserRepo) Create(context.Context, *model.User) error   { return nil }
func (f *fakeUserRepo) Update(context.Context, *model.User) error   { return nil }
func (f *fakeUserRepo) Deactivate(context.Context, uuid.UUID) error { return nil }
func (f *fakeUserRepo) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, apperrors.NotFound("user", nil)
}
func (f *fakeUserRepo) List(context.Context, *model.UserFilters) ([]*model.User, error) {
	return nil, nil
}
func (f *fakeUserRepo) ListActiveNurses(context.Context, uuid.UUID) ([]*model.User, error) {
	return f.nurses, nil
}
func (f *fakeUserRepo) UpdateLastLogin(context.Context, uuid.UUID, time.Time) error { return nil }

type fakeWorkflowRepo struct {
	req    *model.NurseRequest
	notifs []*model.NurseNotification
	event  *model.OutboxEvent
}

func (f *fakeWorkflowRepo) CreateAppointmentWithBill(context.Context, *model.Appointment, *model.Bill, []*model.OutboxEvent) error {
	return nil
}
func (f *fakeWorkflowRepo) CreatePrescriptionCascade(context.Context, *model.Prescription, *model.Bill, *model.PharmacyNotification, *model.DeliveryTask, []*model.OutboxEvent) error {
	return nil
}
func (f *fakeWorkflowRepo) CreateNurseBroadcast(_ context.Context, req *model.NurseRequest, notifs []*model.NurseNotification, event *model.OutboxEvent) error {
	f.req, f.notifs, f.event = req, notifs, event
	return nil
}

type fixture struct {
	svc          *Service
	notifRepo    *fakeNotifRepo
	rxRepo       *fakePrescriptionRepo
	deliveryRepo *fakeDeliveryRepo
	nurseRepo    *fakeNurseRepo
	userRepo     *fakeUserRepo
	workflowRepo *fakeWorkflowRepo
}

func newFixture() *fixture {
	f := &fixture{
		notifRepo:    &fakeNotifRepo{notifs: map[uuid.UUID]*model.PharmacyNotification{}},
		rxRepo:       &fakePrescriptionRepo{prescriptions: map[uuid.UUID]*model.Prescription{}},
		deliveryRepo: &fakeDeliveryRepo{},
		nurseRepo:    &fakeNurseRepo{requests: map[uuid.UUID]*model.NurseRequest{}},
		userRepo:     &fakeUserRepo{users: map[uuid.UUID]*model.User{}},
		workflowRepo: &fakeWorkflowRepo{},
	}
	f.svc = NewService(f.notifRepo, f.rxRepo, f.deliveryRepo, f.nurseRepo, f.userRepo, f.workflowRepo, testMetrics)
	return f
}

func (f *fixture) addPrescription(isEmergency bool, statuses ...model.MedicationStatus) *model.Prescription {
	lines := make(model.MedicationLines, len(statuses))
	for i, s := range statuses {
		lines[i] = model.MedicationLine{Name: "Paracetamol 500mg", Quantity: "10 tablets", Status: s}
	}
	p := &model.Prescription{
		Base:        model.Base{ID: uuid.New()},
		IsEmergency: isEmergency,
		Medications: lines,
	}
	f.rxRepo.prescriptions[p.ID] = p
	return p
}

func TestAdvanceMedicationForward(t *testing.T) {
	f := newFixture()
	p := f.addPrescription(false, model.MedicationStatusPrescribed)

	got, err := f.svc.AdvanceMedicationStatus(context.Background(), p.ID, &model.AdvanceMedicationRequest{
		MedicationIndex: 0,
		Status:          model.MedicationStatusReady,
	})
	require.NoError(t, err)
	assert.Equal(t, model.MedicationStatusReady, got.Medications[0].Status)
	assert.NotNil(t, got.Medications[0].StatusUpdatedAt)
	require.Len(t, f.rxRepo.updated, 1)
	assert.Equal(t, model.MedicationStatusReady, f.rxRepo.updated[0].Status)

	got, err = f.svc.AdvanceMedicationStatus(context.Background(), p.ID, &model.AdvanceMedicationRequest{
		MedicationIndex: 0,
		Status:          model.MedicationStatusSold,
	})
	require.NoError(t, err)
	assert.Equal(t, model.MedicationStatusSold, got.Medications[0].Status)
}

func TestAdvanceMedicationIdempotent(t *testing.T) {
	f := newFixture()
	p := f.addPrescription(false, model.MedicationStatusReady)

	got, err := f.svc.AdvanceMedicationStatus(context.Background(), p.ID, &model.AdvanceMedicationRequest{
		MedicationIndex: 0,
		Status:          model.MedicationStatusReady,
	})
	require.NoError(t, err)
	assert.Equal(t, model.MedicationStatusReady, got.Medications[0].Status)
	// No write for a no-op.
	assert.Nil(t, f.rxRepo.updated)
}

func TestAdvanceMedicationRejectsBackward(t *testing.T) {
	f := newFixture()
	p := f.addPrescription(false, model.MedicationStatusSold)

	_, err := f.svc.AdvanceMedicationStatus(context.Background(), p.ID, &model.AdvanceMedicationRequest{
		MedicationIndex: 0,
		Status:          model.MedicationStatusPrescribed,
	})
	assert.True(t, apperrors.IsConflict(err))
}

func TestAdvanceMedicationRejectsSkip(t *testing.T) {
	f := newFixture()
	p := f.addPrescription(false, model.MedicationStatusPrescribed)

	_, err := f.svc.AdvanceMedicationStatus(context.Background(), p.ID, &model.AdvanceMedicationRequest{
		MedicationIndex: 0,
		Status:          model.MedicationStatusSold,
	})
	assert.True(t, apperrors.IsConflict(err))
}

func TestAdvanceMedicationEmergencyNeverSold(t *testing.T) {
	f := newFixture()
	p := f.addPrescription(true, model.MedicationStatusReady)

	_, err := f.svc.AdvanceMedicationStatus(context.Background(), p.ID, &model.AdvanceMedicationRequest{
		MedicationIndex: 0,
		Status:          model.MedicationStatusSold,
	})
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, model.MedicationStatusReady, p.Medications[0].Status)
}

func TestAdvanceMedicationIndexOutOfRange(t *testing.T) {
	f := newFixture()
	p := f.addPrescription(false, model.MedicationStatusPrescribed)

	_, err := f.svc.AdvanceMedicationStatus(context.Background(), p.ID, &model.AdvanceMedicationRequest{
		MedicationIndex: 5,
		Status:          model.MedicationStatusReady,
	})
	assert.Error(t, err)
}

func TestInPeakWindow(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"weekday morning", time.Date(2026, 8, 26, 9, 0, 0, 0, time.UTC), true},   // Wednesday
		{"weekday lunch lull", time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC), false},
		{"weekday afternoon", time.Date(2026, 8, 26, 15, 30, 0, 0, time.UTC), true},
		{"weekday evening", time.Date(2026, 8, 26, 19, 0, 0, 0, time.UTC), false},
		{"weekend midday", time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC), true}, // Saturday
		{"weekend early", time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC), false},
		{"weekend evening", time.Date(2026, 8, 30, 17, 0, 0, 0, time.UTC), false}, // Sunday
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inPeakWindow(tt.t))
		})
	}
}

func TestIsPeakHourWorkloadOverride(t *testing.T) {
	f := newFixture()
	// Off-peak clock, but a backlog of work.
	f.svc.now = func() time.Time { return time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC) }
	f.notifRepo.pending = 8
	f.deliveryRepo.assigned = 5

	peak, workload, err := f.svc.IsPeakHour(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, peak)
	assert.Equal(t, 13, workload.Outstanding())
}

func TestIsPeakHourQuietOffPeak(t *testing.T) {
	f := newFixture()
	f.svc.now = func() time.Time { return time.Date(2026, 8, 26, 13, 0, 0, 0, time.UTC) }
	f.notifRepo.pending = 2

	peak, _, err := f.svc.IsPeakHour(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, peak)
}

func TestRequestAssistanceBroadcasts(t *testing.T) {
	f := newFixture()
	f.userRepo.nurses = []*model.User{
		{Base: model.Base{ID: uuid.New()}, Role: model.RoleNurse},
		{Base: model.Base{ID: uuid.New()}, Role: model.RoleNurse},
		{Base: model.Base{ID: uuid.New()}, Role: model.RoleNurse},
	}
	notif := &model.PharmacyNotification{
		Base:       model.Base{ID: uuid.New()},
		HospitalID: uuid.New(),
		Status:     model.NotificationStatusPending,
	}
	f.notifRepo.notifs[notif.ID] = notif

	req, err := f.svc.RequestAssistance(context.Background(), notif.ID, uuid.New(), &model.EscalationRequest{Reason: "peak hour backlog"})
	require.NoError(t, err)

	assert.Equal(t, model.NurseRequestStatusPending, req.Status)
	assert.Len(t, f.workflowRepo.notifs, 3)
	require.NotNil(t, f.workflowRepo.event)
	assert.Equal(t, model.EventNurseAssistanceNeeded, f.workflowRepo.event.EventType)
	assert.Equal(t, model.NotificationStatusAssistanceRequested, notif.Status)
}

func TestRequestAssistanceNoNurses(t *testing.T) {
	f := newFixture()
	notif := &model.PharmacyNotification{
		Base:   model.Base{ID: uuid.New()},
		Status: model.NotificationStatusPending,
	}
	f.notifRepo.notifs[notif.ID] = notif

	_, err := f.svc.RequestAssistance(context.Background(), notif.ID, uuid.New(), &model.EscalationRequest{})
	assert.True(t, apperrors.IsConflict(err))
	assert.Nil(t, f.workflowRepo.req)
}

func TestAcceptNurseRequestFirstWins(t *testing.T) {
	f := newFixture()
	nurse1 := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleNurse, IsActive: true}
	nurse2 := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleNurse, IsActive: true}
	f.userRepo.users[nurse1.ID] = nurse1
	f.userRepo.users[nurse2.ID] = nurse2

	req := &model.NurseRequest{
		Base:   model.Base{ID: uuid.New()},
		Status: model.NurseRequestStatusPending,
	}
	f.nurseRepo.requests[req.ID] = req

	got, err := f.svc.AcceptNurseRequest(context.Background(), req.ID, nurse1.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AcceptedBy)
	assert.Equal(t, nurse1.ID, *got.AcceptedBy)

	// The second nurse loses the race and gets a conflict, not an
	// overwrite.
	_, err = f.svc.AcceptNurseRequest(context.Background(), req.ID, nurse2.ID)
	assert.True(t, apperrors.IsConflict(err))
	assert.Equal(t, nurse1.ID, *req.AcceptedBy)
}

func TestAcceptNurseRequestRejectsNonNurse(t *testing.T) {
	f := newFixture()
	doctor := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleDoctor, IsActive: true}
	f.userRepo.users[doctor.ID] = doctor

	req := &model.NurseRequest{Base: model.Base{ID: uuid.New()}, Status: model.NurseRequestStatusPending}
	f.nurseRepo.requests[req.ID] = req

	_, err := f.svc.AcceptNurseRequest(context.Background(), req.ID, doctor.ID)
	assert.Error(t, err)
	assert.Equal(t, model.NurseRequestStatusPending, req.Status)
}

func TestCompleteNurseRequestOnlyByAcceptor(t *testing.T) {
	f := newFixture()
	nurse1 := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleNurse, IsActive: true}
	nurse2 := &model.User{Base: model.Base{ID: uuid.New()}, Role: model.RoleNurse, IsActive: true}
	f.userRepo.users[nurse1.ID] = nurse1
	f.userRepo.users[nurse2.ID] = nurse2

	req := &model.NurseRequest{Base: model.Base{ID: uuid.New()}, Status: model.NurseRequestStatusPending}
	f.nurseRepo.requests[req.ID] = req

	_, err := f.svc.AcceptNurseRequest(context.Background(), req.ID, nurse1.ID)
	require.NoError(t, err)

	_, err = f.svc.CompleteNurseRequest(context.Background(), req.ID, nurse2.ID)
	assert.True(t, apperrors.IsConflict(err))

	got, err := f.svc.CompleteNurseRequest(context.Background(), req.ID, nurse1.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NurseRequestStatusCompleted, got.Status)
}
