package pharmacy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/idgen"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

// Outstanding work above this count means the pharmacy is busy no
// matter what the clock says.
const peakWorkloadThreshold = 10

// Service coordinates the pharmacy desk: prescription notifications,
// the medication dispensing state machine, the peak-hour heuristic and
// escalation to the nursing pool.
type Service struct {
	notifRepo        repository.PharmacyNotificationRepository
	prescriptionRepo repository.PrescriptionRepository
	deliveryRepo     repository.DeliveryTaskRepository
	nurseRepo        repository.NurseRequestRepository
	userRepo         repository.UserRepository
	workflowRepo     repository.WorkflowRepository
	metrics          *metrics.Metrics

	// now is swappable so the peak-hour window is testable.
	now func() time.Time
}

func NewService(
	notifRepo repository.PharmacyNotificationRepository,
	prescriptionRepo repository.PrescriptionRepository,
	deliveryRepo repository.DeliveryTaskRepository,
	nurseRepo repository.NurseRequestRepository,
	userRepo repository.UserRepository,
	workflowRepo repository.WorkflowRepository,
	m *metrics.Metrics,
) *Service {
	return &Service{
		notifRepo:        notifRepo,
		prescriptionRepo: prescriptionRepo,
		deliveryRepo:     deliveryRepo,
		nurseRepo:        nurseRepo,
		userRepo:         userRepo,
		workflowRepo:     workflowRepo,
		metrics:          m,
		now:              time.Now,
	}
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	p, err := s.prescriptionRepo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("prescription", err)
	}
	return p, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error) {
	prescriptions, err := s.prescriptionRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}

func (s *Service) ListNotifications(ctx context.Context, filters *model.PharmacyNotificationFilters) ([]*model.PharmacyNotification, error) {
	notifications, err := s.notifRepo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pharmacy notifications: %w", err)
	}
	return notifications, nil
}

func (s *Service) MarkNotificationProcessed(ctx context.Context, id uuid.UUID) error {
	notif, err := s.notifRepo.Get(ctx, id)
	if err != nil {
		return errors.NotFound("pharmacy notification", err)
	}
	if notif.Status == model.NotificationStatusProcessed {
		return nil
	}
	if err := s.notifRepo.UpdateStatus(ctx, id, model.NotificationStatusProcessed); err != nil {
		return fmt.Errorf("failed to mark notification processed: %w", err)
	}
	return nil
}

// AdvanceMedicationStatus moves one medication line through the
// dispensing state machine: prescribed -> ready -> sold, one step at a
// time. Re-applying the current status is an idempotent no-op; any
// backward or skipping move is rejected. Emergency prescriptions are
// dispensed at the bedside and are never sold over the counter.
func (s *Service) AdvanceMedicationStatus(ctx context.Context, prescriptionID uuid.UUID, req *model.AdvanceMedicationRequest) (*model.Prescription, error) {
	if !req.Status.Valid() {
		return nil, errors.BadRequest(fmt.Sprintf("invalid medication status: %s", req.Status), nil)
	}

	p, err := s.prescriptionRepo.Get(ctx, prescriptionID)
	if err != nil {
		return nil, errors.NotFound("prescription", err)
	}
	if req.MedicationIndex < 0 || req.MedicationIndex >= len(p.Medications) {
		return nil, errors.BadRequest(fmt.Sprintf("medication index %d out of range", req.MedicationIndex), nil)
	}

	line := &p.Medications[req.MedicationIndex]
	if line.Status == req.Status {
		return p, nil
	}
	if p.IsEmergency && req.Status == model.MedicationStatusSold {
		return nil, errors.Conflict("emergency medications are dispensed at the bedside, not sold", nil)
	}
	if nextStatus(line.Status) != req.Status {
		return nil, errors.Conflict(fmt.Sprintf("cannot move medication from %s to %s", line.Status, req.Status), nil)
	}

	updatedAt := s.now()
	line.Status = req.Status
	line.StatusUpdatedAt = &updatedAt

	if err := s.prescriptionRepo.UpdateMedications(ctx, p.ID, p.Medications); err != nil {
		return nil, fmt.Errorf("failed to update medication status: %w", err)
	}
	return p, nil
}

func nextStatus(current model.MedicationStatus) model.MedicationStatus {
	switch current {
	case model.MedicationStatusPrescribed:
		return model.MedicationStatusReady
	case model.MedicationStatusReady:
		return model.MedicationStatusSold
	}
	return ""
}

// Workload counts the outstanding pharmacy work for a hospital.
func (s *Service) Workload(ctx context.Context, hospitalID uuid.UUID) (*model.PharmacyWorkload, error) {
	pending, err := s.notifRepo.CountByStatus(ctx, hospitalID, model.NotificationStatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending notifications: %w", err)
	}
	assigned, err := s.deliveryRepo.CountByStatus(ctx, hospitalID, model.DeliveryTaskStatusAssigned)
	if err != nil {
		return nil, fmt.Errorf("failed to count assigned deliveries: %w", err)
	}
	return &model.PharmacyWorkload{
		PendingNotifications: pending,
		AssignedDeliveries:   assigned,
	}, nil
}

// IsPeakHour reports whether the pharmacy should surface the assistance
// banner. True inside the busy windows (weekdays 08-12 and 14-18,
// weekends 10-16) or whenever outstanding work exceeds the threshold
// regardless of the clock.
func (s *Service) IsPeakHour(ctx context.Context, hospitalID uuid.UUID) (bool, *model.PharmacyWorkload, error) {
	workload, err := s.Workload(ctx, hospitalID)
	if err != nil {
		return false, nil, err
	}
	if workload.Outstanding() > peakWorkloadThreshold {
		return true, workload, nil
	}
	return inPeakWindow(s.now()), workload, nil
}

func inPeakWindow(t time.Time) bool {
	hour := t.Hour()
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return hour >= 10 && hour < 16
	}
	return (hour >= 8 && hour < 12) || (hour >= 14 && hour < 18)
}

// RequestAssistance escalates a pharmacy notification to every active
// nurse in the hospital. One NurseRequest is created with a per-nurse
// notification fan-out, all in a single transaction.
func (s *Service) RequestAssistance(ctx context.Context, notificationID, requestedBy uuid.UUID, req *model.EscalationRequest) (*model.NurseRequest, error) {
	notif, err := s.notifRepo.Get(ctx, notificationID)
	if err != nil {
		return nil, errors.NotFound("pharmacy notification", err)
	}
	if notif.Status == model.NotificationStatusAssistanceRequested {
		return nil, errors.Conflict("assistance has already been requested for this notification", nil)
	}

	nurses, err := s.userRepo.ListActiveNurses(ctx, notif.HospitalID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active nurses: %w", err)
	}
	if len(nurses) == 0 {
		return nil, errors.Conflict("no active nurses available to assist", nil)
	}

	nurseReq := &model.NurseRequest{
		Base:        model.Base{ID: uuid.New()},
		Code:        idgen.New(idgen.PrefixNurseRequest),
		HospitalID:  notif.HospitalID,
		RequestedBy: requestedBy,
		Reason:      req.Reason,
		Status:      model.NurseRequestStatusPending,
	}

	notifs := make([]*model.NurseNotification, 0, len(nurses))
	for _, nurse := range nurses {
		notifs = append(notifs, &model.NurseNotification{
			Base:           model.Base{ID: uuid.New()},
			NurseRequestID: nurseReq.ID,
			NurseID:        nurse.ID,
			HospitalID:     notif.HospitalID,
		})
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"nurse_request_id": nurseReq.ID,
		"hospital_id":      nurseReq.HospitalID,
		"requested_by":     requestedBy,
		"nurse_count":      len(nurses),
	})
	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: model.EventNurseAssistanceNeeded,
		Payload:   payload,
	}

	if err := s.workflowRepo.CreateNurseBroadcast(ctx, nurseReq, notifs, event); err != nil {
		return nil, fmt.Errorf("failed to broadcast nurse request: %w", err)
	}

	if err := s.notifRepo.UpdateStatus(ctx, notificationID, model.NotificationStatusAssistanceRequested); err != nil {
		return nil, fmt.Errorf("failed to flag notification for assistance: %w", err)
	}

	s.metrics.NurseEscalations.Inc()
	return nurseReq, nil
}

// AcceptNurseRequest claims an escalation for one nurse. The underlying
// update only succeeds while the request is still pending, so when two
// nurses tap accept at once exactly one wins and the other gets a
// conflict.
func (s *Service) AcceptNurseRequest(ctx context.Context, requestID, nurseID uuid.UUID) (*model.NurseRequest, error) {
	nurse, err := s.userRepo.Get(ctx, nurseID)
	if err != nil {
		return nil, errors.NotFound("nurse", err)
	}
	if nurse.Role != model.RoleNurse {
		return nil, errors.Forbidden("only nurses can accept assistance requests", nil)
	}

	ok, err := s.nurseRepo.Accept(ctx, requestID, nurseID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to accept nurse request: %w", err)
	}
	if !ok {
		return nil, errors.Conflict("request has already been accepted by another nurse", nil)
	}
	return s.nurseRepo.Get(ctx, requestID)
}

// CompleteNurseRequest closes an escalation. Only the nurse who
// accepted it can complete it.
func (s *Service) CompleteNurseRequest(ctx context.Context, requestID, nurseID uuid.UUID) (*model.NurseRequest, error) {
	ok, err := s.nurseRepo.Complete(ctx, requestID, nurseID, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to complete nurse request: %w", err)
	}
	if !ok {
		return nil, errors.Conflict("request is not accepted by this nurse", nil)
	}
	return s.nurseRepo.Get(ctx, requestID)
}

func (s *Service) ListOpenRequests(ctx context.Context, hospitalID uuid.UUID) ([]*model.NurseRequest, error) {
	return s.nurseRepo.ListOpen(ctx, hospitalID)
}

func (s *Service) ListNurseNotifications(ctx context.Context, nurseID uuid.UUID) ([]*model.NurseNotification, error) {
	return s.nurseRepo.ListNotificationsForNurse(ctx, nurseID)
}

func (s *Service) DismissNurseNotification(ctx context.Context, id, nurseID uuid.UUID) error {
	if err := s.nurseRepo.DismissNotification(ctx, id, nurseID); err != nil {
		return errors.NotFound("nurse notification", err)
	}
	return nil
}
