package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/idgen"
	"github.com/jwalitptl/hms-api/pkg/logger"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

// Business rules for scheduling.
const (
	MinAdvanceBooking = 24 * time.Hour
	MaxAdvanceBooking = 90 * 24 * time.Hour
)

// Service is the clinical workflow orchestrator: a clinical action
// (appointment, prescription) produces the primary record, a derived
// bill and the downstream pharmacy/delivery fan-out in one
// transactional cascade.
type Service struct {
	workflowRepo repository.WorkflowRepository
	userRepo     repository.UserRepository
	hospitalRepo repository.HospitalRepository
	emailSvc     email.EmailService
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

func NewService(
	workflowRepo repository.WorkflowRepository,
	userRepo repository.UserRepository,
	hospitalRepo repository.HospitalRepository,
	emailSvc email.EmailService,
	m *metrics.Metrics,
	l *logger.Logger,
) *Service {
	return &Service{
		workflowRepo: workflowRepo,
		userRepo:     userRepo,
		hospitalRepo: hospitalRepo,
		emailSvc:     emailSvc,
		metrics:      m,
		logger:       l,
	}
}

// ScheduleAppointmentWithBilling writes one appointment and its linked
// bill. The consultation fee comes from the (type, department) table;
// tax is 10% of the subtotal.
func (s *Service) ScheduleAppointmentWithBilling(ctx context.Context, req *model.ScheduleAppointmentRequest) (*model.Appointment, *model.Bill, error) {
	timer := prometheus.NewTimer(s.metrics.WorkflowLatency.WithLabelValues("schedule_appointment"))
	defer timer.ObserveDuration()

	if !req.Type.Valid() {
		return nil, nil, errors.BadRequest(fmt.Sprintf("invalid appointment type: %s", req.Type), nil)
	}
	if err := s.validateBookingTime(req.StartTime); err != nil {
		return nil, nil, err
	}

	hospitalID, patientID, doctorID, err := parseRefs(req.HospitalID, req.PatientID, req.DoctorID)
	if err != nil {
		return nil, nil, err
	}

	patient, err := s.verifyRole(ctx, patientID, model.RolePatient)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.verifyRole(ctx, doctorID, model.RoleDoctor); err != nil {
		return nil, nil, err
	}
	if err := s.verifyDepartment(ctx, hospitalID, req.Department); err != nil {
		return nil, nil, err
	}

	fee := GetConsultationFee(req.Type, req.Department)
	bill := newBill(hospitalID, patient.ID,
		model.ServiceLines{{
			Name: fmt.Sprintf("%s - %s", req.Type, req.Department),
			Cost: fee,
		}},
		nil,
	)

	apt := &model.Appointment{
		Base:       model.Base{ID: uuid.New()},
		Code:       idgen.New(idgen.PrefixAppointment),
		HospitalID: hospitalID,
		PatientID:  patient.ID,
		DoctorID:   doctorID,
		Department: req.Department,
		Type:       req.Type,
		StartTime:  req.StartTime,
		Status:     model.AppointmentStatusScheduled,
		Notes:      req.Notes,
	}

	events := []*model.OutboxEvent{
		newEvent(model.EventAppointmentScheduled, map[string]interface{}{
			"appointment_id": apt.ID,
			"patient_id":     apt.PatientID,
			"hospital_id":    apt.HospitalID,
			"bill_id":        bill.ID,
			"start_time":     apt.StartTime,
		}),
	}

	if err := s.workflowRepo.CreateAppointmentWithBill(ctx, apt, bill, events); err != nil {
		return nil, nil, fmt.Errorf("failed to schedule appointment: %w", err)
	}

	s.metrics.AppointmentsScheduled.Inc()

	// Best-effort; a mail failure never fails the booking.
	if patient.Email != "" {
		if err := s.emailSvc.SendAppointmentConfirmation(patient.Email, apt, bill); err != nil {
			s.logger.Error(err, "failed to send appointment confirmation", "appointment_id", apt.ID)
		}
	}
	return apt, bill, nil
}

// CreatePrescriptionWithBilling writes a prescription, its bill, a
// pharmacy notification and, for currently admitted patients, a bedside
// delivery task. The delivery decision re-reads the patient record at
// write time rather than trusting a snapshot the caller captured
// earlier in the session.
func (s *Service) CreatePrescriptionWithBilling(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, *model.Bill, error) {
	timer := prometheus.NewTimer(s.metrics.WorkflowLatency.WithLabelValues("create_prescription"))
	defer timer.ObserveDuration()

	if len(req.Medications) == 0 {
		return nil, nil, errors.BadRequest("at least one medication is required", nil)
	}

	hospitalID, patientID, doctorID, err := parseRefs(req.HospitalID, req.PatientID, req.DoctorID)
	if err != nil {
		return nil, nil, err
	}

	patient, err := s.verifyRole(ctx, patientID, model.RolePatient)
	if err != nil {
		return nil, nil, err
	}
	if _, err := s.verifyRole(ctx, doctorID, model.RoleDoctor); err != nil {
		return nil, nil, err
	}

	lines := make(model.MedicationLines, 0, len(req.Medications))
	charges := make(model.MedicationCharges, 0, len(req.Medications))
	for _, m := range req.Medications {
		lines = append(lines, model.MedicationLine{
			Name:     m.Name,
			Dosage:   m.Dosage,
			Quantity: m.Quantity,
			Duration: m.Duration,
			Status:   model.MedicationStatusPrescribed,
		})
		count := ParseQuantity(m.Quantity)
		charges = append(charges, model.MedicationCharge{
			Name:     m.Name,
			Cost:     GetMedicationCost(m.Name),
			Quantity: count,
		})
	}

	bill := newBill(hospitalID, patient.ID, nil, charges)

	// Admitted patients get emergency handling and bedside routing.
	isEmergency := req.IsEmergency || patient.IsAdmitted

	p := &model.Prescription{
		Base:         model.Base{ID: uuid.New()},
		Code:         idgen.New(idgen.PrefixPrescription),
		HospitalID:   hospitalID,
		PatientID:    patient.ID,
		DoctorID:     doctorID,
		Medications:  lines,
		IsEmergency:  isEmergency,
		DeliveryType: patient.DeliveryType(),
	}

	notif := &model.PharmacyNotification{
		Base:           model.Base{ID: uuid.New()},
		Code:           idgen.New(idgen.PrefixNotification),
		HospitalID:     hospitalID,
		PrescriptionID: p.ID,
		PatientID:      patient.ID,
		IsEmergency:    isEmergency,
		Status:         model.NotificationStatusPending,
	}

	var task *model.DeliveryTask
	if p.DeliveryType == model.DeliveryTypeBedside {
		task = &model.DeliveryTask{
			Base:           model.Base{ID: uuid.New()},
			Code:           idgen.New(idgen.PrefixDeliveryTask),
			HospitalID:     hospitalID,
			PrescriptionID: p.ID,
			PatientID:      patient.ID,
			BedNumber:      patient.BedNumber,
			Ward:           patient.Ward,
			Medications:    lines,
			Status:         model.DeliveryTaskStatusAssigned,
		}
	}

	events := []*model.OutboxEvent{
		newEvent(model.EventPrescriptionCreated, map[string]interface{}{
			"prescription_id": p.ID,
			"patient_id":      p.PatientID,
			"hospital_id":     p.HospitalID,
			"bill_id":         bill.ID,
			"is_emergency":    isEmergency,
		}),
		newEvent(model.EventPharmacyNotified, map[string]interface{}{
			"notification_id": notif.ID,
			"prescription_id": p.ID,
			"is_emergency":    isEmergency,
		}),
	}
	if task != nil {
		events = append(events, newEvent(model.EventDeliveryTaskCreated, map[string]interface{}{
			"task_id":         task.ID,
			"prescription_id": p.ID,
			"bed_number":      task.BedNumber,
		}))
	}

	if err := s.workflowRepo.CreatePrescriptionCascade(ctx, p, bill, notif, task, events); err != nil {
		return nil, nil, fmt.Errorf("failed to create prescription: %w", err)
	}

	s.metrics.PrescriptionsCreated.Inc()
	if task != nil {
		s.metrics.DeliveryTasksCreated.Inc()
	}
	return p, bill, nil
}

// ComputeBillTotals fills subtotal, tax and total from the line items.
// Exposed for reuse by billing adjustments; the invariant is
// total == round2(subtotal + tax - discount) with tax at 10%.
func ComputeBillTotals(bill *model.Bill) {
	subtotal := 0.0
	for _, svc := range bill.Services {
		subtotal += svc.Cost
	}
	for _, med := range bill.Medications {
		subtotal += med.Cost * float64(med.Quantity)
	}
	bill.Subtotal = round2(subtotal)
	bill.Tax = round2(subtotal * taxRate)
	bill.TotalAmount = round2(bill.Subtotal + bill.Tax - bill.Discount)
}

func newBill(hospitalID, patientID uuid.UUID, services model.ServiceLines, meds model.MedicationCharges) *model.Bill {
	bill := &model.Bill{
		Base:        model.Base{ID: uuid.New()},
		Code:        idgen.New(idgen.PrefixBill),
		HospitalID:  hospitalID,
		PatientID:   patientID,
		Services:    services,
		Medications: meds,
		Status:      model.BillStatusPending,
	}
	ComputeBillTotals(bill)
	return bill
}

func newEvent(eventType string, payload map[string]interface{}) *model.OutboxEvent {
	raw, _ := json.Marshal(payload)
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   raw,
	}
}

func (s *Service) validateBookingTime(start time.Time) error {
	advance := time.Until(start)
	if advance < MinAdvanceBooking {
		return errors.BadRequest(fmt.Sprintf("appointments must be booked at least %v in advance", MinAdvanceBooking), nil)
	}
	if advance > MaxAdvanceBooking {
		return errors.BadRequest(fmt.Sprintf("appointments cannot be booked more than %v in advance", MaxAdvanceBooking), nil)
	}
	return nil
}

func (s *Service) verifyRole(ctx context.Context, id uuid.UUID, role model.Role) (*model.User, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound(string(role), err)
	}
	if user.Role != role {
		return nil, errors.BadRequest(fmt.Sprintf("user %s is not a %s", id, role), nil)
	}
	if !user.IsActive {
		return nil, errors.BadRequest(fmt.Sprintf("%s account is deactivated", role), nil)
	}
	return user, nil
}

func (s *Service) verifyDepartment(ctx context.Context, hospitalID uuid.UUID, department string) error {
	hospital, err := s.hospitalRepo.Get(ctx, hospitalID)
	if err != nil {
		return errors.NotFound("hospital", err)
	}
	for _, d := range hospital.Departments {
		if d == department {
			return nil
		}
	}
	return errors.BadRequest(fmt.Sprintf("hospital has no department %q", department), nil)
}

func parseRefs(hospital, patient, doctor string) (uuid.UUID, uuid.UUID, uuid.UUID, error) {
	hospitalID, err := uuid.Parse(hospital)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, errors.BadRequest("invalid hospital ID", err)
	}
	patientID, err := uuid.Parse(patient)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, errors.BadRequest("invalid patient ID", err)
	}
	doctorID, err := uuid.Parse(doctor)
	if err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, errors.BadRequest("invalid doctor ID", err)
	}
	return hospitalID, patientID, doctorID, nil
}
