package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		Deactivate(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.UserFilters) ([]*model.User, error)
		ListActiveNurses(ctx context.Context, hospitalID uuid.UUID) ([]*model.User, error)
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	}

	HospitalRepository interface {
		Create(ctx context.Context, hospital *model.Hospital) error
		Get(ctx context.Context, id uuid.UUID) (*model.Hospital, error)
		Update(ctx context.Context, hospital *model.Hospital) error
		List(ctx context.Context) ([]*model.Hospital, error)
	}

	AppointmentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, apt *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	BillRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Bill, error)
		List(ctx context.Context, filters *model.BillFilters) ([]*model.Bill, error)
		// MarkPaid transitions pending -> paid. Returns false when the
		// bill was not pending (already paid or missing).
		MarkPaid(ctx context.Context, id uuid.UUID, method model.PaymentMethod, paidAt time.Time) (bool, error)
	}

	PrescriptionRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		List(ctx context.Context, filters *model.PrescriptionFilters) ([]*model.Prescription, error)
		UpdateMedications(ctx context.Context, id uuid.UUID, medications model.MedicationLines) error
	}

	PharmacyNotificationRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.PharmacyNotification, error)
		List(ctx context.Context, filters *model.PharmacyNotificationFilters) ([]*model.PharmacyNotification, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.NotificationStatus) error
		CountByStatus(ctx context.Context, hospitalID uuid.UUID, status model.NotificationStatus) (int, error)
	}

	DeliveryTaskRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.DeliveryTask, error)
		List(ctx context.Context, filters *model.DeliveryTaskFilters) ([]*model.DeliveryTask, error)
		// Accept is a compare-and-swap on status=assigned; false means
		// another partner already took the task.
		Accept(ctx context.Context, id, partnerID uuid.UUID, at time.Time) (bool, error)
		Complete(ctx context.Context, id, partnerID uuid.UUID, at time.Time) (bool, error)
		CountByStatus(ctx context.Context, hospitalID uuid.UUID, status model.DeliveryTaskStatus) (int, error)
	}

	NurseRequestRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.NurseRequest, error)
		ListOpen(ctx context.Context, hospitalID uuid.UUID) ([]*model.NurseRequest, error)
		// Accept is a compare-and-swap on status=pending; false means a
		// concurrent nurse won the race.
		Accept(ctx context.Context, id, nurseID uuid.UUID, at time.Time) (bool, error)
		Complete(ctx context.Context, id, nurseID uuid.UUID, at time.Time) (bool, error)
		ListNotificationsForNurse(ctx context.Context, nurseID uuid.UUID) ([]*model.NurseNotification, error)
		DismissNotification(ctx context.Context, id, nurseID uuid.UUID) error
	}

	// WorkflowRepository persists the multi-record clinical cascades in
	// a single transaction, outbox events included. The source system
	// wrote these records sequentially with no atomicity; the
	// transaction closes that gap.
	WorkflowRepository interface {
		CreateAppointmentWithBill(ctx context.Context, apt *model.Appointment, bill *model.Bill, events []*model.OutboxEvent) error
		CreatePrescriptionCascade(ctx context.Context, p *model.Prescription, bill *model.Bill, notif *model.PharmacyNotification, task *model.DeliveryTask, events []*model.OutboxEvent) error
		CreateNurseBroadcast(ctx context.Context, req *model.NurseRequest, notifs []*model.NurseNotification, event *model.OutboxEvent) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string, retryAt *time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
