package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hms-api/internal/repository"
)

type userRepository struct {
	db *sqlx.DB
}

type hospitalRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

type billRepository struct {
	db *sqlx.DB
}

type prescriptionRepository struct {
	db *sqlx.DB
}

type pharmacyNotificationRepository struct {
	db *sqlx.DB
}

type deliveryTaskRepository struct {
	db *sqlx.DB
}

type nurseRequestRepository struct {
	db *sqlx.DB
}

type workflowRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func NewHospitalRepository(db *sqlx.DB) repository.HospitalRepository {
	return &hospitalRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewBillRepository(db *sqlx.DB) repository.BillRepository {
	return &billRepository{db: db}
}

func NewPrescriptionRepository(db *sqlx.DB) repository.PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func NewPharmacyNotificationRepository(db *sqlx.DB) repository.PharmacyNotificationRepository {
	return &pharmacyNotificationRepository{db: db}
}

func NewDeliveryTaskRepository(db *sqlx.DB) repository.DeliveryTaskRepository {
	return &deliveryTaskRepository{db: db}
}

func NewNurseRequestRepository(db *sqlx.DB) repository.NurseRequestRepository {
	return &nurseRequestRepository{db: db}
}

func NewWorkflowRepository(db *sqlx.DB) repository.WorkflowRepository {
	return &workflowRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}
