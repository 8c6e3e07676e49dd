package model

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryTaskStatus string

const (
	DeliveryTaskStatusAssigned  DeliveryTaskStatus = "assigned"
	DeliveryTaskStatusAccepted  DeliveryTaskStatus = "accepted"
	DeliveryTaskStatusCompleted DeliveryTaskStatus = "completed"
)

// DeliveryTask routes bedside medicine to an admitted patient.
// Created only for prescriptions with bedside delivery.
type DeliveryTask struct {
	Base
	Code           string             `db:"code" json:"code"`
	HospitalID     uuid.UUID          `db:"hospital_id" json:"hospital_id"`
	PrescriptionID uuid.UUID          `db:"prescription_id" json:"prescription_id"`
	PatientID      uuid.UUID          `db:"patient_id" json:"patient_id"`
	BedNumber      string             `db:"bed_number" json:"bed_number"`
	Ward           string             `db:"ward" json:"ward,omitempty"`
	Medications    MedicationLines    `db:"medications" json:"medications"`
	Status         DeliveryTaskStatus `db:"status" json:"status"`
	AcceptedBy     *uuid.UUID         `db:"accepted_by" json:"accepted_by,omitempty"`
	AcceptedAt     *time.Time         `db:"accepted_at" json:"accepted_at,omitempty"`
	CompletedAt    *time.Time         `db:"completed_at" json:"completed_at,omitempty"`
}

type DeliveryTaskFilters struct {
	HospitalID uuid.UUID
	Status     DeliveryTaskStatus
	AcceptedBy uuid.UUID
}
