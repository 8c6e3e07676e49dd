package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type MedicationStatus string

const (
	MedicationStatusPrescribed MedicationStatus = "prescribed"
	MedicationStatusReady      MedicationStatus = "ready"
	MedicationStatusSold       MedicationStatus = "sold"
)

func (s MedicationStatus) Valid() bool {
	switch s {
	case MedicationStatusPrescribed, MedicationStatusReady, MedicationStatusSold:
		return true
	}
	return false
}

type DeliveryType string

const (
	DeliveryTypePickup  DeliveryType = "pickup"
	DeliveryTypeBedside DeliveryType = "bedside"
)

// MedicationLine is one prescribed medication. Quantity stays the
// descriptive string the doctor wrote ("14 capsules"); billing parses
// the leading count out of it.
type MedicationLine struct {
	Name            string           `json:"name"`
	Dosage          string           `json:"dosage"`
	Quantity        string           `json:"quantity"`
	Duration        string           `json:"duration"`
	Status          MedicationStatus `json:"status"`
	StatusUpdatedAt *time.Time       `json:"status_updated_at,omitempty"`
}

type MedicationLines []MedicationLine

func (m MedicationLines) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MedicationLines) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported scan type %T for MedicationLines", src)
	}
	return json.Unmarshal(b, m)
}

type Prescription struct {
	Base
	Code         string          `db:"code" json:"code"`
	HospitalID   uuid.UUID       `db:"hospital_id" json:"hospital_id"`
	PatientID    uuid.UUID       `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID       `db:"doctor_id" json:"doctor_id"`
	Medications  MedicationLines `db:"medications" json:"medications"`
	IsEmergency  bool            `db:"is_emergency" json:"is_emergency"`
	DeliveryType DeliveryType    `db:"delivery_type" json:"delivery_type"`
	BillID       *uuid.UUID      `db:"bill_id" json:"bill_id,omitempty"`
}

type MedicationLineRequest struct {
	Name     string `json:"name" binding:"required"`
	Dosage   string `json:"dosage" binding:"required"`
	Quantity string `json:"quantity" binding:"required"`
	Duration string `json:"duration"`
}

type CreatePrescriptionRequest struct {
	HospitalID  string                  `json:"hospital_id" binding:"required,uuid"`
	PatientID   string                  `json:"patient_id" binding:"required,uuid"`
	DoctorID    string                  `json:"doctor_id" binding:"required,uuid"`
	Medications []MedicationLineRequest `json:"medications" binding:"required,min=1,dive"`
	IsEmergency bool                    `json:"is_emergency"`
}

type AdvanceMedicationRequest struct {
	MedicationIndex int              `json:"medication_index" binding:"min=0"`
	Status          MedicationStatus `json:"status" binding:"required,medication_status"`
}

type PrescriptionFilters struct {
	HospitalID uuid.UUID
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
}
