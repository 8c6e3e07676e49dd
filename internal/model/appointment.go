package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

type AppointmentType string

const (
	AppointmentTypeConsultation AppointmentType = "Consultation"
	AppointmentTypeFollowUp     AppointmentType = "Follow-up"
	AppointmentTypeCheckup      AppointmentType = "Check-up"
	AppointmentTypeEmergency    AppointmentType = "Emergency"
)

func (t AppointmentType) Valid() bool {
	switch t {
	case AppointmentTypeConsultation, AppointmentTypeFollowUp,
		AppointmentTypeCheckup, AppointmentTypeEmergency:
		return true
	}
	return false
}

type Appointment struct {
	Base
	Code       string            `db:"code" json:"code"`
	HospitalID uuid.UUID         `db:"hospital_id" json:"hospital_id"`
	PatientID  uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID   uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Department string            `db:"department" json:"department"`
	Type       AppointmentType   `db:"type" json:"type"`
	StartTime  time.Time         `db:"start_time" json:"start_time"`
	Status     AppointmentStatus `db:"status" json:"status"`
	Notes      string            `db:"notes" json:"notes,omitempty"`
	BillID     *uuid.UUID        `db:"bill_id" json:"bill_id,omitempty"`
}

type ScheduleAppointmentRequest struct {
	HospitalID string          `json:"hospital_id" binding:"required,uuid"`
	PatientID  string          `json:"patient_id" binding:"required,uuid"`
	DoctorID   string          `json:"doctor_id" binding:"required,uuid"`
	Department string          `json:"department" binding:"required"`
	Type       AppointmentType `json:"type" binding:"required,appointment_type"`
	StartTime  time.Time       `json:"start_time" binding:"required"`
	Notes      string          `json:"notes" binding:"max=1000"`
}

type UpdateAppointmentRequest struct {
	Status *AppointmentStatus `json:"status"`
	Notes  *string            `json:"notes"`
}

type AppointmentFilters struct {
	HospitalID uuid.UUID
	PatientID  uuid.UUID
	DoctorID   uuid.UUID
	Status     AppointmentStatus
	StartDate  time.Time
	EndDate    time.Time
}
