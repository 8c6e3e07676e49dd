package model

import (
	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending             NotificationStatus = "pending"
	NotificationStatusProcessed           NotificationStatus = "processed"
	NotificationStatusAssistanceRequested NotificationStatus = "assistance_requested"
)

// PharmacyNotification tells pharmacy staff a prescription is waiting.
// Created 1:1 with each prescription.
type PharmacyNotification struct {
	Base
	Code           string             `db:"code" json:"code"`
	HospitalID     uuid.UUID          `db:"hospital_id" json:"hospital_id"`
	PrescriptionID uuid.UUID          `db:"prescription_id" json:"prescription_id"`
	PatientID      uuid.UUID          `db:"patient_id" json:"patient_id"`
	IsEmergency    bool               `db:"is_emergency" json:"is_emergency"`
	Status         NotificationStatus `db:"status" json:"status"`
}

type PharmacyNotificationFilters struct {
	HospitalID uuid.UUID
	Status     NotificationStatus
}

// PharmacyWorkload is the outstanding work used by the peak-hour heuristic.
type PharmacyWorkload struct {
	PendingNotifications int `json:"pending_notifications"`
	AssignedDeliveries   int `json:"assigned_deliveries"`
}

func (w PharmacyWorkload) Outstanding() int {
	return w.PendingNotifications + w.AssignedDeliveries
}
