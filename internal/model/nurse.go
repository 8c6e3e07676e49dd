package model

import (
	"time"

	"github.com/google/uuid"
)

type NurseRequestStatus string

const (
	NurseRequestStatusPending   NurseRequestStatus = "pending"
	NurseRequestStatusAccepted  NurseRequestStatus = "accepted"
	NurseRequestStatusCompleted NurseRequestStatus = "completed"
)

// NurseRequest is a hospital-wide call for pharmacy assistance.
// First nurse to accept wins; acceptance is a compare-and-swap on
// status so a losing nurse gets a conflict instead of a silent
// overwrite.
type NurseRequest struct {
	Base
	Code        string             `db:"code" json:"code"`
	HospitalID  uuid.UUID          `db:"hospital_id" json:"hospital_id"`
	RequestedBy uuid.UUID          `db:"requested_by" json:"requested_by"`
	Reason      string             `db:"reason" json:"reason,omitempty"`
	Status      NurseRequestStatus `db:"status" json:"status"`
	AcceptedBy  *uuid.UUID         `db:"accepted_by" json:"accepted_by,omitempty"`
	AcceptedAt  *time.Time         `db:"accepted_at" json:"accepted_at,omitempty"`
	CompletedAt *time.Time         `db:"completed_at" json:"completed_at,omitempty"`
}

// NurseNotification is the per-nurse fan-out of a NurseRequest, each
// independently dismissible.
type NurseNotification struct {
	Base
	NurseRequestID uuid.UUID `db:"nurse_request_id" json:"nurse_request_id"`
	NurseID        uuid.UUID `db:"nurse_id" json:"nurse_id"`
	HospitalID     uuid.UUID `db:"hospital_id" json:"hospital_id"`
	Dismissed      bool      `db:"dismissed" json:"dismissed"`
}

type EscalationRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}
