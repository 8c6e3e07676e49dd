package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
)

type PaymentMethod string

const (
	PaymentMethodCash      PaymentMethod = "cash"
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodInsurance PaymentMethod = "insurance"
	PaymentMethodOnline    PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodInsurance, PaymentMethodOnline:
		return true
	}
	return false
}

// ServiceLine is a single billed service, e.g. a consultation.
type ServiceLine struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// MedicationCharge is a billed medication line. Cost is the unit cost,
// Quantity the parsed unit count the bill was computed with.
type MedicationCharge struct {
	Name     string  `json:"name"`
	Cost     float64 `json:"cost"`
	Quantity int     `json:"quantity"`
}

type ServiceLines []ServiceLine

func (s ServiceLines) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ServiceLines) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported scan type %T for ServiceLines", src)
	}
	return json.Unmarshal(b, s)
}

type MedicationCharges []MedicationCharge

func (m MedicationCharges) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MedicationCharges) Scan(src interface{}) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("unsupported scan type %T for MedicationCharges", src)
	}
	return json.Unmarshal(b, m)
}

type Bill struct {
	Base
	Code          string            `db:"code" json:"code"`
	HospitalID    uuid.UUID         `db:"hospital_id" json:"hospital_id"`
	PatientID     uuid.UUID         `db:"patient_id" json:"patient_id"`
	Services      ServiceLines      `db:"services" json:"services"`
	Medications   MedicationCharges `db:"medications" json:"medications"`
	Subtotal      float64           `db:"subtotal" json:"subtotal"`
	Tax           float64           `db:"tax" json:"tax"`
	Discount      float64           `db:"discount" json:"discount"`
	TotalAmount   float64           `db:"total_amount" json:"total_amount"`
	Status        BillStatus        `db:"status" json:"status"`
	PaymentMethod *PaymentMethod    `db:"payment_method" json:"payment_method,omitempty"`
	PaymentDate   *time.Time        `db:"payment_date" json:"payment_date,omitempty"`
}

type RecordPaymentRequest struct {
	PaymentMethod PaymentMethod `json:"payment_method" binding:"required,payment_method"`
}

type BillFilters struct {
	HospitalID uuid.UUID
	PatientID  uuid.UUID
	Status     BillStatus
}
