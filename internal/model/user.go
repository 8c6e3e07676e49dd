package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RolePatient         Role = "patient"
	RoleDoctor          Role = "doctor"
	RoleReceptionist    Role = "receptionist"
	RolePharmacy        Role = "pharmacy"
	RoleNurse           Role = "nurse"
	RoleHospitalAdmin   Role = "hospital_admin"
	RoleDeliveryPartner Role = "delivery_partner"
	RoleSuperAdmin      Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleReceptionist, RolePharmacy,
		RoleNurse, RoleHospitalAdmin, RoleDeliveryPartner, RoleSuperAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role belongs to hospital staff rather than
// a patient or an external delivery partner.
func (r Role) IsStaff() bool {
	switch r {
	case RoleDoctor, RoleReceptionist, RolePharmacy, RoleNurse, RoleHospitalAdmin:
		return true
	}
	return false
}

type User struct {
	Base
	Code         string     `db:"code" json:"code"`
	HospitalID   *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	Role         Role       `db:"role" json:"role"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Department   string     `db:"department" json:"department,omitempty"`
	IsActive     bool       `db:"is_active" json:"is_active"`

	// Patient-only fields; staff rows leave them zero.
	IsAdmitted bool   `db:"is_admitted" json:"is_admitted"`
	BedNumber  string `db:"bed_number" json:"bed_number,omitempty"`
	Ward       string `db:"ward" json:"ward,omitempty"`

	LastLoginAt *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
}

// DeliveryType returns how prescribed medicine reaches this patient.
// Admitted patients get bedside delivery, everyone else picks up at
// the pharmacy counter.
func (u *User) DeliveryType() DeliveryType {
	if u.IsAdmitted {
		return DeliveryTypeBedside
	}
	return DeliveryTypePickup
}

type CreateUserRequest struct {
	HospitalID string `json:"hospital_id" binding:"omitempty,uuid"`
	Role       Role   `json:"role" binding:"required,role"`
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Phone      string `json:"phone"`
	Password   string `json:"password" binding:"required,min=8"`
	Department string `json:"department"`
}

type UpdateUserRequest struct {
	Name       *string `json:"name"`
	Phone      *string `json:"phone"`
	Department *string `json:"department"`
	IsActive   *bool   `json:"is_active"`
	IsAdmitted *bool   `json:"is_admitted"`
	BedNumber  *string `json:"bed_number"`
	Ward       *string `json:"ward"`
}

type UserFilters struct {
	HospitalID uuid.UUID
	Role       Role
	IsActive   *bool
}
